//go:build windows

package main

import (
	"fmt"
	"os"

	"github.com/screentime/screentime/internal/config"
)

// daemonize re-executes the current binary detached, with the child marker
// set so the child runs the daemon loop instead of forking again. Windows has
// no sessions to detach from; the child simply outlives the parent.
func daemonize(cfg *config.Config, withWeb bool) {
	env := os.Environ()
	env = append(env, daemonChildEnv+"=1")

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
	}

	process, err := os.StartProcess(os.Args[0], os.Args, procAttr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon process: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Daemon started (PID: %d)\n", process.Pid)
	if withWeb {
		fmt.Printf("Web dashboard: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
}
