package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/screentime/screentime/internal/store"
	"github.com/screentime/screentime/internal/usage"
	"github.com/screentime/screentime/pkg/utils"
)

const (
	refreshInterval = 5 * time.Second
	topAppCount     = 10
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1).
			MarginBottom(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2).
			MarginBottom(1)

	boxTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F7DC6F"))

	appStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5DADE2"))

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7F8C8D"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type dashboardModel struct {
	store  *store.Store
	snap   usage.Snapshot
	width  int
	height int
}

func (m dashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.snap = m.store.Load()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.snap = m.store.Load()
		return m, tickCmd()
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	now := time.Now()
	header := headerStyle.Width(m.width).Render(
		fmt.Sprintf("Screen Time - %s", now.Format("Jan 2, 2006 15:04:05")),
	)

	stats := usage.FromSnapshot(m.snap)
	today := usage.DayKey(now)

	boxWidth := m.width - 4
	if boxWidth < 30 {
		boxWidth = 30
	}

	todayBox := boxStyle.Width(boxWidth).Render(
		renderRanking("TODAY", stats.DayApps(today, topAppCount), stats.DayTotal(today), boxWidth-6),
	)
	allTimeBox := boxStyle.Width(boxWidth).Render(
		renderRanking("ALL TIME", stats.TopApps(topAppCount), stats.TotalSeconds(), boxWidth-6),
	)

	help := helpStyle.Render("r: refresh • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, todayBox, allTimeBox, help)
}

// renderRanking draws one usage table with a proportional bar per app.
func renderRanking(title string, apps []usage.AppTotal, total float64, width int) string {
	var b strings.Builder
	b.WriteString(boxTitleStyle.Render(title))
	b.WriteString("\n\n")

	if len(apps) == 0 {
		b.WriteString(timeStyle.Render("no activity recorded"))
		return b.String()
	}

	nameWidth := 20
	barWidth := width - nameWidth - 14
	if barWidth < 5 {
		barWidth = 5
	}

	for _, app := range apps {
		var pct float64
		if total > 0 {
			pct = app.Seconds / total
		}
		filled := int(pct * float64(barWidth))
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

		b.WriteString(fmt.Sprintf("%s %s %s\n",
			appStyle.Render(padName(app.AppName, nameWidth)),
			barStyle.Render(bar),
			timeStyle.Render(utils.FormatHMS(app.Seconds)),
		))
	}

	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("Total: %s", utils.FormatHMS(total))))
	return b.String()
}

// padName pads or truncates by rune so multibyte app names keep the column
// aligned.
func padName(name string, width int) string {
	runes := []rune(name)
	if len(runes) > width {
		return string(runes[:width-1]) + "…"
	}
	return name + strings.Repeat(" ", width-len(runes))
}

// Run starts the dashboard reading from the given snapshot store. It blocks
// until the user quits.
func Run(st *store.Store) error {
	m := dashboardModel{
		store: st,
		snap:  st.Load(),
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
