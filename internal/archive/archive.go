package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/screentime/screentime/internal/models"
)

const (
	defaultDBName = "screentime.db"
	defaultDBDir  = ".config/screentime"
)

// DB wraps the gorm handle for the local sample archive.
type DB struct {
	*gorm.DB
}

// DefaultDBPath returns the default sqlite path under the user's home
// directory, creating the directory if needed.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dbDir := filepath.Join(homeDir, defaultDBDir)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	return filepath.Join(dbDir, defaultDBName), nil
}

// Connect opens the archive database. An empty path selects the default
// location.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{db}, nil
}

// Initialize migrates the archive schema.
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.FocusSample{}, &models.ErrorLog{}); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
