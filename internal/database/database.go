package database

/*
	gorm over sqlite backs everything the server persists: tracked script
	usage, generated API keys, security events, demo users and settings.
	Each table gets its own "data store" wrapping the shared *gorm.DB.
*/

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"

	"github.com/pynezz/scriptshield/internal/fs"
	"github.com/pynezz/scriptshield/internal/util"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidPath = errors.New("database path must end in .db")
)

// chkExt appends .db to a bare name and rejects other extensions.
func chkExt(path string) (string, error) {
	switch ext := filepath.Ext(path); ext {
	case ".db":
		return path, nil
	case "":
		return path + ".db", nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrInvalidPath)
	}
}

// InitDB opens the database at path and automigrates the given tables.
// The parent directory is created when missing.
func InitDB(path string, conf gorm.Config, tables ...interface{}) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path missing: %w", ErrInvalidPath)
	}

	path, err := chkExt(path)
	if err != nil {
		return nil, err
	}
	if err := fs.EnsureParentDir(path); err != nil {
		return nil, err
	}

	util.PrintDebug("opening database " + path)
	db, err := gorm.Open(sqlite.Open(path), &conf)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return nil, err
	}

	db = db.Session(&gorm.Session{CreateBatchSize: 100})

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
