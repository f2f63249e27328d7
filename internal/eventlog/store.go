package eventlog

import (
	"context"
	"fmt"
)

// Supported store drivers
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Default locations for persistent drivers
const (
	DefaultFilePath   = "./events.json"
	DefaultSQLitePath = "./events.db"
)

// Store is the event log. Implementations must be safe for concurrent use;
// List returns records newest first.
type Store interface {
	Append(ctx context.Context, record Record) error
	List(ctx context.Context) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Drivers returns the supported driver names
func Drivers() []string {
	return []string{DriverMemory, DriverFile, DriverSQLite}
}

// ValidDriver reports whether driver names a supported store
func ValidDriver(driver string) bool {
	for _, d := range Drivers() {
		if d == driver {
			return true
		}
	}
	return false
}

// DefaultPath returns the default storage path for driver
func DefaultPath(driver string) string {
	switch driver {
	case DriverFile:
		return DefaultFilePath
	case DriverSQLite:
		return DefaultSQLitePath
	default:
		return ""
	}
}

// Open creates the store for driver. path is ignored by the memory driver
// and defaults to DefaultPath(driver) when empty.
func Open(driver, path string) (Store, error) {
	if path == "" {
		path = DefaultPath(driver)
	}

	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(path)
	case DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver '%s'", driver)
	}
}
