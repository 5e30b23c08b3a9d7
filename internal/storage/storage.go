// Package storage provides the durable key/value backends the board's state
// containers snapshot themselves into.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// KV is a flat namespace of JSON blobs.
type KV interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, data []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// DefaultPath returns the default location for backend under the user's home.
func DefaultPath(backend string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch backend {
	case BackendSQLite:
		return filepath.Join(home, ".userboard", "state.db")
	default:
		return filepath.Join(home, ".userboard", "state")
	}
}

// Open returns the backend named by backend rooted at path. An empty path
// selects DefaultPath.
func Open(backend, path string) (KV, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendFile
	}
	if strings.TrimSpace(path) == "" && backend != BackendMemory {
		path = DefaultPath(backend)
	}
	switch backend {
	case BackendFile:
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q (use %s, %s or %s)", backend, BackendFile, BackendSQLite, BackendMemory)
	}
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
