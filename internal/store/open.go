package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store backends.
const (
	KindFS     = "fs"
	KindSQLite = "sqlite"
)

// Open creates the store of the given kind under dataDir.
// The returned close function must be called when done.
func Open(kind, dataDir string) (Store, func() error, error) {
	switch kind {
	case KindFS, "":
		s, err := NewFSStore(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case KindSQLite:
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create base directory: %w", err)
		}
		s, err := NewSQLiteStore(filepath.Join(dataDir, "runs.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind: %q (must be fs or sqlite)", kind)
	}
}
