package database

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// OpenFunc opens or creates the database file at path. The returned closer
// releases the underlying handle; the DB must not be used afterwards.
type OpenFunc func(path string) (DB, io.Closer, error)

type handle struct {
	db     DB
	closer io.Closer
}

// DirManager keeps one database per name under a data directory, stored
// as <dir>/<name>.db and opened with the backend's OpenFunc. The directory
// is created on the first open.
type DirManager struct {
	dir  string
	open OpenFunc

	mu   sync.Mutex
	dbs  map[string]handle
	done bool
}

// NewDirManager returns a manager for dir that opens files with open.
func NewDirManager(dir string, open OpenFunc) *DirManager {
	return &DirManager{
		dir:  dir,
		open: open,
		dbs:  make(map[string]handle),
	}
}

// Path returns the file a named database lives in.
func (m *DirManager) Path(name string) string {
	return filepath.Join(m.dir, name+".db")
}

// OpenDB returns the named database, opening it on first use. Repeated
// calls share one handle.
func (m *DirManager) OpenDB(name string) (DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return nil, ErrDBClosed
	}
	if h, ok := m.dbs[name]; ok {
		return h.db, nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", m.dir, err)
	}
	db, closer, err := m.open(m.Path(name))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", name, err)
	}
	m.dbs[name] = handle{db: db, closer: closer}
	return db, nil
}

// CloseDB releases the named database.
func (m *DirManager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.dbs[name]
	if !ok {
		return fmt.Errorf("database %s is not open", name)
	}
	delete(m.dbs, name)
	return h.closer.Close()
}

// Close releases every open database. The manager cannot be reused.
func (m *DirManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, h := range m.dbs {
		if err := h.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database %s: %w", name, err))
		}
	}
	m.dbs = make(map[string]handle)
	m.done = true
	return errors.Join(errs...)
}
