// Package backend selects a database.Manager implementation by name.
package backend

import (
	"fmt"

	"github.com/adipundir/donatrade/internal/storage/database"
	"github.com/adipundir/donatrade/internal/storage/database/bbolt"
	"github.com/adipundir/donatrade/internal/storage/database/leveldb"
	"github.com/adipundir/donatrade/internal/storage/database/memory"
	"github.com/adipundir/donatrade/internal/storage/database/pebble"
)

// Supported backend names
const (
	Pebble  = "pebble"
	BBolt   = "bbolt"
	LevelDB = "leveldb"
	Memory  = "memory"
)

// Names lists the supported backends.
func Names() []string {
	return []string{Pebble, BBolt, LevelDB, Memory}
}

// NewManager returns a manager storing its databases under path. The
// memory backend ignores path.
func NewManager(name, path string) (database.Manager, error) {
	var open database.OpenFunc
	switch name {
	case Pebble:
		open = pebble.Open
	case BBolt:
		open = bbolt.Open
	case LevelDB:
		open = leveldb.Open
	case Memory:
		return memory.NewManager(), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, name)
	}
	return database.NewDirManager(path, open), nil
}

// Persistent reports whether a backend keeps data across restarts.
func Persistent(name string) bool {
	return name != Memory
}
