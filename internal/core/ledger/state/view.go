// Package state provides ledger entry storage: the committed Store and
// the staged ApplyStateTable every operation runs against.
package state

import (
	"errors"

	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
)

var (
	// ErrEntryExists is returned when inserting over an existing entry.
	ErrEntryExists = errors.New("entry already exists")

	// ErrEntryNotFound is returned when updating a missing entry.
	ErrEntryNotFound = errors.New("entry not found")
)

// View is read/write access to ledger entries. Read returns nil data
// without error for a missing entry.
type View interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
	Insert(k keylet.Keylet, data []byte) error
	Update(k keylet.Keylet, data []byte) error
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// Change is one committed entry write.
type Change struct {
	Key  [32]byte
	Data []byte
}

// Committer applies a set of changes atomically.
type Committer interface {
	Commit(changes []Change) error
}

// Load reads and decodes the entry at k into e. It reports false when
// the entry does not exist.
func Load(v View, k keylet.Keylet, e entries.LedgerEntry) (bool, error) {
	data, err := v.Read(k)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := entries.Decode(data, e); err != nil {
		return false, err
	}
	return true, nil
}

// Create encodes e and inserts it at k.
func Create(v View, k keylet.Keylet, e entries.LedgerEntry) error {
	data, err := entries.Encode(e)
	if err != nil {
		return err
	}
	return v.Insert(k, data)
}

// Save encodes e and updates the existing entry at k.
func Save(v View, k keylet.Keylet, e entries.LedgerEntry) error {
	data, err := entries.Encode(e)
	if err != nil {
		return err
	}
	return v.Update(k, data)
}

// Put inserts or updates e at k depending on whether it exists.
func Put(v View, k keylet.Keylet, e entries.LedgerEntry, exists bool) error {
	if exists {
		return Save(v, k, e)
	}
	return Create(v, k, e)
}
