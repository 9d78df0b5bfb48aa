package state

import (
	"bytes"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte
}

// AffectedNode describes one entry an operation created or modified.
type AffectedNode struct {
	NodeType        string `json:"NodeType"`
	LedgerEntryType string `json:"LedgerEntryType"`
	LedgerIndex     string `json:"LedgerIndex"`
}

// Metadata lists the entries touched by a committed operation.
type Metadata struct {
	AffectedNodes []AffectedNode `json:"AffectedNodes"`
}

// ApplyStateTable wraps a View and stages every modification made while
// an operation runs. Nothing reaches the base until Apply; dropping the
// table discards the operation.
type ApplyStateTable struct {
	base  View
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base View) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}
	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if _, exists := t.items[k.Key]; exists {
		return true, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	exists, err := t.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// An insert stays an insert with the new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// ForEach visits the base entries overlaid with staged changes.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	seen := make(map[[32]byte]bool, len(t.items))
	stop := false
	err := t.base.ForEach(func(key [32]byte, data []byte) bool {
		if entry, ok := t.items[key]; ok {
			seen[key] = true
			data = entry.Current
		}
		if !fn(key, data) {
			stop = true
			return false
		}
		return true
	})
	if err != nil || stop {
		return err
	}
	for key, entry := range t.items {
		if !seen[key] && entry.Action == ActionInsert {
			if !fn(key, entry.Current) {
				return nil
			}
		}
	}
	return nil
}

// Changes returns the staged writes in key order.
func (t *ApplyStateTable) Changes() []Change {
	changes := make([]Change, 0, len(t.items))
	for key, entry := range t.items {
		switch entry.Action {
		case ActionInsert:
			changes = append(changes, Change{Key: key, Data: entry.Current})
		case ActionModify:
			if !bytes.Equal(entry.Original, entry.Current) {
				changes = append(changes, Change{Key: key, Data: entry.Current})
			}
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].Key[:], changes[j].Key[:]) < 0
	})
	return changes
}

// Apply commits all changes to the base view and returns generated metadata.
// A base implementing Committer receives every change in a single call.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	changes := t.Changes()
	metadata := &Metadata{AffectedNodes: make([]AffectedNode, 0, len(changes))}

	for _, c := range changes {
		entry := t.items[c.Key]
		nodeType := "ModifiedNode"
		if entry.Action == ActionInsert {
			nodeType = "CreatedNode"
		}
		metadata.AffectedNodes = append(metadata.AffectedNodes, AffectedNode{
			NodeType:        nodeType,
			LedgerEntryType: entryTypeName(c.Data),
			LedgerIndex:     strings.ToUpper(hex.EncodeToString(c.Key[:])),
		})
	}

	if committer, ok := t.base.(Committer); ok {
		if err := committer.Commit(changes); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	for _, c := range changes {
		k := keylet.Keylet{Key: c.Key}
		var err error
		if t.items[c.Key].Action == ActionInsert {
			err = t.base.Insert(k, c.Data)
		} else {
			err = t.base.Update(k, c.Data)
		}
		if err != nil {
			return nil, err
		}
	}
	return metadata, nil
}

func entryTypeName(data []byte) string {
	typ, err := entries.TypeOf(data)
	if err != nil {
		return "Unknown"
	}
	return typ.String()
}
