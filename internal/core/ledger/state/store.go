package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/storage/database"
	lru "github.com/hashicorp/golang-lru/v2"
)

// stateKeyPrefix separates ledger entries from other records sharing the
// same database.
const stateKeyPrefix byte = 's'

// DefaultCacheSize is the number of decoded-entry bytes kept hot.
const DefaultCacheSize = 4096

func dbKey(key [32]byte) []byte {
	out := make([]byte, 0, 33)
	out = append(out, stateKeyPrefix)
	return append(out, key[:]...)
}

// CommittedStore is the durable ledger state. All writes from an
// operation land through one Commit call.
type CommittedStore struct {
	db    database.DB
	cache *lru.Cache[[32]byte, []byte]
}

// NewStore wraps db with a read cache of cacheSize entries.
func NewStore(db database.DB, cacheSize int) (*CommittedStore, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create state cache: %w", err)
	}
	return &CommittedStore{db: db, cache: cache}, nil
}

// Read returns the committed entry at k, or nil if none exists.
func (s *CommittedStore) Read(k keylet.Keylet) ([]byte, error) {
	if data, ok := s.cache.Get(k.Key); ok {
		return data, nil
	}
	data, err := s.db.Read(context.Background(), dbKey(k.Key))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read entry %x: %w", k.Key, err)
	}
	s.cache.Add(k.Key, data)
	return data, nil
}

func (s *CommittedStore) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	return data != nil, err
}

func (s *CommittedStore) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}
	return s.Commit([]Change{{Key: k.Key, Data: data}})
}

func (s *CommittedStore) Update(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrEntryNotFound
	}
	return s.Commit([]Change{{Key: k.Key, Data: data}})
}

// Commit writes all changes in one database batch.
func (s *CommittedStore) Commit(changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	ops := make([]database.BatchOperation, 0, len(changes))
	for _, c := range changes {
		ops = append(ops, database.BatchOperation{
			Type:  database.BatchPut,
			Key:   dbKey(c.Key),
			Value: c.Data,
		})
	}
	if err := s.db.Batch(context.Background(), ops); err != nil {
		s.cache.Purge()
		return fmt.Errorf("commit %d entries: %w", len(changes), err)
	}
	for _, c := range changes {
		s.cache.Add(c.Key, c.Data)
	}
	return nil
}

// ForEach visits every committed entry in key order until fn returns false.
func (s *CommittedStore) ForEach(fn func(key [32]byte, data []byte) bool) error {
	it, err := s.db.Iterator(context.Background(), []byte{stateKeyPrefix}, []byte{stateKeyPrefix + 1})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		raw := it.Key()
		if len(raw) != 33 {
			continue
		}
		var key [32]byte
		copy(key[:], raw[1:])
		if !fn(key, it.Value()) {
			break
		}
	}
	return it.Error()
}
