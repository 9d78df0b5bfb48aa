// Package pebble backs database.DB with a Pebble LSM store. Every write
// is synced before it returns.
package pebble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/adipundir/donatrade/internal/storage/database"
	"github.com/cockroachdb/pebble"
)

type store struct {
	db     *pebble.DB
	closed atomic.Bool
}

// Open opens or creates the Pebble directory at path.
func Open(path string) (database.DB, io.Closer, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, nil, err
	}
	s := &store{db: db}
	return s, s, nil
}

func (s *store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *store) ready(ctx context.Context) error {
	if s.closed.Load() {
		return database.ErrDBClosed
	}
	return ctx.Err()
}

func (s *store) Read(ctx context.Context, key []byte) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(v), nil
}

// Write and Delete are single-operation batches.
func (s *store) Write(ctx context.Context, key, value []byte) error {
	return s.Batch(ctx, []database.BatchOperation{{Type: database.BatchPut, Key: key, Value: value}})
}

func (s *store) Delete(ctx context.Context, key []byte) error {
	return s.Batch(ctx, []database.BatchOperation{{Type: database.BatchDelete, Key: key}})
}

func (s *store) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	b := s.db.NewBatch()
	defer b.Close()

	for i, op := range ops {
		var err error
		switch op.Type {
		case database.BatchPut:
			err = b.Set(op.Key, op.Value, nil)
		case database.BatchDelete:
			err = b.Delete(op.Key, nil)
		default:
			err = fmt.Errorf("unknown batch operation type %d", op.Type)
		}
		if err != nil {
			return fmt.Errorf("batch op %d: %w", i, err)
		}
	}
	return b.Commit(pebble.Sync)
}

func (s *store) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: start, UpperBound: end})
	if err != nil {
		return nil, err
	}
	return &rangeIter{it: it}, nil
}

// rangeIter copies each entry out because Pebble reuses its buffers.
type rangeIter struct {
	it         *pebble.Iterator
	positioned bool
	key, value []byte
}

func (r *rangeIter) Next() bool {
	var ok bool
	if r.positioned {
		ok = r.it.Next()
	} else {
		ok = r.it.First()
		r.positioned = true
	}
	if !ok {
		r.key, r.value = nil, nil
		return false
	}
	r.key = bytes.Clone(r.it.Key())
	r.value = bytes.Clone(r.it.Value())
	return true
}

func (r *rangeIter) Key() []byte   { return r.key }
func (r *rangeIter) Value() []byte { return r.value }
func (r *rangeIter) Error() error  { return r.it.Error() }
func (r *rangeIter) Close() error  { return r.it.Close() }
