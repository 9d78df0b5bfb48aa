// Package bbolt keeps a database.DB in a single bucket of a bbolt file.
package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/adipundir/donatrade/internal/storage/database"
	"go.etcd.io/bbolt"
)

var bucketName = []byte("ledger")

type store struct {
	db     *bbolt.DB
	closed atomic.Bool
}

// Open opens or creates the bbolt file at path. It fails after a second if
// another process holds the file lock.
func Open(path string) (database.DB, io.Closer, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create bucket: %w", err)
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

func ledgerBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	if b := tx.Bucket(bucketName); b != nil {
		return b, nil
	}
	return nil, fmt.Errorf("bucket %q missing", bucketName)
}

// update runs fn against the bucket in one read-write transaction.
func (s *store) update(ctx context.Context, fn func(*bbolt.Bucket) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := ledgerBucket(tx)
		if err != nil {
			return err
		}
		return fn(b)
	})
}

func (s *store) Read(ctx context.Context, key []byte) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := ledgerBucket(tx)
		if err != nil {
			return err
		}
		v := b.Get(key)
		if v == nil {
			return database.ErrKeyNotFound
		}
		out = bytes.Clone(v)
		return nil
	})
	return out, err
}

func (s *store) Write(ctx context.Context, key, value []byte) error {
	return s.update(ctx, func(b *bbolt.Bucket) error { return b.Put(key, value) })
}

func (s *store) Delete(ctx context.Context, key []byte) error {
	return s.update(ctx, func(b *bbolt.Bucket) error { return b.Delete(key) })
}

func (s *store) Batch(ctx context.Context, ops []database.BatchOperation) error {
	return s.update(ctx, func(b *bbolt.Bucket) error {
		for i, op := range ops {
			var err error
			switch op.Type {
			case database.BatchPut:
				err = b.Put(op.Key, op.Value)
			case database.BatchDelete:
				err = b.Delete(op.Key)
			default:
				err = fmt.Errorf("unknown batch operation type %d", op.Type)
			}
			if err != nil {
				return fmt.Errorf("batch op %d: %w", i, err)
			}
		}
		return nil
	})
}

// Iterator holds a read transaction open until it is closed.
func (s *store) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, err
	}
	b, err := ledgerBucket(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &cursor{tx: tx, c: b.Cursor(), seek: start, end: end}, nil
}

type cursor struct {
	tx         *bbolt.Tx
	c          *bbolt.Cursor
	seek, end  []byte
	moved      bool
	released   bool
	key, value []byte
}

func (it *cursor) Next() bool {
	if it.released {
		return false
	}
	var k, v []byte
	switch {
	case it.moved:
		k, v = it.c.Next()
	case it.seek != nil:
		k, v = it.c.Seek(it.seek)
	default:
		k, v = it.c.First()
	}
	it.moved = true

	if k == nil || (it.end != nil && bytes.Compare(k, it.end) >= 0) {
		it.key, it.value = nil, nil
		return false
	}
	// cursor memory is only valid inside the transaction
	it.key, it.value = bytes.Clone(k), bytes.Clone(v)
	return true
}

func (it *cursor) Key() []byte   { return it.key }
func (it *cursor) Value() []byte { return it.value }
func (it *cursor) Error() error  { return nil }

func (it *cursor) Close() error {
	if it.released {
		return nil
	}
	it.released = true
	return it.tx.Rollback()
}
