// Package leveldb adapts goleveldb to the database.DB contract.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/adipundir/donatrade/internal/storage/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var syncWrite = &opt.WriteOptions{Sync: true}

type store struct {
	db *leveldb.DB
}

// Open opens or creates the LevelDB directory at path.
func Open(path string) (database.DB, io.Closer, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, nil, err
	}
	return &store{db: db}, db, nil
}

// check maps goleveldb's sentinels onto the database package's.
func check(err error) error {
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return database.ErrKeyNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return database.ErrDBClosed
	}
	return err
}

func (s *store) Read(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.db.Get(key, nil)
	if err != nil {
		return nil, check(err)
	}
	return v, nil
}

func (s *store) Write(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return check(s.db.Put(key, value, syncWrite))
}

func (s *store) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return check(s.db.Delete(key, syncWrite))
}

func (s *store) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b leveldb.Batch
	for i, op := range ops {
		switch op.Type {
		case database.BatchPut:
			b.Put(op.Key, op.Value)
		case database.BatchDelete:
			b.Delete(op.Key)
		default:
			return fmt.Errorf("batch op %d: unknown batch operation type %d", i, op.Type)
		}
	}
	return check(s.db.Write(&b, syncWrite))
}

func (s *store) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &levelIter{it: s.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

type levelIter struct {
	it         iterator.Iterator
	key, value []byte
}

func (l *levelIter) Next() bool {
	if !l.it.Next() {
		l.key, l.value = nil, nil
		return false
	}
	l.key = append([]byte(nil), l.it.Key()...)
	l.value = append([]byte(nil), l.it.Value()...)
	return true
}

func (l *levelIter) Key() []byte   { return l.key }
func (l *levelIter) Value() []byte { return l.value }
func (l *levelIter) Error() error  { return check(l.it.Error()) }

func (l *levelIter) Close() error {
	l.it.Release()
	return nil
}
