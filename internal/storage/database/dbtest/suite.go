// Package dbtest is a conformance suite run against every database.DB
// backend.
package dbtest

import (
	"context"
	"testing"

	"github.com/adipundir/donatrade/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises db. The database must start empty.
func Run(t *testing.T, db database.DB) {
	ctx := context.Background()

	t.Run("ReadWrite", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v1")))

		got, err := db.Read(ctx, []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		_, err = db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))
		require.NoError(t, db.Delete(ctx, []byte("gone")))

		_, err := db.Read(ctx, []byte("gone"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Batch", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("b0"), []byte("old")))

		err := db.Batch(ctx, []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("b1"), Value: []byte("one")},
			{Type: database.BatchPut, Key: []byte("b2"), Value: []byte("two")},
			{Type: database.BatchDelete, Key: []byte("b0")},
		})
		require.NoError(t, err)

		got, err := db.Read(ctx, []byte("b2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)

		_, err = db.Read(ctx, []byte("b0"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("IteratorRange", func(t *testing.T) {
		for _, k := range []string{"i1", "i2", "i3", "j1"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
		}

		it, err := db.Iterator(ctx, []byte("i"), []byte("i3"))
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, "v-"+string(it.Key()), string(it.Value()))
		}
		require.NoError(t, it.Error())
		assert.Equal(t, []string{"i1", "i2"}, keys)
	})
}
