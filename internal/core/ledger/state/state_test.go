package state

import (
	"context"
	"errors"
	"testing"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/storage/database"
	"github.com/adipundir/donatrade/internal/storage/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var investor = [20]byte{0x11}

func newStore(t *testing.T) *CommittedStore {
	t.Helper()
	s, err := NewStore(memory.NewDB(), 16)
	require.NoError(t, err)
	return s
}

func TestStoreInsertUpdate(t *testing.T) {
	s := newStore(t)
	k := keylet.InvestorVault(investor)

	vault := &entries.InvestorVault{Owner: investor, Balance: encrypted.Handle{1}}
	require.NoError(t, Create(s, k, vault))
	assert.ErrorIs(t, Create(s, k, vault), ErrEntryExists)

	vault.Balance = encrypted.Handle{2}
	require.NoError(t, Save(s, k, vault))

	var got entries.InvestorVault
	found, err := Load(s, k, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, encrypted.Handle{2}, got.Balance)

	assert.ErrorIs(t, Save(s, keylet.InvestorVault([20]byte{0x99}), vault), ErrEntryNotFound)
}

func TestLoadMissing(t *testing.T) {
	s := newStore(t)
	found, err := Load(s, keylet.Company(1), &entries.CompanyAccount{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestApplyStateTableStagesUntilApply(t *testing.T) {
	s := newStore(t)
	company := &entries.CompanyAccount{CompanyID: 1, SharesAvailable: 100, PricePerShare: 10, Active: true}
	require.NoError(t, Create(s, keylet.Company(1), company))

	table := NewApplyStateTable(s)

	var staged entries.CompanyAccount
	_, err := Load(table, keylet.Company(1), &staged)
	require.NoError(t, err)
	require.NoError(t, staged.ReserveShares(20))
	require.NoError(t, Save(table, keylet.Company(1), &staged))
	require.NoError(t, Create(table, keylet.InvestorVault(investor), &entries.InvestorVault{Owner: investor}))

	// staged view sees the change, the base does not
	var seen entries.CompanyAccount
	_, err = Load(table, keylet.Company(1), &seen)
	require.NoError(t, err)
	assert.Equal(t, uint64(80), seen.SharesAvailable)

	var committed entries.CompanyAccount
	_, err = Load(s, keylet.Company(1), &committed)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), committed.SharesAvailable)

	exists, err := s.Exists(keylet.InvestorVault(investor))
	require.NoError(t, err)
	assert.False(t, exists)

	meta, err := table.Apply()
	require.NoError(t, err)
	require.Len(t, meta.AffectedNodes, 2)

	kinds := map[string]string{}
	for _, n := range meta.AffectedNodes {
		kinds[n.LedgerEntryType] = n.NodeType
	}
	assert.Equal(t, "ModifiedNode", kinds["Company"])
	assert.Equal(t, "CreatedNode", kinds["InvestorVault"])

	_, err = Load(s, keylet.Company(1), &committed)
	require.NoError(t, err)
	assert.Equal(t, uint64(80), committed.SharesAvailable)
}

func TestApplyStateTableSkipsUnchanged(t *testing.T) {
	s := newStore(t)
	require.NoError(t, Create(s, keylet.Company(1), &entries.CompanyAccount{CompanyID: 1}))

	table := NewApplyStateTable(s)
	var c entries.CompanyAccount
	_, err := Load(table, keylet.Company(1), &c)
	require.NoError(t, err)
	require.NoError(t, Save(table, keylet.Company(1), &c))

	assert.Empty(t, table.Changes())
}

func TestForEachOverlaysStagedEntries(t *testing.T) {
	s := newStore(t)
	require.NoError(t, Create(s, keylet.Company(1), &entries.CompanyAccount{CompanyID: 1}))

	table := NewApplyStateTable(s)
	require.NoError(t, Create(table, keylet.Company(2), &entries.CompanyAccount{CompanyID: 2}))

	count := 0
	require.NoError(t, table.ForEach(func(key [32]byte, data []byte) bool {
		count++
		return true
	}))
	assert.Equal(t, 2, count)
}

type failingDB struct {
	database.DB
}

func (failingDB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	return errors.New("disk full")
}

func TestCommitFailureLeavesNothing(t *testing.T) {
	db := memory.NewDB()
	s, err := NewStore(failingDB{DB: db}, 16)
	require.NoError(t, err)

	table := NewApplyStateTable(s)
	require.NoError(t, Create(table, keylet.Company(1), &entries.CompanyAccount{CompanyID: 1}))
	require.NoError(t, Create(table, keylet.Company(2), &entries.CompanyAccount{CompanyID: 2}))

	_, err = table.Apply()
	require.Error(t, err)

	exists, err := s.Exists(keylet.Company(1))
	require.NoError(t, err)
	assert.False(t, exists)
}
