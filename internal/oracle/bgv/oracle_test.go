package bgv

import (
	"context"
	"testing"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	investor = [20]byte{0x01}
	viewer   = [20]byte{0x02}
)

func newTestOracle(t *testing.T) *Oracle {
	t.Helper()
	if testing.Short() {
		t.Skip("lattice key generation is slow")
	}
	o, err := New(Config{
		LogN: 12,
		LogQ: []int{54, 54},
		LogP: []int{55},
	})
	require.NoError(t, err)
	return o
}

func decrypt(t *testing.T, o *Oracle, h encrypted.Handle) uint64 {
	t.Helper()
	require.NoError(t, o.Allow(context.Background(), h, investor))
	v, err := o.Decrypt(context.Background(), h, investor)
	require.NoError(t, err)
	got, ok := v.Uint64()
	require.True(t, ok)
	return got
}

func TestHomomorphicBalanceFlow(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)

	zero, err := o.Lift(ctx, investor, encrypted.U64(0))
	require.NoError(t, err)
	deposit, err := o.Lift(ctx, investor, encrypted.U64(1000))
	require.NoError(t, err)
	balance, err := o.Add(ctx, investor, zero, deposit)
	require.NoError(t, err)

	shares, _ := o.Lift(ctx, investor, encrypted.U64(5))
	price, _ := o.Lift(ctx, investor, encrypted.U64(10))
	value, err := o.Mul(ctx, investor, shares, price)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), decrypt(t, o, value))

	balance, err = o.Sub(ctx, investor, balance, value)
	require.NoError(t, err)
	assert.Equal(t, uint64(950), decrypt(t, o, balance))
}

func TestLiftRejectsValuesAboveModulus(t *testing.T) {
	o := newTestOracle(t)
	_, err := o.Lift(context.Background(), investor, encrypted.U64(o.PlaintextModulus()))
	assert.ErrorIs(t, err, oracle.ErrPlaintextRange)
}

func TestDecryptRequiresAllowance(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)

	h, err := o.Lift(ctx, investor, encrypted.U64(3))
	require.NoError(t, err)

	_, err = o.Decrypt(ctx, h, investor)
	assert.ErrorIs(t, err, encrypted.ErrNotAllowed)

	require.NoError(t, o.Allow(ctx, h, investor))
	_, err = o.Decrypt(ctx, h, viewer)
	assert.ErrorIs(t, err, encrypted.ErrNotAllowed)

	require.NoError(t, o.GrantView(ctx, h, investor, viewer))
	v, err := o.Decrypt(ctx, h, viewer)
	require.NoError(t, err)
	assert.Equal(t, encrypted.U64(3), v)
}
