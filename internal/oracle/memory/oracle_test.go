package memory

import (
	"context"
	"testing"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice   = [20]byte{0xA1}
	bob     = [20]byte{0xB0}
	auditor = [20]byte{0xFF}
)

func TestArithmetic(t *testing.T) {
	ctx := context.Background()
	o := New(auditor)

	a, err := o.Lift(ctx, alice, encrypted.U64(30))
	require.NoError(t, err)
	b, err := o.Lift(ctx, alice, encrypted.U64(12))
	require.NoError(t, err)

	tests := []struct {
		name string
		op   func(context.Context, [20]byte, encrypted.Handle, encrypted.Handle) (encrypted.Handle, error)
		want uint64
	}{
		{"add", o.Add, 42},
		{"sub", o.Sub, 18},
		{"mul", o.Mul, 360},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tt.op(ctx, alice, a, b)
			require.NoError(t, err)
			require.NoError(t, o.Allow(ctx, h, alice))
			got, err := o.Decrypt(ctx, h, alice)
			require.NoError(t, err)
			assert.Equal(t, encrypted.U64(tt.want), got)
		})
	}
}

func TestSubWrapsInsteadOfClamping(t *testing.T) {
	ctx := context.Background()
	o := New()

	small, _ := o.Lift(ctx, alice, encrypted.U64(1))
	big, _ := o.Lift(ctx, alice, encrypted.U64(2))
	h, err := o.Sub(ctx, alice, small, big)
	require.NoError(t, err)
	require.NoError(t, o.Allow(ctx, h, alice))

	got, err := o.Decrypt(ctx, h, alice)
	require.NoError(t, err)
	assert.Equal(t, encrypted.Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}, got)
}

func TestUnknownHandle(t *testing.T) {
	ctx := context.Background()
	o := New()

	known, _ := o.Lift(ctx, alice, encrypted.U64(1))
	_, err := o.Add(ctx, alice, known, encrypted.Handle{})
	assert.ErrorIs(t, err, encrypted.ErrUnknownHandle)
}

func TestViewAllowances(t *testing.T) {
	ctx := context.Background()
	o := New(auditor)

	h, _ := o.Lift(ctx, alice, encrypted.U64(7))

	// the signer of a result gets no view of it
	_, err := o.Decrypt(ctx, h, alice)
	assert.ErrorIs(t, err, encrypted.ErrNotAllowed)
	assert.ErrorIs(t, o.GrantView(ctx, h, alice, bob), encrypted.ErrNotAllowed)

	require.NoError(t, o.Allow(ctx, h, alice))
	_, err = o.Decrypt(ctx, h, bob)
	assert.ErrorIs(t, err, encrypted.ErrNotAllowed)

	assert.ErrorIs(t, o.GrantView(ctx, h, bob, bob), encrypted.ErrNotAllowed)
	require.NoError(t, o.GrantView(ctx, h, alice, bob))

	got, err := o.Decrypt(ctx, h, bob)
	require.NoError(t, err)
	assert.Equal(t, encrypted.U64(7), got)

	got, err = o.Decrypt(ctx, h, auditor)
	require.NoError(t, err)
	assert.Equal(t, encrypted.U64(7), got)
}

func TestAllowUnknownHandle(t *testing.T) {
	assert.ErrorIs(t, New().Allow(context.Background(), encrypted.Handle{9}, alice), encrypted.ErrUnknownHandle)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Lift(ctx, alice, encrypted.U64(1))
	assert.ErrorIs(t, err, context.Canceled)
}
