package encrypted

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint128Arithmetic(t *testing.T) {
	max64 := ^uint64(0)

	tests := []struct {
		name string
		got  Uint128
		want Uint128
	}{
		{"add carries", U64(max64).Add(U64(1)), Uint128{Hi: 1}},
		{"sub borrows", Uint128{Hi: 1}.Sub(U64(1)), U64(max64)},
		{"sub wraps", U64(0).Sub(U64(1)), Uint128{Hi: max64, Lo: max64}},
		{"mul widens", U64(max64).Mul(U64(2)), Uint128{Hi: 1, Lo: max64 - 1}},
		{"mul small", U64(20).Mul(U64(10)), U64(200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestUint128Helpers(t *testing.T) {
	assert.True(t, Uint128{}.IsZero())
	assert.Equal(t, -1, U64(1).Cmp(Uint128{Hi: 1}))
	assert.Equal(t, 0, U64(5).Cmp(U64(5)))
	assert.Equal(t, 1, U64(6).Cmp(U64(5)))

	v, ok := U64(42).Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), v)

	_, ok = Uint128{Hi: 1}.Uint64()
	assert.False(t, ok)

	assert.Equal(t, "18446744073709551616", Uint128{Hi: 1}.String())
	assert.Equal(t, "850", U64(850).String())
}

func TestHandleText(t *testing.T) {
	h := Handle{0xDE, 0xAD}
	text, err := h.MarshalText()
	assert.NoError(t, err)

	var back Handle
	assert.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, h, back)

	_, err = ParseHandle("abc")
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.True(t, Handle{}.IsZero())
}
