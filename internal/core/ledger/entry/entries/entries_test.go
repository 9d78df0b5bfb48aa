package entries

import (
	"math"
	"testing"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCompany(t *testing.T) {
	c := &CompanyAccount{
		CompanyID:       42,
		Admin:           [20]byte{9},
		Revenue:         encrypted.Handle{1, 2, 3},
		SharesAvailable: 100,
		PricePerShare:   10,
		Active:          true,
		Bump:            DefaultBump,
	}

	data, err := Encode(c)
	require.NoError(t, err)

	typ, err := TypeOf(data)
	require.NoError(t, err)
	assert.Equal(t, entry.TypeCompany, typ)

	var got CompanyAccount
	require.NoError(t, Decode(data, &got))
	assert.Equal(t, *c, got)
}

func TestDecodeTypeMismatch(t *testing.T) {
	data, err := Encode(&InvestorVault{Owner: [20]byte{1}})
	require.NoError(t, err)

	err = Decode(data, &PositionAccount{})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = TypeOf([]byte{1})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeAny(t *testing.T) {
	offer := &OfferAccount{
		OfferID:       3,
		Seller:        [20]byte{7},
		CompanyID:     1,
		ShareAmount:   5,
		PricePerShare: 12,
		Escrow:        NewEscrow(encrypted.Handle{5}),
	}
	data, err := Encode(offer)
	require.NoError(t, err)

	e, err := DecodeAny(data)
	require.NoError(t, err)
	require.IsType(t, &OfferAccount{}, e)
	assert.Equal(t, offer, e)
}

func TestEscrowLifecycle(t *testing.T) {
	escrowed := encrypted.Handle{0xEE}
	zero := encrypted.Handle{0x00, 0x01}

	e := NewEscrow(escrowed)
	h, ok := e.Held()
	require.True(t, ok)
	assert.Equal(t, escrowed, h)

	released, err := e.Settle(zero)
	require.NoError(t, err)
	assert.Equal(t, escrowed, released)
	assert.Equal(t, EscrowSettled, e.Status)
	assert.Equal(t, zero, e.Shares)

	_, ok = e.Held()
	assert.False(t, ok)

	_, err = e.Settle(zero)
	assert.ErrorIs(t, err, ErrEscrowSettled)
}

func TestCompanyShareAccounting(t *testing.T) {
	c := &CompanyAccount{SharesAvailable: 100, PricePerShare: 10}

	require.NoError(t, c.ReserveShares(20))
	assert.Equal(t, uint64(80), c.SharesAvailable)
	assert.ErrorIs(t, c.ReserveShares(81), ErrInsufficientShares)

	require.NoError(t, c.ReturnShares(5))
	assert.Equal(t, uint64(85), c.SharesAvailable)

	c.SharesAvailable = math.MaxUint64
	assert.ErrorIs(t, c.ReturnShares(1), ErrOverflow)

	cost, err := c.Cost(20)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), cost)

	c.PricePerShare = math.MaxUint64
	_, err = c.Cost(2)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestCheckedArithmetic(t *testing.T) {
	_, ok := CheckedMul(math.MaxUint64/2+1, 2)
	assert.False(t, ok)
	v, ok := CheckedMul(0, math.MaxUint64)
	assert.True(t, ok)
	assert.Zero(t, v)
	_, ok = CheckedAdd(math.MaxUint64, 1)
	assert.False(t, ok)
}
