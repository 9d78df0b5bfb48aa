package escrow

import (
	"testing"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/stretchr/testify/require"
)

var (
	seller = addresscodec.EncodeAccountID([20]byte{0x5e})
	buyer  = addresscodec.EncodeAccountID([20]byte{0xb0})
)

func TestCreateOfferValidation(t *testing.T) {
	require.NoError(t, NewCreateOffer(seller, 1, 1, 10, 3).Validate())
	require.NoError(t, NewCreateOffer(seller, 1, 1, 10, 0).Validate())
	require.NoError(t, NewCreateOffer(seller, 1, 1, 0, 3).Validate())
	require.ErrorIs(t, NewCreateOffer("", 1, 1, 10, 3).Validate(), tx.ErrInvalidAccount)
}

func TestExecuteTradeValidation(t *testing.T) {
	require.NoError(t, NewExecuteTrade(buyer, seller, 1).Validate())
	require.ErrorIs(t, NewExecuteTrade(buyer, "", 1).Validate(), tx.ErrMissingRequiredField)
	require.ErrorIs(t, NewExecuteTrade(buyer, "xyz", 1).Validate(), tx.ErrInvalidAccount)
}
