package crypto

import (
	"encoding/hex"
	"testing"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcAccountID(t *testing.T) {
	tests := []struct {
		name      string
		publicKey string
		accountID string
	}{
		{
			name:      "Secp256k1 public key",
			publicKey: "0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020",
			accountID: "b5f762798a53d543a014caf8b297cff8f2f937e8",
		},
		{
			name:      "Key derived from seed alice",
			publicKey: "039997A497D964FC1A62885B05A51166A65A90DF00492C8D7CF61D6ACCF54803BE",
			accountID: "33b94b70bbd434f0ad01925669bedf3469832b58",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pubKey, err := hex.DecodeString(tt.publicKey)
			require.NoError(t, err)

			accountID := CalcAccountID(pubKey)

			expectedID, err := hex.DecodeString(tt.accountID)
			require.NoError(t, err)
			assert.Equal(t, expectedID, accountID[:])
		})
	}
}

func TestKeyPairFromSeedVector(t *testing.T) {
	kp := KeyPairFromSeed("alice")

	assert.Equal(t, "2bd806c97f0e00af1a1fc3328fa763a9269723c8db8fac4f93af71db186d6e90", kp.PrivateKeyHex())
	assert.Equal(t, "039997a497d964fc1a62885b05a51166a65a90df00492c8d7cf61d6accf54803be", hex.EncodeToString(kp.PublicKey()))

	id := kp.AccountID()
	assert.Equal(t, CalcAccountID(kp.PublicKey()), id)
	assert.Equal(t, "33b94b70bbd434f0ad01925669bedf3469832b58", hex.EncodeToString(id[:]))

	address := addresscodec.EncodeAccountID(id)
	assert.Equal(t, "D9rayYRAaUvo3bREY9NPJ2h8ihCeNr4mmk", address)
	decoded, err := addresscodec.DecodeAccountID(address)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestDeriveAuthority(t *testing.T) {
	a := DeriveAuthority([]byte("vault_authority"), 255)
	b := DeriveAuthority([]byte("vault_authority"), 254)

	assert.Equal(t, a, DeriveAuthority([]byte("vault_authority"), 255))
	assert.NotEqual(t, a, b)
	assert.False(t, IsZeroAccountID(a))
	assert.True(t, IsZeroAccountID([AccountIDSize]byte{}))
}
