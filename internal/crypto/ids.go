package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an account ID in bytes.
const AccountIDSize = 20

// CalcAccountID computes the account ID from a public key as
// RIPEMD160(SHA256(publicKey)).
func CalcAccountID(publicKey []byte) [AccountIDSize]byte {
	sha256Hash := sha256.Sum256(publicKey)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	ripemd160Hash := ripemd160Hasher.Sum(nil)

	var result [AccountIDSize]byte
	copy(result[:], ripemd160Hash)
	return result
}

// DeriveAuthority computes the identity of a program-owned authority from a
// seed and a derivation salt. Nobody holds a key for it; the ledger engine
// acts for it when it moves custody funds.
func DeriveAuthority(seed []byte, salt uint8) [AccountIDSize]byte {
	buf := make([]byte, 0, len(seed)+1)
	buf = append(buf, seed...)
	buf = append(buf, salt)
	return CalcAccountID(buf)
}

// IsZeroAccountID returns true if the account ID is all zeros.
func IsZeroAccountID(id [AccountIDSize]byte) bool {
	for _, b := range id {
		if b != 0 {
			return false
		}
	}
	return true
}
