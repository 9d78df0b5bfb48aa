// Package addresscodec converts account IDs to and from their human readable
// base58check form.
package addresscodec

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/mr-tron/base58"
)

// AccountAddressPrefix is the version byte prepended to account IDs.
const AccountAddressPrefix byte = 0x1e

const (
	accountIDLength = 20
	checksumLength  = 4
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidChecksum = errors.New("invalid address checksum")
	ErrInvalidPrefix   = errors.New("invalid address prefix")
)

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

// EncodeAccountID returns the address of an account ID.
func EncodeAccountID(id [accountIDLength]byte) string {
	payload := make([]byte, 0, 1+accountIDLength+checksumLength)
	payload = append(payload, AccountAddressPrefix)
	payload = append(payload, id[:]...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

// DecodeAccountID parses an address back into its account ID.
func DecodeAccountID(address string) ([accountIDLength]byte, error) {
	var id [accountIDLength]byte

	raw, err := base58.Decode(address)
	if err != nil {
		return id, ErrInvalidAddress
	}
	if len(raw) != 1+accountIDLength+checksumLength {
		return id, ErrInvalidAddress
	}
	body, sum := raw[:1+accountIDLength], raw[1+accountIDLength:]
	if !bytes.Equal(checksum(body), sum) {
		return id, ErrInvalidChecksum
	}
	if body[0] != AccountAddressPrefix {
		return id, ErrInvalidPrefix
	}
	copy(id[:], body[1:])
	return id, nil
}

// IsValidAddress reports whether address decodes to an account ID.
func IsValidAddress(address string) bool {
	_, err := DecodeAccountID(address)
	return err == nil
}
