// Package encrypted defines the opaque encrypted-value handles stored in
// ledger accounts and the oracle contract used to compute over them.
package encrypted

import (
	"encoding/hex"
	"errors"
	"strings"
)

// HandleSize is the width of an encrypted-value handle.
const HandleSize = 16

var ErrInvalidHandle = errors.New("invalid encrypted handle")

// Handle is an opaque 128-bit reference to a ciphertext held by the oracle.
// The all-zero handle is the value of a field that has never been combined
// and carries no ciphertext.
type Handle [HandleSize]byte

// IsZero reports whether h is the never-combined handle.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// String returns the upper-case hex form of the handle.
func (h Handle) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(text []byte) error {
	parsed, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHandle parses a 32 character hex string.
func ParseHandle(s string) (Handle, error) {
	var h Handle
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != HandleSize {
		return h, ErrInvalidHandle
	}
	copy(h[:], raw)
	return h, nil
}
