// Package entries defines the ledger account types and their storage
// encoding: a two byte big-endian entry type followed by a msgpack body.
package entries

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/entry"
	"github.com/ugorji/go/codec"
)

var (
	ErrTruncated    = errors.New("ledger entry truncated")
	ErrTypeMismatch = errors.New("ledger entry type mismatch")
)

// LedgerEntry is implemented by every stored account type.
type LedgerEntry interface {
	EntryType() entry.Type
}

var msgpack = &codec.MsgpackHandle{}

func init() {
	msgpack.WriteExt = true
	msgpack.Canonical = true
}

// Encode serializes e with its type prefix.
func Encode(e LedgerEntry) ([]byte, error) {
	out := make([]byte, 2, 128)
	binary.BigEndian.PutUint16(out, uint16(e.EntryType()))

	var body []byte
	if err := codec.NewEncoderBytes(&body, msgpack).Encode(e); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.EntryType(), err)
	}
	return append(out, body...), nil
}

// Decode parses data into e, checking the stored type matches.
func Decode(data []byte, e LedgerEntry) error {
	t, err := TypeOf(data)
	if err != nil {
		return err
	}
	if t != e.EntryType() {
		return fmt.Errorf("%w: stored %s, want %s", ErrTypeMismatch, t, e.EntryType())
	}
	if err := codec.NewDecoderBytes(data[2:], msgpack).Decode(e); err != nil {
		return fmt.Errorf("decode %s: %w", t, err)
	}
	return nil
}

// TypeOf returns the entry type of serialized data.
func TypeOf(data []byte) (entry.Type, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return entry.Type(binary.BigEndian.Uint16(data)), nil
}

// New returns an empty entry of type t, or nil for unknown types.
func New(t entry.Type) LedgerEntry {
	switch t {
	case entry.TypeGlobalVault:
		return &GlobalVault{}
	case entry.TypeAccountRoot:
		return &AccountRoot{}
	case entry.TypeCompany:
		return &CompanyAccount{}
	case entry.TypeInvestorVault:
		return &InvestorVault{}
	case entry.TypePosition:
		return &PositionAccount{}
	case entry.TypeOffer:
		return &OfferAccount{}
	case entry.TypeTokenAccount:
		return &TokenAccount{}
	}
	return nil
}

// DecodeAny parses data into a new entry of the stored type.
func DecodeAny(data []byte) (LedgerEntry, error) {
	t, err := TypeOf(data)
	if err != nil {
		return nil, err
	}
	e := New(t)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrTypeMismatch, t)
	}
	if err := Decode(data, e); err != nil {
		return nil, err
	}
	return e, nil
}
