package entries

import (
	"errors"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry"
)

// ErrEscrowSettled is returned when settling an escrow twice.
var ErrEscrowSettled = errors.New("escrow already settled")

// EscrowStatus tags the state of an offer's escrow.
type EscrowStatus uint8

const (
	// EscrowActive escrows shares awaiting a buyer.
	EscrowActive EscrowStatus = iota + 1
	// EscrowSettled has released its shares; the stored handle is a
	// lifted zero.
	EscrowSettled
)

func (s EscrowStatus) String() string {
	switch s {
	case EscrowActive:
		return "active"
	case EscrowSettled:
		return "settled"
	}
	return "unknown"
}

// Escrow holds the encrypted shares a seller committed to an offer.
type Escrow struct {
	Status EscrowStatus     `codec:"status"`
	Shares encrypted.Handle `codec:"shares"`
}

// NewEscrow creates an active escrow holding shares.
func NewEscrow(shares encrypted.Handle) Escrow {
	return Escrow{Status: EscrowActive, Shares: shares}
}

// Held returns the escrowed handle while the escrow is active.
func (e Escrow) Held() (encrypted.Handle, bool) {
	if e.Status != EscrowActive {
		return encrypted.Handle{}, false
	}
	return e.Shares, true
}

// Settle releases the escrow, replacing its handle with zero and
// returning the handle it held.
func (e *Escrow) Settle(zero encrypted.Handle) (encrypted.Handle, error) {
	held, ok := e.Held()
	if !ok {
		return encrypted.Handle{}, ErrEscrowSettled
	}
	e.Status = EscrowSettled
	e.Shares = zero
	return held, nil
}

// OfferAccount is a seller's standing offer with its escrowed shares.
type OfferAccount struct {
	OfferID       uint64   `codec:"offer_id"`
	Seller        [20]byte `codec:"seller"`
	CompanyID     uint64   `codec:"company_id"`
	ShareAmount   uint64   `codec:"share_amount"`
	PricePerShare uint64   `codec:"price_per_share"`
	Escrow        Escrow   `codec:"escrow"`
	Bump          uint8    `codec:"bump"`
}

func (*OfferAccount) EntryType() entry.Type { return entry.TypeOffer }

// IsActive reports whether the offer can still be taken.
func (o *OfferAccount) IsActive() bool {
	_, ok := o.Escrow.Held()
	return ok
}

// Cost returns the plaintext price of taking the offer.
func (o *OfferAccount) Cost() (uint64, error) {
	cost, ok := CheckedMul(o.ShareAmount, o.PricePerShare)
	if !ok {
		return 0, ErrOverflow
	}
	return cost, nil
}
