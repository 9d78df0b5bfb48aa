package entries

import (
	"errors"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry"
)

// DefaultBump is the derivation salt recorded on program-derived accounts.
const DefaultBump uint8 = 255

var (
	ErrInsufficientShares = errors.New("not enough shares available")
	ErrOverflow           = errors.New("arithmetic overflow")
)

// GlobalVault is the singleton recording the platform's custody
// authority. Custody funds move only under this authority.
type GlobalVault struct {
	Admin          [20]byte `codec:"admin"`
	Authority      [20]byte `codec:"authority"`
	CustodyAccount [32]byte `codec:"custody"`
	Bump           uint8    `codec:"bump"`
}

func (*GlobalVault) EntryType() entry.Type { return entry.TypeGlobalVault }

// AccountRoot records the next operation sequence a signer may use.
type AccountRoot struct {
	Account  [20]byte `codec:"account"`
	Sequence uint32   `codec:"sequence"`
}

func (*AccountRoot) EntryType() entry.Type { return entry.TypeAccountRoot }

// FirstSequence is the sequence of a signer's first operation.
const FirstSequence uint32 = 1

// CompanyAccount is a company's public share inventory and its encrypted
// revenue balance.
type CompanyAccount struct {
	CompanyID       uint64           `codec:"company_id"`
	Admin           [20]byte         `codec:"admin"`
	Revenue         encrypted.Handle `codec:"revenue"`
	SharesAvailable uint64           `codec:"shares_available"`
	PricePerShare   uint64           `codec:"price_per_share"`
	Active          bool             `codec:"active"`
	Bump            uint8            `codec:"bump"`
}

func (*CompanyAccount) EntryType() entry.Type { return entry.TypeCompany }

// ReserveShares removes n shares from the public inventory.
func (c *CompanyAccount) ReserveShares(n uint64) error {
	if c.SharesAvailable < n {
		return ErrInsufficientShares
	}
	c.SharesAvailable -= n
	return nil
}

// ReturnShares adds n shares back to the public inventory.
func (c *CompanyAccount) ReturnShares(n uint64) error {
	sum, ok := CheckedAdd(c.SharesAvailable, n)
	if !ok {
		return ErrOverflow
	}
	c.SharesAvailable = sum
	return nil
}

// Cost returns n times the listed price.
func (c *CompanyAccount) Cost(n uint64) (uint64, error) {
	cost, ok := CheckedMul(n, c.PricePerShare)
	if !ok {
		return 0, ErrOverflow
	}
	return cost, nil
}

// InvestorVault holds an investor's encrypted cash balance.
type InvestorVault struct {
	Owner   [20]byte         `codec:"owner"`
	Balance encrypted.Handle `codec:"balance"`
	Bump    uint8            `codec:"bump"`
}

func (*InvestorVault) EntryType() entry.Type { return entry.TypeInvestorVault }

// PositionAccount holds an investor's encrypted share count in one company.
type PositionAccount struct {
	Owner     [20]byte         `codec:"owner"`
	CompanyID uint64           `codec:"company_id"`
	Shares    encrypted.Handle `codec:"shares"`
	Bump      uint8            `codec:"bump"`
}

func (*PositionAccount) EntryType() entry.Type { return entry.TypePosition }

// TokenAccount is a custody-side plaintext token balance.
type TokenAccount struct {
	Owner   [20]byte `codec:"owner"`
	Balance uint64   `codec:"balance"`
}

func (*TokenAccount) EntryType() entry.Type { return entry.TypeTokenAccount }

// CheckedAdd returns a+b and whether it did not overflow.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

// CheckedMul returns a*b and whether it did not overflow.
func CheckedMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	return p, p/b == a
}
