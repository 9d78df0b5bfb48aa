package platform

import (
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeActivateCompany, func() tx.Transaction {
		return &ActivateCompany{BaseTx: *tx.NewBaseTx(tx.TypeActivateCompany, "")}
	})
}

// ActivateCompany lists a company approved off-ledger, creating its account
// with an encrypted zero revenue balance.
type ActivateCompany struct {
	tx.BaseTx

	CompanyID uint64 `json:"CompanyID"`

	// CompanyAdmin may update the offering and withdraw revenue (required)
	CompanyAdmin string `json:"CompanyAdmin"`

	InitialShares uint64 `json:"InitialShares"`
	PricePerShare uint64 `json:"PricePerShare"`
}

// NewActivateCompany creates a new ActivateCompany operation
func NewActivateCompany(account string, companyID uint64, admin string, initialShares, price uint64) *ActivateCompany {
	return &ActivateCompany{
		BaseTx:        *tx.NewBaseTx(tx.TypeActivateCompany, account),
		CompanyID:     companyID,
		CompanyAdmin:  admin,
		InitialShares: initialShares,
		PricePerShare: price,
	}
}

// TxType returns the operation type
func (a *ActivateCompany) TxType() tx.Type {
	return tx.TypeActivateCompany
}

// Validate checks the company admin address.
func (a *ActivateCompany) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := tx.DecodeAddress("CompanyAdmin", a.CompanyAdmin); err != nil {
		return err
	}
	return nil
}

// Apply creates the company account.
func (a *ActivateCompany) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.IsPlatformAdmin() {
		return ctx.Reject(tx.TecUNAUTHORIZED, "signer is not the platform admin")
	}
	if _, r := ctx.GlobalVault(); r != tx.TesSUCCESS {
		return r
	}

	admin, err := tx.DecodeAddress("CompanyAdmin", a.CompanyAdmin)
	if err != nil {
		return ctx.Reject(tx.TemBAD_ACCOUNT, "%v", err)
	}

	k := keylet.Company(a.CompanyID)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return ctx.Fail(err)
	}
	if exists {
		return ctx.Reject(tx.TefALREADY_INITIALIZED, "company %d already exists", a.CompanyID)
	}

	revenue, err := ctx.Ops.Zero(ctx.Context)
	if err != nil {
		return ctx.Fail(fmt.Errorf("company revenue: %w", err))
	}
	if r := ctx.Share(revenue, admin); r != tx.TesSUCCESS {
		return r
	}

	company := &entries.CompanyAccount{
		CompanyID:       a.CompanyID,
		Admin:           admin,
		Revenue:         revenue,
		SharesAvailable: a.InitialShares,
		PricePerShare:   a.PricePerShare,
		Active:          true,
		Bump:            entries.DefaultBump,
	}
	return ctx.Put(k, company, false)
}
