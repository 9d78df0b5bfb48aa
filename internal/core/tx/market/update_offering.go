package market

import (
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeUpdateOffering, func() tx.Transaction {
		return &UpdateOffering{BaseTx: *tx.NewBaseTx(tx.TypeUpdateOffering, "")}
	})
}

// UpdateOffering lets a company admin reprice, restock and (de)activate
// the company's direct offering.
type UpdateOffering struct {
	tx.BaseTx

	CompanyID uint64 `json:"CompanyID"`
	NewPrice  uint64 `json:"NewPrice"`
	AddShares uint64 `json:"AddShares"`
	Active    bool   `json:"Active"`
}

// NewUpdateOffering creates a new UpdateOffering operation
func NewUpdateOffering(account string, companyID, newPrice, addShares uint64, active bool) *UpdateOffering {
	return &UpdateOffering{
		BaseTx:    *tx.NewBaseTx(tx.TypeUpdateOffering, account),
		CompanyID: companyID,
		NewPrice:  newPrice,
		AddShares: addShares,
		Active:    active,
	}
}

// TxType returns the operation type
func (u *UpdateOffering) TxType() tx.Type {
	return tx.TypeUpdateOffering
}

// Apply updates the public offering fields.
func (u *UpdateOffering) Apply(ctx *tx.ApplyContext) tx.Result {
	company, r := ctx.Company(u.CompanyID)
	if r != tx.TesSUCCESS {
		return r
	}
	if company.Admin != ctx.AccountID {
		return ctx.Reject(tx.TecUNAUTHORIZED, "signer is not the admin of company %d", u.CompanyID)
	}

	company.PricePerShare = u.NewPrice
	if err := company.ReturnShares(u.AddShares); err != nil {
		return ctx.Fail(fmt.Errorf("add %d shares: %w", u.AddShares, err))
	}
	company.Active = u.Active

	return ctx.Put(keylet.Company(u.CompanyID), company, true)
}
