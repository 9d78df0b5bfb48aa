package tx

import (
	"context"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/custody"
	"github.com/adipundir/donatrade/internal/log"
)

// ApplyContext provides all the state and helpers needed to apply an
// operation. It is passed to Appliable.Apply() instead of individual
// parameters.
type ApplyContext struct {
	// Context bounds oracle and custody calls
	Context context.Context

	// View is the staged state table; nothing written here is visible to
	// others until the engine commits it
	View state.View

	// AccountID is the authenticated signer
	AccountID [20]byte

	Config EngineConfig

	TxHash [32]byte

	// Ops issues oracle calls on behalf of the signer
	Ops *encrypted.Ops

	Custody custody.Custody

	Logger log.Logger

	detail error
}

// Fail records err and returns the result code it maps to.
func (ctx *ApplyContext) Fail(err error) Result {
	ctx.detail = err
	return ResultFromError(err)
}

// Reject records a message and returns r.
func (ctx *ApplyContext) Reject(r Result, format string, args ...interface{}) Result {
	ctx.detail = fmt.Errorf(format, args...)
	return r
}

// Detail returns the recorded failure, if any.
func (ctx *ApplyContext) Detail() error {
	return ctx.detail
}

// IsPlatformAdmin reports whether the signer may run platform bootstrap
// operations. An unset admin leaves bootstrap open, as on a local devnet.
func (ctx *ApplyContext) IsPlatformAdmin() bool {
	var zero [20]byte
	return ctx.Config.PlatformAdmin == zero || ctx.Config.PlatformAdmin == ctx.AccountID
}

// GlobalVault loads the platform vault singleton.
func (ctx *ApplyContext) GlobalVault() (*entries.GlobalVault, Result) {
	var gv entries.GlobalVault
	found, err := state.Load(ctx.View, keylet.GlobalVault(), &gv)
	if err != nil {
		return nil, ctx.Fail(err)
	}
	if !found {
		return nil, ctx.Reject(TecUNINITIALIZED, "platform vault is not initialized")
	}
	return &gv, TesSUCCESS
}

// Company loads a company account.
func (ctx *ApplyContext) Company(companyID uint64) (*entries.CompanyAccount, Result) {
	var c entries.CompanyAccount
	found, err := state.Load(ctx.View, keylet.Company(companyID), &c)
	if err != nil {
		return nil, ctx.Fail(err)
	}
	if !found {
		return nil, ctx.Reject(TecUNINITIALIZED, "company %d does not exist", companyID)
	}
	return &c, TesSUCCESS
}

// Vault loads an investor vault. A missing vault is returned as a fresh
// entry with exists false, ready to be created on first credit.
func (ctx *ApplyContext) Vault(owner [20]byte) (*entries.InvestorVault, bool, Result) {
	v := entries.InvestorVault{Owner: owner, Bump: entries.DefaultBump}
	found, err := state.Load(ctx.View, keylet.InvestorVault(owner), &v)
	if err != nil {
		return nil, false, ctx.Fail(err)
	}
	return &v, found, TesSUCCESS
}

// ExistingVault loads an investor vault that must already exist.
func (ctx *ApplyContext) ExistingVault(owner [20]byte) (*entries.InvestorVault, Result) {
	v, found, r := ctx.Vault(owner)
	if r != TesSUCCESS {
		return nil, r
	}
	if !found {
		return nil, ctx.Reject(TecUNINITIALIZED, "investor vault does not exist")
	}
	return v, TesSUCCESS
}

// Position loads a position. A missing position is returned as a fresh
// entry with exists false.
func (ctx *ApplyContext) Position(companyID uint64, owner [20]byte) (*entries.PositionAccount, bool, Result) {
	p := entries.PositionAccount{Owner: owner, CompanyID: companyID, Bump: entries.DefaultBump}
	found, err := state.Load(ctx.View, keylet.Position(companyID, owner), &p)
	if err != nil {
		return nil, false, ctx.Fail(err)
	}
	return &p, found, TesSUCCESS
}

// ExistingPosition loads a position that must already exist.
func (ctx *ApplyContext) ExistingPosition(companyID uint64, owner [20]byte) (*entries.PositionAccount, Result) {
	p, found, r := ctx.Position(companyID, owner)
	if r != TesSUCCESS {
		return nil, r
	}
	if !found {
		return nil, ctx.Reject(TecUNINITIALIZED, "position in company %d does not exist", companyID)
	}
	return p, TesSUCCESS
}

// Offer loads an offer account.
func (ctx *ApplyContext) Offer(seller [20]byte, offerID uint64) (*entries.OfferAccount, Result) {
	var o entries.OfferAccount
	found, err := state.Load(ctx.View, keylet.Offer(seller, offerID), &o)
	if err != nil {
		return nil, ctx.Fail(err)
	}
	if !found {
		return nil, ctx.Reject(TecUNINITIALIZED, "offer %d does not exist", offerID)
	}
	return &o, TesSUCCESS
}

// Put stages e at k, creating or updating it.
func (ctx *ApplyContext) Put(k keylet.Keylet, e entries.LedgerEntry, exists bool) Result {
	if err := state.Put(ctx.View, k, e, exists); err != nil {
		return ctx.Fail(err)
	}
	return TesSUCCESS
}

// Share gives owner a view of a balance just written into an account
// owner holds. Results carry no allowance until this is called.
func (ctx *ApplyContext) Share(h encrypted.Handle, owner [20]byte) Result {
	if err := ctx.Ops.Share(ctx.Context, h, owner); err != nil {
		return ctx.Fail(err)
	}
	return TesSUCCESS
}

// Transfer moves settlement tokens through the custody mechanism inside
// the staged view.
func (ctx *ApplyContext) Transfer(from, to, authority [20]byte, amount uint64) Result {
	if err := ctx.Custody.Transfer(ctx.Context, ctx.View, from, to, authority, amount); err != nil {
		return ctx.Reject(TecCUSTODY_FAILED, "custody transfer: %v", err)
	}
	return TesSUCCESS
}
