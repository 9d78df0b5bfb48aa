// Package position_test contains integration tests for share transfers
// between positions.
package position_test

import (
	"testing"

	"github.com/adipundir/donatrade/internal/core/tx/market"
	"github.com/adipundir/donatrade/internal/core/tx/position"
	"github.com/adipundir/donatrade/internal/core/tx/vault"
	jtx "github.com/adipundir/donatrade/internal/testing"
	"github.com/stretchr/testify/require"
)

const company = uint64(5)

func setup(t *testing.T) (*jtx.TestEnv, *jtx.Account, *jtx.Account) {
	t.Helper()
	env := jtx.NewTestEnv(t)
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	founder := jtx.NewAccount("founder")

	env.Init()
	env.ActivateCompany(company, founder, 100, 1)
	env.Fund(100, alice)
	jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(alice.Address, 100)))
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, company, 30)))
	return env, alice, bob
}

func TestTransferShares(t *testing.T) {
	env, alice, bob := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(position.NewTransferShares(alice.Address, company, bob.Address, 12)))
	jtx.RequirePosition(t, env, alice, company, 18)
	jtx.RequirePosition(t, env, bob, company, 12)
	require.True(t, env.CanView(bob, env.Position(bob, company).Shares))
	require.False(t, env.CanView(alice, env.Position(bob, company).Shares))
	require.True(t, env.CanView(alice, env.Position(alice, company).Shares))
	require.False(t, env.CanView(bob, env.Position(alice, company).Shares))
	require.Nil(t, env.Vault(bob))

	jtx.RequireTxSuccess(t, env.Submit(position.NewTransferShares(alice.Address, company, bob.Address, 3)))
	jtx.RequirePosition(t, env, alice, company, 15)
	jtx.RequirePosition(t, env, bob, company, 15)
}

func TestTransferShares_ToSelf(t *testing.T) {
	env, alice, _ := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(position.NewTransferShares(alice.Address, company, alice.Address, 10)))
	jtx.RequirePosition(t, env, alice, company, 30)
}

func TestTransferShares_ReceiverCanSell(t *testing.T) {
	env, alice, bob := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(position.NewTransferShares(alice.Address, company, bob.Address, 10)))

	// bob has no vault yet; selling creates it.
	jtx.RequireTxSuccess(t, env.Submit(market.NewSellShares(bob.Address, company, 4)))
	jtx.RequireVaultBalance(t, env, bob, 4)
	jtx.RequirePosition(t, env, bob, company, 6)
	jtx.RequireSharesAvailable(t, env, company, 74)
}

func TestTransferShares_Preconditions(t *testing.T) {
	env, alice, bob := setup(t)
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(position.NewTransferShares(bob.Address, company, alice.Address, 1)), jtx.TecUNINITIALIZED)
	jtx.RequireTxFail(t, env.Submit(position.NewTransferShares(alice.Address, company, "", 1)), jtx.TemMALFORMED)
	jtx.RequireTxFail(t, env.Submit(position.NewTransferShares(alice.Address, company, "rubbish", 1)), jtx.TemBAD_ACCOUNT)

	jtx.RequireUnchanged(t, env, before)
}

func TestTransferShares_ZeroAmount(t *testing.T) {
	env, alice, bob := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(position.NewTransferShares(alice.Address, company, bob.Address, 0)))
	jtx.RequirePosition(t, env, alice, company, 30)
	jtx.RequirePosition(t, env, bob, company, 0)
	require.True(t, env.CanView(bob, env.Position(bob, company).Shares))
}
