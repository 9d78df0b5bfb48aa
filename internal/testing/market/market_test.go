// Package market_test contains integration tests for the direct market:
// buying from and selling to a company's own inventory, offering updates
// and revenue withdrawal.
package market_test

import (
	"math"
	"testing"

	"github.com/adipundir/donatrade/internal/core/tx/market"
	"github.com/adipundir/donatrade/internal/core/tx/vault"
	jtx "github.com/adipundir/donatrade/internal/testing"
	"github.com/stretchr/testify/require"
)

const companyC = uint64(7)

// setup lists company C with 100 shares at 10 and gives alice 1000 in her
// vault.
func setup(t *testing.T) (*jtx.TestEnv, *jtx.Account, *jtx.Account) {
	t.Helper()
	env := jtx.NewTestEnv(t)
	alice := jtx.NewAccount("alice")
	founder := jtx.NewAccount("founder")

	env.Init()
	env.ActivateCompany(companyC, founder, 100, 10)
	env.Fund(1000, alice)
	jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(alice.Address, 1000)))
	return env, alice, founder
}

func TestBuyShares_Scenario(t *testing.T) {
	env, alice, _ := setup(t)

	result := env.Submit(market.NewBuyShares(alice.Address, companyC, 20))
	jtx.RequireTxSuccess(t, result)

	jtx.RequireSharesAvailable(t, env, companyC, 80)
	jtx.RequirePosition(t, env, alice, companyC, 20)
	jtx.RequireVaultBalance(t, env, alice, 800)
	jtx.RequireRevenue(t, env, companyC, 200)

	// vault, company, a newly created position and the buyer's account root
	require.Len(t, result.Metadata.AffectedNodes, 4)
}

func TestSellShares_Scenario(t *testing.T) {
	env, alice, _ := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 20)))

	jtx.RequireTxSuccess(t, env.Submit(market.NewSellShares(alice.Address, companyC, 5)))

	jtx.RequireSharesAvailable(t, env, companyC, 85)
	jtx.RequirePosition(t, env, alice, companyC, 15)
	jtx.RequireVaultBalance(t, env, alice, 850)
	jtx.RequireRevenue(t, env, companyC, 150)
}

func TestBuySell_RoundTrip(t *testing.T) {
	env, alice, _ := setup(t)

	for _, n := range []uint64{1, 13, 50, 100} {
		jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, n)))
		jtx.RequireTxSuccess(t, env.Submit(market.NewSellShares(alice.Address, companyC, n)))

		jtx.RequireSharesAvailable(t, env, companyC, 100)
		jtx.RequireVaultBalance(t, env, alice, 1000)
		jtx.RequireRevenue(t, env, companyC, 0)
	}
}

func TestBuyShares_Overflow(t *testing.T) {
	env := jtx.NewTestEnv(t)
	alice := jtx.NewAccount("alice")
	founder := jtx.NewAccount("founder")
	env.Init()
	env.ActivateCompany(companyC, founder, math.MaxUint64, 10)
	env.Fund(1000, alice)
	jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(alice.Address, 1000)))

	before := env.Snapshot()
	result := env.Submit(market.NewBuyShares(alice.Address, companyC, math.MaxUint64/10+1))
	jtx.RequireTxFail(t, result, jtx.TecOVERFLOW)

	jtx.RequireUnchanged(t, env, before)
	jtx.RequireVaultBalance(t, env, alice, 1000)
	require.Nil(t, env.Position(alice, companyC))
}

func TestBuyShares_InsufficientShares(t *testing.T) {
	env, alice, _ := setup(t)
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 101)), jtx.TecINSUFFICIENT_SHARES)
	jtx.RequireUnchanged(t, env, before)
}

func TestBuyShares_Inactive(t *testing.T) {
	env, alice, founder := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(market.NewUpdateOffering(founder.Address, companyC, 10, 0, false)))
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 1)), jtx.TecINACTIVE)
	jtx.RequireUnchanged(t, env, before)
}

func TestBuyShares_ZeroShares(t *testing.T) {
	env, alice, _ := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 0)))
	jtx.RequireSharesAvailable(t, env, companyC, 100)
	jtx.RequirePosition(t, env, alice, companyC, 0)
	jtx.RequireVaultBalance(t, env, alice, 1000)
	jtx.RequireRevenue(t, env, companyC, 0)

	jtx.RequireTxSuccess(t, env.Submit(market.NewSellShares(alice.Address, companyC, 0)))
	jtx.RequireSharesAvailable(t, env, companyC, 100)
	jtx.RequireVaultBalance(t, env, alice, 1000)
}

func TestBuyShares_Preconditions(t *testing.T) {
	env, alice, _ := setup(t)
	bob := jtx.NewAccount("bob")

	tests := []struct {
		name   string
		op     *market.BuyShares
		result string
	}{
		{
			name:   "unknown company",
			op:     market.NewBuyShares(alice.Address, 99, 1),
			result: jtx.TecUNINITIALIZED,
		},
		{
			name:   "buyer without vault",
			op:     market.NewBuyShares(bob.Address, companyC, 1),
			result: jtx.TecUNINITIALIZED,
		},
		{
			name:   "malformed account",
			op:     market.NewBuyShares("not-an-address", companyC, 1),
			result: jtx.TemBAD_ACCOUNT,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := env.Snapshot()
			jtx.RequireTxFail(t, env.Submit(tc.op), tc.result)
			jtx.RequireUnchanged(t, env, before)
		})
	}
}

func TestSellShares_WithoutPosition(t *testing.T) {
	env, alice, _ := setup(t)
	jtx.RequireTxFail(t, env.Submit(market.NewSellShares(alice.Address, companyC, 1)), jtx.TecUNINITIALIZED)
}

func TestSellShares_InventoryOverflow(t *testing.T) {
	env, alice, founder := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 10)))
	jtx.RequireTxSuccess(t, env.Submit(market.NewUpdateOffering(founder.Address, companyC, 10, math.MaxUint64-90, true)))
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(market.NewSellShares(alice.Address, companyC, 10)), jtx.TecOVERFLOW)
	jtx.RequireUnchanged(t, env, before)
}

func TestUpdateOffering(t *testing.T) {
	env, alice, founder := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(market.NewUpdateOffering(founder.Address, companyC, 25, 50, true)))
	company := env.Company(companyC)
	require.Equal(t, uint64(25), company.PricePerShare)
	require.Equal(t, uint64(150), company.SharesAvailable)
	require.True(t, company.Active)

	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 4)))
	jtx.RequireVaultBalance(t, env, alice, 900)
	jtx.RequireRevenue(t, env, companyC, 100)
}

func TestUpdateOffering_Unauthorized(t *testing.T) {
	env, alice, _ := setup(t)
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(market.NewUpdateOffering(alice.Address, companyC, 1, 0, true)), jtx.TecUNAUTHORIZED)
	jtx.RequireUnchanged(t, env, before)
}

func TestUpdateOffering_Overflow(t *testing.T) {
	env, _, founder := setup(t)
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(market.NewUpdateOffering(founder.Address, companyC, 10, math.MaxUint64, true)), jtx.TecOVERFLOW)
	jtx.RequireUnchanged(t, env, before)
}

func TestWithdrawCompanyFunds(t *testing.T) {
	env, alice, founder := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 30)))

	jtx.RequireTxSuccess(t, env.Submit(market.NewWithdrawCompanyFunds(founder.Address, companyC, 120)))

	jtx.RequireRevenue(t, env, companyC, 180)
	jtx.RequireTokens(t, env, founder, 120)
	require.Equal(t, uint64(880), env.VaultTokens())

	jtx.RequireTxSuccess(t, env.Submit(market.NewWithdrawCompanyFunds(founder.Address, companyC, 0)))
	jtx.RequireRevenue(t, env, companyC, 180)
	jtx.RequireTokens(t, env, founder, 120)
}

func TestWithdrawCompanyFunds_Unauthorized(t *testing.T) {
	env, alice, _ := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 30)))
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(market.NewWithdrawCompanyFunds(alice.Address, companyC, 100)), jtx.TecUNAUTHORIZED)
	jtx.RequireUnchanged(t, env, before)
}

func TestWithdrawCompanyFunds_CustodyShortfall(t *testing.T) {
	env, alice, founder := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 30)))
	before := env.Snapshot()

	// The vault holds 1000 tokens in total.
	jtx.RequireTxFail(t, env.Submit(market.NewWithdrawCompanyFunds(founder.Address, companyC, 5000)), jtx.TecCUSTODY_FAILED)
	jtx.RequireUnchanged(t, env, before)
	jtx.RequireRevenue(t, env, companyC, 300)
}

func TestRevenueVisibleToCompanyAdmin(t *testing.T) {
	env, alice, founder := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, companyC, 3)))

	revenue := env.Company(companyC).Revenue
	require.True(t, env.CanView(founder, revenue))
	require.False(t, env.CanView(jtx.NewAccount("mallory"), revenue))
}
