// Package failure_test injects collaborator failures into otherwise valid
// operations and checks that nothing the operation staged survives.
package failure_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/encrypted/mocks"
	"github.com/adipundir/donatrade/internal/core/tx/escrow"
	"github.com/adipundir/donatrade/internal/core/tx/market"
	"github.com/adipundir/donatrade/internal/core/tx/platform"
	"github.com/adipundir/donatrade/internal/core/tx/vault"
	"github.com/adipundir/donatrade/internal/custody"
	custodymocks "github.com/adipundir/donatrade/internal/custody/mocks"
	jtx "github.com/adipundir/donatrade/internal/testing"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var errOracleDown = errors.New("oracle unavailable")

// faultyOracle forwards to the environment's memory oracle until armed,
// then fails the nth call of one kind.
type faultyOracle struct {
	op    string
	after int
	armed bool
	calls map[string]int
}

func (f *faultyOracle) arm(op string, after int) {
	f.op, f.after, f.armed = op, after, true
	f.calls = map[string]int{}
}

func (f *faultyOracle) fail(op string) bool {
	if !f.armed || op != f.op {
		return false
	}
	f.calls[op]++
	return f.calls[op] > f.after
}

func newFaultyEnv(t *testing.T) (*jtx.TestEnv, *faultyOracle) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockOracle(ctrl)
	env := jtx.NewTestEnv(t, jtx.WithOracle(mock))
	mem := env.Oracle()
	f := &faultyOracle{}

	mock.EXPECT().Lift(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, signer [20]byte, v encrypted.Uint128) (encrypted.Handle, error) {
			if f.fail("lift") {
				return encrypted.Handle{}, errOracleDown
			}
			return mem.Lift(ctx, signer, v)
		}).AnyTimes()
	mock.EXPECT().Add(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
			if f.fail("add") {
				return encrypted.Handle{}, errOracleDown
			}
			return mem.Add(ctx, signer, a, b)
		}).AnyTimes()
	mock.EXPECT().Sub(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
			if f.fail("sub") {
				return encrypted.Handle{}, errOracleDown
			}
			return mem.Sub(ctx, signer, a, b)
		}).AnyTimes()
	mock.EXPECT().Mul(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
			if f.fail("mul") {
				return encrypted.Handle{}, errOracleDown
			}
			return mem.Mul(ctx, signer, a, b)
		}).AnyTimes()
	mock.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, h encrypted.Handle, id [20]byte) error {
			if f.fail("allow") {
				return errOracleDown
			}
			return mem.Allow(ctx, h, id)
		}).AnyTimes()
	mock.EXPECT().GrantView(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, h encrypted.Handle, authorizing, target [20]byte) error {
			if f.fail("grant") {
				return errOracleDown
			}
			return mem.GrantView(ctx, h, authorizing, target)
		}).AnyTimes()

	return env, f
}

func TestExecuteTrade_OracleFailureAfterPayment(t *testing.T) {
	env, faults := newFaultyEnv(t)
	seller := jtx.NewAccount("seller")
	buyer := jtx.NewAccount("buyer")
	founder := jtx.NewAccount("founder")

	env.Init()
	env.ActivateCompany(1, founder, 100, 10)
	env.Fund(500, seller, buyer)
	jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(seller.Address, 100)))
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(seller.Address, 1, 10)))
	jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(buyer.Address, 500)))
	jtx.RequireTxSuccess(t, env.Submit(escrow.NewCreateOffer(seller.Address, 1, 1, 10, 20)))
	before := env.Snapshot()

	// The cost lift succeeds; the next lift fails once both vaults have
	// been staged.
	faults.arm("lift", 1)
	result := env.Submit(escrow.NewExecuteTrade(buyer.Address, seller.Address, 1))
	jtx.RequireTxFail(t, result, jtx.TefORACLE)
	require.Contains(t, result.Message, errOracleDown.Error())

	jtx.RequireUnchanged(t, env, before)
	require.True(t, env.Offer(seller, 1).IsActive())
	require.Nil(t, env.Position(buyer, 1))
	jtx.RequireVaultBalance(t, env, buyer, 500)
	jtx.RequireVaultBalance(t, env, seller, 0)
}

func TestBuyShares_OracleFailureMidway(t *testing.T) {
	for _, tc := range []struct {
		op    string
		after int
	}{
		{"lift", 0},
		{"sub", 0},
		{"add", 0},
		{"allow", 0},
		{"lift", 1},
		{"add", 1},
	} {
		t.Run(tc.op, func(t *testing.T) {
			env, faults := newFaultyEnv(t)
			alice := jtx.NewAccount("alice")
			founder := jtx.NewAccount("founder")
			env.Init()
			env.ActivateCompany(1, founder, 100, 10)
			env.Fund(1000, alice)
			jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(alice.Address, 1000)))
			before := env.Snapshot()

			faults.arm(tc.op, tc.after)
			jtx.RequireTxFail(t, env.Submit(market.NewBuyShares(alice.Address, 1, 20)), jtx.TefORACLE)

			jtx.RequireUnchanged(t, env, before)
			jtx.RequireSharesAvailable(t, env, 1, 100)
		})
	}
}

func TestSellShares_MulFailure(t *testing.T) {
	env, faults := newFaultyEnv(t)
	alice := jtx.NewAccount("alice")
	founder := jtx.NewAccount("founder")
	env.Init()
	env.ActivateCompany(1, founder, 100, 10)
	env.Fund(1000, alice)
	jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(alice.Address, 1000)))
	jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, 1, 20)))
	before := env.Snapshot()

	faults.arm("mul", 0)
	jtx.RequireTxFail(t, env.Submit(market.NewSellShares(alice.Address, 1, 5)), jtx.TefORACLE)
	jtx.RequireUnchanged(t, env, before)
}

func TestDeposit_CustodyRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	cust := custodymocks.NewMockCustody(ctrl)
	env := jtx.NewTestEnv(t, jtx.WithCustody(cust))
	alice := jtx.NewAccount("alice")
	env.Init()
	authority := env.GlobalVault().Authority
	before := env.Snapshot()
	handles := env.Oracle().Len()

	cust.EXPECT().
		Transfer(gomock.Any(), gomock.Any(), alice.ID, authority, alice.ID, uint64(10)).
		Return(custody.ErrInsufficientTokens).
		Times(1)

	jtx.RequireTxFail(t, env.Submit(vault.NewDeposit(alice.Address, 10)), jtx.TecCUSTODY_FAILED)

	jtx.RequireUnchanged(t, env, before)
	require.Equal(t, handles, env.Oracle().Len(), "no oracle call may follow a failed transfer")
}

func TestWithdraw_CustodyRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	cust := custodymocks.NewMockCustody(ctrl)
	env := jtx.NewTestEnv(t, jtx.WithCustody(cust))
	alice := jtx.NewAccount("alice")
	env.Init()
	authority := platform.VaultAuthority(env.GlobalVault().Bump)

	gomock.InOrder(
		cust.EXPECT().Transfer(gomock.Any(), gomock.Any(), alice.ID, authority, alice.ID, uint64(70)).Return(nil),
		cust.EXPECT().Transfer(gomock.Any(), gomock.Any(), authority, alice.ID, authority, uint64(30)).Return(errors.New("paused")),
	)

	jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(alice.Address, 70)))
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.Submit(vault.NewWithdraw(alice.Address, 30)), jtx.TecCUSTODY_FAILED)
	jtx.RequireUnchanged(t, env, before)
	jtx.RequireVaultBalance(t, env, alice, 70)
}
