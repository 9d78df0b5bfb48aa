// Package testing provides test infrastructure for ledger operation tests.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: a ledger over an in-memory store with the memory oracle and
//     the token program as custody
//   - Account: deterministic test accounts with keypairs
//   - Assertions: helpers for result codes and decrypted balances
//
// # Basic Usage
//
//	func TestBuy(t *testing.T) {
//	    env := jtx.NewTestEnv(t)
//	    alice := jtx.NewAccount("alice")
//	    founder := jtx.NewAccount("founder")
//
//	    env.Init()
//	    env.ActivateCompany(1, founder, 100, 10)
//	    env.Fund(alice, 1000)
//
//	    jtx.RequireTxSuccess(t, env.Submit(vault.NewDeposit(alice.Address, 1000)))
//	    jtx.RequireTxSuccess(t, env.Submit(market.NewBuyShares(alice.Address, 1, 20)))
//
//	    jtx.RequireVaultBalance(t, env, alice, 800)
//	    jtx.RequirePosition(t, env, alice, 1, 20)
//	}
//
// Encrypted balances are read back through an auditor identity that the
// environment's oracle allows on every handle.
package testing
