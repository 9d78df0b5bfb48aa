package testing

import (
	"context"
	"testing"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/core/tx/platform"
	"github.com/adipundir/donatrade/internal/custody"
	"github.com/adipundir/donatrade/internal/oracle/memory"
	memdb "github.com/adipundir/donatrade/internal/storage/database/memory"

	_ "github.com/adipundir/donatrade/internal/core/tx/all"
)

// TestEnv manages a ledger for operation testing. Operations run through
// the real engine against an in-memory store.
type TestEnv struct {
	t       *testing.T
	store   *state.CommittedStore
	oracle  *memory.Oracle
	tokens  *custody.TokenProgram
	engine  *tx.Engine
	auditor *Account

	// Admin is the platform admin configured on the engine.
	Admin *Account
}

// EnvOption customizes the collaborators of a TestEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	oracle  encrypted.Oracle
	custody custody.Custody
}

// WithOracle runs operations against o instead of the memory oracle.
// Decryption helpers still read from the memory oracle, so o usually
// wraps or delegates to Oracle().
func WithOracle(o encrypted.Oracle) EnvOption {
	return func(c *envConfig) { c.oracle = o }
}

// WithCustody runs operations against c instead of the token program.
func WithCustody(c custody.Custody) EnvOption {
	return func(cfg *envConfig) { cfg.custody = c }
}

// NewTestEnv creates a new test environment with an empty ledger.
func NewTestEnv(t *testing.T, opts ...EnvOption) *TestEnv {
	t.Helper()

	store, err := state.NewStore(memdb.NewDB(), state.DefaultCacheSize)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	auditor := NewAccount("auditor")
	admin := NewAccount("platform")
	env := &TestEnv{
		t:       t,
		store:   store,
		oracle:  memory.New(auditor.ID),
		tokens:  custody.NewTokenProgram(true),
		auditor: auditor,
		Admin:   admin,
	}

	cfg := envConfig{oracle: env.oracle, custody: env.tokens}
	for _, opt := range opts {
		opt(&cfg)
	}

	env.engine = tx.NewEngine(store, cfg.oracle, cfg.custody, tx.EngineConfig{
		PlatformAdmin: admin.ID,
		VaultBump:     entries.DefaultBump,
	})
	return env
}

// Engine returns the engine operations are submitted to.
func (e *TestEnv) Engine() *tx.Engine {
	return e.engine
}

// Oracle returns the memory oracle backing the environment.
func (e *TestEnv) Oracle() *memory.Oracle {
	return e.oracle
}

// Store returns the committed ledger state.
func (e *TestEnv) Store() *state.CommittedStore {
	return e.store
}

// Submit applies an operation and returns its result.
func (e *TestEnv) Submit(op tx.Transaction) TxResult {
	e.t.Helper()
	return resultFrom(e.engine.Apply(context.Background(), op))
}

// Init initializes the platform vault as the platform admin.
func (e *TestEnv) Init() {
	e.t.Helper()
	RequireTxSuccess(e.t, e.Submit(platform.NewInitializeGlobalVault(e.Admin.Address)))
}

// ActivateCompany lists a company administered by admin.
func (e *TestEnv) ActivateCompany(id uint64, admin *Account, shares, price uint64) {
	e.t.Helper()
	RequireTxSuccess(e.t, e.Submit(platform.NewActivateCompany(e.Admin.Address, id, admin.Address, shares, price)))
}

// Fund mints settlement tokens into the custody account of each account.
func (e *TestEnv) Fund(amount uint64, accounts ...*Account) {
	e.t.Helper()
	table := state.NewApplyStateTable(e.store)
	for _, acc := range accounts {
		if err := e.tokens.Fund(table, acc.ID, amount); err != nil {
			e.t.Fatalf("Failed to fund %s: %v", acc, err)
		}
	}
	if _, err := table.Apply(); err != nil {
		e.t.Fatalf("Failed to commit funding: %v", err)
	}
}

// Tokens returns the custody token balance of acc.
func (e *TestEnv) Tokens(acc *Account) uint64 {
	e.t.Helper()
	balance, _, err := custody.Balance(e.store, acc.ID)
	if err != nil {
		e.t.Fatalf("Failed to read token balance of %s: %v", acc, err)
	}
	return balance
}

// VaultTokens returns the token balance held by the platform vault.
func (e *TestEnv) VaultTokens() uint64 {
	e.t.Helper()
	gv := e.GlobalVault()
	balance, _, err := custody.Balance(e.store, gv.Authority)
	if err != nil {
		e.t.Fatalf("Failed to read vault token balance: %v", err)
	}
	return balance
}

// Decrypt reveals h through the auditor identity.
func (e *TestEnv) Decrypt(h encrypted.Handle) uint64 {
	e.t.Helper()
	v, err := e.oracle.Decrypt(context.Background(), h, e.auditor.ID)
	if err != nil {
		e.t.Fatalf("Failed to decrypt %s: %v", h, err)
	}
	n, ok := v.Uint64()
	if !ok {
		e.t.Fatalf("Decrypted value %s does not fit in 64 bits", v)
	}
	return n
}

// CanView reports whether acc may decrypt h.
func (e *TestEnv) CanView(acc *Account, h encrypted.Handle) bool {
	_, err := e.oracle.Decrypt(context.Background(), h, acc.ID)
	return err == nil
}

func (e *TestEnv) load(k keylet.Keylet, entry entries.LedgerEntry) bool {
	e.t.Helper()
	found, err := state.Load(e.store, k, entry)
	if err != nil {
		e.t.Fatalf("Failed to load %s: %v", k.Type, err)
	}
	return found
}

// GlobalVault returns the platform vault entry.
func (e *TestEnv) GlobalVault() *entries.GlobalVault {
	e.t.Helper()
	var gv entries.GlobalVault
	if !e.load(keylet.GlobalVault(), &gv) {
		e.t.Fatalf("Platform vault is not initialized")
	}
	return &gv
}

// Company returns a company entry.
func (e *TestEnv) Company(id uint64) *entries.CompanyAccount {
	e.t.Helper()
	var c entries.CompanyAccount
	if !e.load(keylet.Company(id), &c) {
		e.t.Fatalf("Company %d does not exist", id)
	}
	return &c
}

// Vault returns the investor vault of acc, or nil.
func (e *TestEnv) Vault(acc *Account) *entries.InvestorVault {
	e.t.Helper()
	var v entries.InvestorVault
	if !e.load(keylet.InvestorVault(acc.ID), &v) {
		return nil
	}
	return &v
}

// Position returns the position of acc in a company, or nil.
func (e *TestEnv) Position(acc *Account, companyID uint64) *entries.PositionAccount {
	e.t.Helper()
	var p entries.PositionAccount
	if !e.load(keylet.Position(companyID, acc.ID), &p) {
		return nil
	}
	return &p
}

// Offer returns an offer entry, or nil.
func (e *TestEnv) Offer(seller *Account, offerID uint64) *entries.OfferAccount {
	e.t.Helper()
	var o entries.OfferAccount
	if !e.load(keylet.Offer(seller.ID, offerID), &o) {
		return nil
	}
	return &o
}

// VaultBalance returns the decrypted cash balance of acc.
func (e *TestEnv) VaultBalance(acc *Account) uint64 {
	e.t.Helper()
	v := e.Vault(acc)
	if v == nil {
		e.t.Fatalf("Vault of %s does not exist", acc)
	}
	return e.Decrypt(v.Balance)
}

// Shares returns the decrypted share count of acc in a company.
func (e *TestEnv) Shares(acc *Account, companyID uint64) uint64 {
	e.t.Helper()
	p := e.Position(acc, companyID)
	if p == nil {
		e.t.Fatalf("Position of %s in company %d does not exist", acc, companyID)
	}
	return e.Decrypt(p.Shares)
}

// Revenue returns the decrypted revenue of a company.
func (e *TestEnv) Revenue(companyID uint64) uint64 {
	e.t.Helper()
	return e.Decrypt(e.Company(companyID).Revenue)
}

// Snapshot captures every committed entry, for asserting that a failed
// operation left the ledger untouched.
func (e *TestEnv) Snapshot() map[[32]byte]string {
	e.t.Helper()
	snap := make(map[[32]byte]string)
	err := e.store.ForEach(func(key [32]byte, data []byte) bool {
		snap[key] = string(data)
		return true
	})
	if err != nil {
		e.t.Fatalf("Failed to snapshot ledger: %v", err)
	}
	return snap
}
