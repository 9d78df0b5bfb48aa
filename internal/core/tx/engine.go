package tx

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/custody"
	crypto "github.com/adipundir/donatrade/internal/crypto/common"
	"github.com/adipundir/donatrade/internal/log"
	"github.com/sasha-s/go-deadlock"
)

// hashPrefix domain-separates operation hashes.
var hashPrefix = []byte("OPN\x00")

// EngineConfig holds configuration for the operation engine
type EngineConfig struct {
	// PlatformAdmin may initialize the platform vault and activate
	// companies. The zero value leaves bootstrap open.
	PlatformAdmin [20]byte

	// VaultBump is the salt the vault authority identity is derived with
	VaultBump uint8
}

// ApplyResult is the outcome of one operation
type ApplyResult struct {
	Hash     [32]byte
	Type     Type
	Account  string
	Result   Result
	Applied  bool
	Metadata *state.Metadata
	Message  string
}

// HashHex returns the upper-case hex operation hash.
func (r ApplyResult) HashHex() string {
	return strings.ToUpper(hex.EncodeToString(r.Hash[:]))
}

// Err returns nil for an applied operation and an *OperationError
// otherwise.
func (r ApplyResult) Err() error {
	if r.Applied {
		return nil
	}
	return &OperationError{Operation: r.Type.String(), Result: r.Result, Detail: r.Message}
}

// CommitHook observes every operation the engine finishes.
type CommitHook func(tx Transaction, res ApplyResult)

// Engine applies operations against the committed ledger state one at a
// time. Each operation runs against its own ApplyStateTable and is
// committed in a single batch only if it succeeds.
type Engine struct {
	mu      deadlock.Mutex
	view    state.View
	oracle  encrypted.Oracle
	custody custody.Custody
	config  EngineConfig
	logger  log.Logger
	seq     uint64

	hooksMu sync.RWMutex
	hooks   []CommitHook
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l log.Logger) Option {
	return func(e *Engine) {
		e.logger = l.With("component", "engine")
	}
}

// NewEngine creates an engine over the committed view.
func NewEngine(view state.View, oracle encrypted.Oracle, cust custody.Custody, config EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		view:    view,
		oracle:  oracle,
		custody: cust,
		config:  config,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// View returns the committed ledger state.
func (e *Engine) View() state.View {
	return e.view
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Mutate runs fn against a staged table while holding the engine lock and
// commits the table if fn succeeds. It serves out-of-band writes such as
// faucet funding that must not interleave with operations.
func (e *Engine) Mutate(fn func(view state.View) error) (*state.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	table := state.NewApplyStateTable(e.view)
	if err := fn(table); err != nil {
		return nil, err
	}
	return table.Apply()
}

// OnCommit registers a hook run after every finished operation.
func (e *Engine) OnCommit(h CommitHook) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.hooks = append(e.hooks, h)
}

func (e *Engine) notify(tx Transaction, res ApplyResult) {
	e.hooksMu.RLock()
	hooks := append([]CommitHook(nil), e.hooks...)
	e.hooksMu.RUnlock()

	for _, h := range hooks {
		h(tx, res)
	}
}

func (e *Engine) computeHash(tx Transaction) ([32]byte, error) {
	body, err := json.Marshal(tx)
	if err != nil {
		return [32]byte{}, err
	}
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, e.seq)
	return crypto.Sha512Half(hashPrefix, body, seq), nil
}

// accountRoot loads the sequence record of signer. A signer that never
// applied an operation starts at FirstSequence.
func (e *Engine) accountRoot(signer [20]byte) (*entries.AccountRoot, bool, error) {
	root := &entries.AccountRoot{Account: signer, Sequence: entries.FirstSequence}
	found, err := state.Load(e.view, keylet.Account(signer), root)
	return root, found, err
}

// NextSequence returns the Sequence the next operation of signer must
// carry.
func (e *Engine) NextSequence(signer [20]byte) (uint32, error) {
	root, _, err := e.accountRoot(signer)
	if err != nil {
		return 0, err
	}
	return root.Sequence, nil
}

// Apply validates and applies one operation signed by its Account.
//
// An operation carrying a Sequence must match the signer's account root
// and consumes it when applied. Operations without one take the next
// sequence; only in-process callers submit those.
func (e *Engine) Apply(ctx context.Context, tx Transaction) ApplyResult {
	res := ApplyResult{
		Type:    tx.TxType(),
		Account: tx.GetCommon().Account,
	}

	// Step 1: preflight
	if err := tx.Validate(); err != nil {
		res.Result = parseValidationError(err)
		res.Message = err.Error()
		e.finish(tx, res)
		return res
	}
	appliable, ok := tx.(Appliable)
	if !ok {
		res.Result = TemUNKNOWN
		res.Message = TemUNKNOWN.Message()
		e.finish(tx, res)
		return res
	}
	signer, err := tx.GetCommon().AccountID()
	if err != nil {
		res.Result = TemBAD_ACCOUNT
		res.Message = err.Error()
		e.finish(tx, res)
		return res
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	res.Hash, err = e.computeHash(tx)
	if err != nil {
		res.Result = TefINTERNAL
		res.Message = "failed to compute operation hash: " + err.Error()
		e.finish(tx, res)
		return res
	}

	root, rootExists, err := e.accountRoot(signer)
	if err != nil {
		res.Result = TefINTERNAL
		res.Message = "failed to load account root: " + err.Error()
		e.finish(tx, res)
		return res
	}
	if seq := tx.GetCommon().Sequence; seq != nil && *seq != root.Sequence {
		res.Result = TerPRE_SEQ
		if *seq < root.Sequence {
			res.Result = TefPAST_SEQ
		}
		res.Message = fmt.Sprintf("%s: sequence %d, account is at %d", res.Result.Message(), *seq, root.Sequence)
		e.finish(tx, res)
		return res
	}

	// Step 2: apply against a staged table
	table := state.NewApplyStateTable(e.view)
	actx := &ApplyContext{
		Context:   ctx,
		View:      table,
		AccountID: signer,
		Config:    e.config,
		TxHash:    res.Hash,
		Ops:       encrypted.NewOps(e.oracle, signer),
		Custody:   e.custody,
		Logger:    e.logger,
	}
	res.Result = appliable.Apply(actx)
	if !res.Result.IsSuccess() {
		res.Message = res.Result.Message()
		if d := actx.Detail(); d != nil {
			res.Message = d.Error()
		}
		e.finish(tx, res)
		return res
	}

	// Step 3: consume the sequence and commit everything at once
	root.Sequence++
	if err := state.Put(table, keylet.Account(signer), root, rootExists); err != nil {
		res.Result = TefINTERNAL
		res.Message = "failed to stage account root: " + err.Error()
		e.finish(tx, res)
		return res
	}
	res.Metadata, err = table.Apply()
	if err != nil {
		res.Result = TefINTERNAL
		res.Message = "commit failed: " + err.Error()
		e.finish(tx, res)
		return res
	}
	res.Applied = true
	res.Message = res.Result.Message()
	e.finish(tx, res)
	return res
}

func (e *Engine) finish(tx Transaction, res ApplyResult) {
	fields := []interface{}{
		"type", res.Type.String(),
		"account", res.Account,
		"result", res.Result.String(),
	}
	switch {
	case res.Applied:
		e.logger.Info("operation applied", append(fields, "hash", res.HashHex(), "affected", len(res.Metadata.AffectedNodes))...)
	case res.Result.IsTef():
		e.logger.Error("operation failed", append(fields, "message", res.Message)...)
	default:
		e.logger.Warn("operation rejected", append(fields, "message", res.Message)...)
	}
	e.notify(tx, res)
}
