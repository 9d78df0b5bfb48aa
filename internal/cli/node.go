package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/adipundir/donatrade/internal/config"
	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/custody"
	"github.com/adipundir/donatrade/internal/log"
	"github.com/adipundir/donatrade/internal/oracle/bgv"
	"github.com/adipundir/donatrade/internal/oracle/memory"
	"github.com/adipundir/donatrade/internal/storage/database"
	"github.com/adipundir/donatrade/internal/storage/database/backend"
	"github.com/adipundir/donatrade/internal/storage/relationaldb"

	_ "github.com/adipundir/donatrade/internal/core/tx/all"
)

// stateDBName is the database holding committed ledger entries
const stateDBName = "state"

// confidentialOracle computes on and reveals encrypted handles
type confidentialOracle interface {
	encrypted.Oracle
	encrypted.Decrypter
}

// node is a fully wired ledger: state store, oracle, token program,
// engine and the optional operation journal.
type node struct {
	dbs     database.Manager
	store   *state.CommittedStore
	oracle  confidentialOracle
	tokens  *custody.TokenProgram
	engine  *tx.Engine
	journal *relationaldb.Journal
}

// openStore opens the committed ledger state selected by cfg.
func openStore(cfg config.StorageConfig) (database.Manager, *state.CommittedStore, error) {
	dbs, err := backend.NewManager(cfg.Backend, cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	db, err := dbs.OpenDB(stateDBName)
	if err != nil {
		dbs.Close()
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}
	store, err := state.NewStore(db, cfg.CacheSize)
	if err != nil {
		dbs.Close()
		return nil, nil, err
	}
	return dbs, store, nil
}

func newOracle(cfg config.OracleConfig) (confidentialOracle, error) {
	auditors, err := cfg.AuditorIDs()
	if err != nil {
		return nil, err
	}
	switch cfg.Type {
	case "memory":
		return memory.New(auditors...), nil
	case "bgv":
		return bgv.New(bgv.Config{
			LogN:             cfg.LogN,
			LogQ:             cfg.LogQ,
			LogP:             cfg.LogP,
			PlaintextModulus: cfg.PlaintextModulus,
		}, auditors...)
	}
	return nil, fmt.Errorf("unknown oracle type %q", cfg.Type)
}

func openNode(ctx context.Context, cfg *config.Config, logger log.Logger) (*node, error) {
	if err := cfg.CheckNode(); err != nil {
		return nil, err
	}
	if backend.Persistent(cfg.Storage.Backend) {
		logger.Warn("encrypted values do not survive a restart of this oracle",
			"backend", cfg.Storage.Backend, "oracle", cfg.Oracle.Type)
	}
	dbs, store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	n := &node{dbs: dbs, store: store}

	if n.oracle, err = newOracle(cfg.Oracle); err != nil {
		n.Close()
		return nil, fmt.Errorf("create oracle: %w", err)
	}

	admin, err := cfg.Engine.PlatformAdminID()
	if err != nil {
		n.Close()
		return nil, err
	}
	n.tokens = custody.NewTokenProgram(cfg.Faucet.Enabled)
	n.engine = tx.NewEngine(store, n.oracle, n.tokens, tx.EngineConfig{
		PlatformAdmin: admin,
		VaultBump:     cfg.Engine.VaultBump,
	}, tx.WithLogger(logger))

	if cfg.Journal.Enabled {
		n.journal, err = relationaldb.Open(ctx, cfg.Journal.JournalDatabase(), logger)
		if err != nil {
			n.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		n.engine.OnCommit(n.journal.Hook())
	}

	empty := true
	if err := store.ForEach(func([32]byte, []byte) bool {
		empty = false
		return false
	}); err != nil {
		n.Close()
		return nil, err
	}
	if !empty {
		// Ciphertexts live only in the oracle process
		logger.Warn("ledger state is not empty but the oracle starts without ciphertexts; existing handles cannot be evaluated",
			"backend", cfg.Storage.Backend, "oracle", cfg.Oracle.Type)
	}

	return n, nil
}

// Close releases the journal and the state databases.
func (n *node) Close() error {
	var errs []error
	if n.journal != nil {
		errs = append(errs, n.journal.Close())
	}
	if n.dbs != nil {
		errs = append(errs, n.dbs.Close())
	}
	return errors.Join(errs...)
}
