package rpc

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/log"
	"github.com/adipundir/donatrade/internal/storage/relationaldb"
)

// RpcContext contains request-specific information
type RpcContext struct {
	Context  context.Context
	ClientIP string
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
}

// MethodFunc adapts a function to MethodHandler.
type MethodFunc func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)

func (f MethodFunc) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return f(ctx, params)
}

// MethodRegistry for dynamic method registration
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names in order.
func (r *MethodRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// Faucet mints settlement tokens outside of any operation.
type Faucet interface {
	Fund(view state.View, owner [20]byte, amount uint64) error
}

// History reads the operation journal.
type History interface {
	ListByAccount(ctx context.Context, account string, limit int) ([]*relationaldb.Entry, error)
}

// Applications is the off-ledger registry of company listing requests.
type Applications interface {
	CreateApplication(ctx context.Context, a *relationaldb.Application) error
	ListApplications(ctx context.Context, status relationaldb.ApplicationStatus) ([]*relationaldb.Application, error)
	Application(ctx context.Context, id int64) (*relationaldb.Application, error)
	ApplicationByWallet(ctx context.Context, wallet string) (*relationaldb.Application, error)
	ActivateApplication(ctx context.Context, id int64, legalAgreementURL string, companyID uint64) (*relationaldb.Application, error)
}

// Services are the collaborators RPC methods are served from. Optional
// services left nil disable the methods that need them.
type Services struct {
	Engine       *tx.Engine
	Faucet       Faucet
	History      History
	Applications Applications
	Decrypter    encrypted.Decrypter
	Logger       log.Logger
	Version      string

	// ReplayWindow is the number of applied submissions and served decrypt
	// requests remembered for replay rejection. Zero selects
	// DefaultReplayWindow.
	ReplayWindow int
}
