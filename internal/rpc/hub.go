package rpc

import (
	"encoding/json"

	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/log"
	"github.com/adipundir/donatrade/internal/metrics"
	"github.com/sasha-s/go-deadlock"
)

// StreamOperations delivers every operation the engine finishes.
const StreamOperations = "operations"

// OperationEvent is pushed to subscribers when an operation finishes.
type OperationEvent struct {
	Type             string          `json:"type"`
	Hash             string          `json:"hash,omitempty"`
	Operation        string          `json:"operation"`
	Account          string          `json:"account"`
	EngineResult     string          `json:"engine_result"`
	EngineResultCode int             `json:"engine_result_code"`
	Applied          bool            `json:"applied"`
	Meta             *state.Metadata `json:"meta,omitempty"`
}

// NewOperationEvent builds the event for an engine outcome.
func NewOperationEvent(res tx.ApplyResult) *OperationEvent {
	ev := &OperationEvent{
		Type:             "operation",
		Operation:        res.Type.String(),
		Account:          res.Account,
		EngineResult:     res.Result.String(),
		EngineResultCode: int(res.Result),
		Applied:          res.Applied,
		Meta:             res.Metadata,
	}
	if res.Hash != ([32]byte{}) {
		ev.Hash = res.HashHex()
	}
	return ev
}

// Subscriber is one connection's subscriptions and outbound queue.
type Subscriber struct {
	ID   string
	Send chan []byte

	mu       deadlock.RWMutex
	streams  map[string]struct{}
	accounts map[string]struct{}
}

// Subscribe adds streams and accounts.
func (s *Subscriber) Subscribe(streams, accounts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range streams {
		s.streams[st] = struct{}{}
	}
	for _, a := range accounts {
		s.accounts[a] = struct{}{}
	}
}

// Unsubscribe removes streams and accounts.
func (s *Subscriber) Unsubscribe(streams, accounts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range streams {
		delete(s.streams, st)
	}
	for _, a := range accounts {
		delete(s.accounts, a)
	}
}

func (s *Subscriber) wants(ev *OperationEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.streams[StreamOperations]; ok {
		return true
	}
	_, ok := s.accounts[ev.Account]
	return ok
}

// Hub fans operation events out to subscribers. A subscriber whose queue
// is full misses the event.
type Hub struct {
	mu      deadlock.RWMutex
	subs    map[string]*Subscriber
	logger  log.Logger
	traffic *metrics.TrafficCount
}

// NewHub creates an empty hub.
func NewHub(logger log.Logger) *Hub {
	if logger == nil {
		logger = log.Nop()
	}
	return &Hub{
		subs:   make(map[string]*Subscriber),
		logger: logger.With("component", "hub"),
	}
}

// CountTraffic records every delivered event in tc.
func (h *Hub) CountTraffic(tc *metrics.TrafficCount) {
	h.mu.Lock()
	h.traffic = tc
	h.mu.Unlock()
}

// Add registers a subscriber with an outbound queue of size buffer.
func (h *Hub) Add(id string, buffer int) *Subscriber {
	sub := &Subscriber{
		ID:       id,
		Send:     make(chan []byte, buffer),
		streams:  make(map[string]struct{}),
		accounts: make(map[string]struct{}),
	}
	h.mu.Lock()
	h.subs[id] = sub
	h.mu.Unlock()
	return sub
}

// Remove drops a subscriber.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers ev to every interested subscriber.
func (h *Hub) Publish(ev *OperationEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(ev) {
			continue
		}
		select {
		case sub.Send <- data:
			if h.traffic != nil {
				h.traffic.AddCount(metrics.CategoryStream, false, len(data))
			}
		default:
			h.logger.Warn("subscriber queue full, event dropped", "subscriber", sub.ID, "hash", ev.Hash)
		}
	}
}

// Hook returns an engine commit hook publishing every outcome.
func (h *Hub) Hook() tx.CommitHook {
	return func(_ tx.Transaction, res tx.ApplyResult) {
		h.Publish(NewOperationEvent(res))
	}
}
