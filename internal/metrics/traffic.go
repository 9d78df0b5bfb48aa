// Package metrics implements traffic counting for the RPC and WebSocket
// endpoints.
package metrics

import (
	"sync"
	"sync/atomic"
)

// Category represents a traffic category for counting.
type Category int

const (
	// CategoryBase is server overhead: ping and server_info.
	CategoryBase Category = iota
	// CategoryQuery is ledger entry and history reads.
	CategoryQuery
	// CategorySubmit is signed operation submissions.
	CategorySubmit
	// CategoryDecrypt is decryption requests.
	CategoryDecrypt
	// CategoryFaucet is faucet funding.
	CategoryFaucet
	// CategorySubscription is subscribe and unsubscribe commands.
	CategorySubscription
	// CategoryStream is operation events pushed to subscribers.
	CategoryStream
	// CategoryTotal is total traffic.
	CategoryTotal
	// CategoryUnknown is unknown methods.
	CategoryUnknown
)

var categoryNames = map[Category]string{
	CategoryBase:         "overhead",
	CategoryQuery:        "queries",
	CategorySubmit:       "submissions",
	CategoryDecrypt:      "decryptions",
	CategoryFaucet:       "faucet",
	CategorySubscription: "subscriptions",
	CategoryStream:       "stream",
	CategoryTotal:        "total",
	CategoryUnknown:      "unknown",
}

// String returns the string representation of a category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Stats holds traffic statistics for a category.
type Stats struct {
	Name        string `json:"name"`
	BytesIn     uint64 `json:"bytes_in"`
	BytesOut    uint64 `json:"bytes_out"`
	MessagesIn  uint64 `json:"messages_in"`
	MessagesOut uint64 `json:"messages_out"`
}

// atomicStats holds atomic counters for thread-safe updates.
type atomicStats struct {
	bytesIn     atomic.Uint64
	bytesOut    atomic.Uint64
	messagesIn  atomic.Uint64
	messagesOut atomic.Uint64
}

func (s *atomicStats) add(inbound bool, bytes int) {
	if inbound {
		s.bytesIn.Add(uint64(bytes))
		s.messagesIn.Add(1)
	} else {
		s.bytesOut.Add(uint64(bytes))
		s.messagesOut.Add(1)
	}
}

func (s *atomicStats) snapshot(name string) *Stats {
	return &Stats{
		Name:        name,
		BytesIn:     s.bytesIn.Load(),
		BytesOut:    s.bytesOut.Load(),
		MessagesIn:  s.messagesIn.Load(),
		MessagesOut: s.messagesOut.Load(),
	}
}

// TrafficCount tracks ingress and egress traffic by category.
type TrafficCount struct {
	mu     sync.RWMutex
	counts map[Category]*atomicStats
}

// NewTrafficCount creates a new TrafficCount.
func NewTrafficCount() *TrafficCount {
	tc := &TrafficCount{
		counts: make(map[Category]*atomicStats, len(categoryNames)),
	}
	for cat := range categoryNames {
		tc.counts[cat] = &atomicStats{}
	}
	return tc
}

// AddCount records one message for a category and for the total.
func (tc *TrafficCount) AddCount(cat Category, inbound bool, bytes int) {
	if cat == CategoryTotal {
		return
	}
	tc.mu.RLock()
	stats, exists := tc.counts[cat]
	total := tc.counts[CategoryTotal]
	tc.mu.RUnlock()

	if !exists {
		return
	}
	stats.add(inbound, bytes)
	total.add(inbound, bytes)
}

// Categorize determines the traffic category for an RPC method or
// WebSocket command.
func Categorize(method string) Category {
	switch method {
	case "ping", "server_info":
		return CategoryBase
	case "global_vault_info", "company_info", "vault_info", "position_info",
		"offer_info", "token_balance", "account_info", "account_history",
		"company_applications", "company_application":
		return CategoryQuery
	case "submit", "company_apply", "company_approve":
		return CategorySubmit
	case "decrypt":
		return CategoryDecrypt
	case "fund":
		return CategoryFaucet
	case "subscribe", "unsubscribe":
		return CategorySubscription
	default:
		return CategoryUnknown
	}
}

// GetStats returns statistics for a category.
func (tc *TrafficCount) GetStats(cat Category) *Stats {
	tc.mu.RLock()
	stats, exists := tc.counts[cat]
	tc.mu.RUnlock()

	if !exists {
		return nil
	}
	return stats.snapshot(cat.String())
}

// GetAllStats returns statistics for all categories keyed by name.
func (tc *TrafficCount) GetAllStats() map[string]*Stats {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	result := make(map[string]*Stats, len(tc.counts))
	for cat, stats := range tc.counts {
		result[cat.String()] = stats.snapshot(cat.String())
	}
	return result
}

// GetTotalStats returns the total traffic statistics.
func (tc *TrafficCount) GetTotalStats() *Stats {
	return tc.GetStats(CategoryTotal)
}

// Reset resets all counters.
func (tc *TrafficCount) Reset() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	for _, stats := range tc.counts {
		stats.bytesIn.Store(0)
		stats.bytesOut.Store(0)
		stats.messagesIn.Store(0)
		stats.messagesOut.Store(0)
	}
}
