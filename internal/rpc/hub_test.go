package rpc

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/adipundir/donatrade/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Routing(t *testing.T) {
	hub := NewHub(nil)
	all := hub.Add("all", 4)
	all.Subscribe([]string{StreamOperations}, nil)
	alice := hub.Add("alice", 4)
	alice.Subscribe(nil, []string{"rAlice"})
	idle := hub.Add("idle", 4)
	require.Equal(t, 3, hub.Len())

	hub.Publish(&OperationEvent{Type: "operation", Account: "rAlice"})
	hub.Publish(&OperationEvent{Type: "operation", Account: "rBob"})

	assert.Len(t, all.Send, 2)
	assert.Len(t, alice.Send, 1)
	assert.Len(t, idle.Send, 0)

	var ev OperationEvent
	require.NoError(t, json.Unmarshal(<-alice.Send, &ev))
	assert.Equal(t, "rAlice", ev.Account)

	alice.Unsubscribe(nil, []string{"rAlice"})
	hub.Publish(&OperationEvent{Type: "operation", Account: "rAlice"})
	assert.Len(t, alice.Send, 0)

	hub.Remove("all")
	assert.Equal(t, 2, hub.Len())
}

func TestHub_CountsDeliveredEvents(t *testing.T) {
	hub := NewHub(nil)
	tc := metrics.NewTrafficCount()
	hub.CountTraffic(tc)
	sub := hub.Add("one", 1)
	sub.Subscribe([]string{StreamOperations}, nil)

	hub.Publish(&OperationEvent{Account: "a"})
	hub.Publish(&OperationEvent{Account: "b"}) // dropped

	stats := tc.GetStats(metrics.CategoryStream)
	assert.Equal(t, uint64(1), stats.MessagesOut)
	assert.Equal(t, uint64(len(<-sub.Send)), stats.BytesOut)
}

func TestHub_FullQueueDrops(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Add("slow", 1)
	sub.Subscribe([]string{StreamOperations}, nil)

	hub.Publish(&OperationEvent{Account: "a"})
	hub.Publish(&OperationEvent{Account: "b"})

	require.Len(t, sub.Send, 1)
	var ev OperationEvent
	require.NoError(t, json.Unmarshal(<-sub.Send, &ev))
	assert.Equal(t, "a", ev.Account)
}

func TestRegistryList(t *testing.T) {
	r := NewMethodRegistry()
	noop := MethodFunc(func(*RpcContext, json.RawMessage) (interface{}, *RpcError) { return nil, nil })
	r.Register("b", noop)
	r.Register("a", noop)
	assert.Equal(t, []string{"a", "b"}, r.List())
	_, ok := r.Get("c")
	assert.False(t, ok)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, handler, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestGetClientIP(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	assert.Equal(t, "1.2.3.4", getClientIP(r))
}
