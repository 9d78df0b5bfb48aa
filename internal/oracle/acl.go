// Package oracle holds the pieces shared by the confidential-compute
// backends: handle allocation and per-handle view allowances.
package oracle

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/sasha-s/go-deadlock"
)

// ErrPlaintextRange is returned when a plaintext cannot be represented by
// a backend.
var ErrPlaintextRange = errors.New("plaintext out of range")

// NewHandle allocates a random non-zero handle.
func NewHandle() (encrypted.Handle, error) {
	var h encrypted.Handle
	for h.IsZero() {
		if _, err := rand.Read(h[:]); err != nil {
			return h, fmt.Errorf("allocate handle: %w", err)
		}
	}
	return h, nil
}

// AccessList tracks which identities may view or re-share a handle.
// Auditors are allowed on every handle.
type AccessList struct {
	mu       deadlock.RWMutex
	grants   map[encrypted.Handle]map[[20]byte]struct{}
	auditors map[[20]byte]struct{}
}

// NewAccessList creates an empty access list.
func NewAccessList(auditors ...[20]byte) *AccessList {
	a := &AccessList{
		grants:   make(map[encrypted.Handle]map[[20]byte]struct{}),
		auditors: make(map[[20]byte]struct{}, len(auditors)),
	}
	for _, id := range auditors {
		a.auditors[id] = struct{}{}
	}
	return a
}

// Allow adds id to the allowances of h.
func (a *AccessList) Allow(h encrypted.Handle, id [20]byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	set, ok := a.grants[h]
	if !ok {
		set = make(map[[20]byte]struct{})
		a.grants[h] = set
	}
	set[id] = struct{}{}
}

// Allowed reports whether id may view h.
func (a *AccessList) Allowed(h encrypted.Handle, id [20]byte) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.auditors[id]; ok {
		return true
	}
	_, ok := a.grants[h][id]
	return ok
}

// Grant lets target view h on behalf of authorizing.
func (a *AccessList) Grant(h encrypted.Handle, authorizing, target [20]byte) error {
	if !a.Allowed(h, authorizing) {
		return encrypted.ErrNotAllowed
	}
	a.Allow(h, target)
	return nil
}
