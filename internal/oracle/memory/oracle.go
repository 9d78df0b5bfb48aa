// Package memory is an in-process oracle that keeps plaintexts behind
// random handles. It enforces the same allowance rules as a real
// confidential-compute service and is used for devnet runs and tests.
package memory

import (
	"context"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/oracle"
	"github.com/sasha-s/go-deadlock"
)

// Oracle implements encrypted.Oracle and encrypted.Decrypter.
type Oracle struct {
	mu     deadlock.RWMutex
	values map[encrypted.Handle]encrypted.Uint128
	acl    *oracle.AccessList
}

// New creates an oracle. Auditors may decrypt every handle.
func New(auditors ...[20]byte) *Oracle {
	return &Oracle{
		values: make(map[encrypted.Handle]encrypted.Uint128),
		acl:    oracle.NewAccessList(auditors...),
	}
}

func (o *Oracle) store(v encrypted.Uint128) (encrypted.Handle, error) {
	h, err := oracle.NewHandle()
	if err != nil {
		return h, err
	}
	o.mu.Lock()
	o.values[h] = v
	o.mu.Unlock()
	return h, nil
}

func (o *Oracle) load(h encrypted.Handle) (encrypted.Uint128, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[h]
	if !ok {
		return encrypted.Uint128{}, encrypted.ErrUnknownHandle
	}
	return v, nil
}

func (o *Oracle) binary(ctx context.Context, signer [20]byte, a, b encrypted.Handle,
	fn func(x, y encrypted.Uint128) encrypted.Uint128) (encrypted.Handle, error) {
	if err := ctx.Err(); err != nil {
		return encrypted.Handle{}, err
	}
	x, err := o.load(a)
	if err != nil {
		return encrypted.Handle{}, err
	}
	y, err := o.load(b)
	if err != nil {
		return encrypted.Handle{}, err
	}
	return o.store(fn(x, y))
}

// Lift stores v under a new handle.
func (o *Oracle) Lift(ctx context.Context, signer [20]byte, v encrypted.Uint128) (encrypted.Handle, error) {
	if err := ctx.Err(); err != nil {
		return encrypted.Handle{}, err
	}
	return o.store(v)
}

func (o *Oracle) Add(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
	return o.binary(ctx, signer, a, b, encrypted.Uint128.Add)
}

func (o *Oracle) Sub(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
	return o.binary(ctx, signer, a, b, encrypted.Uint128.Sub)
}

func (o *Oracle) Mul(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
	return o.binary(ctx, signer, a, b, encrypted.Uint128.Mul)
}

// Allow gives id a view of h.
func (o *Oracle) Allow(ctx context.Context, h encrypted.Handle, id [20]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := o.load(h); err != nil {
		return err
	}
	o.acl.Allow(h, id)
	return nil
}

// GrantView allows target to decrypt h when authorizing already may.
func (o *Oracle) GrantView(ctx context.Context, h encrypted.Handle, authorizing, target [20]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := o.load(h); err != nil {
		return err
	}
	return o.acl.Grant(h, authorizing, target)
}

// Decrypt reveals the plaintext behind h to an allowed viewer.
func (o *Oracle) Decrypt(ctx context.Context, h encrypted.Handle, viewer [20]byte) (encrypted.Uint128, error) {
	if err := ctx.Err(); err != nil {
		return encrypted.Uint128{}, err
	}
	v, err := o.load(h)
	if err != nil {
		return v, err
	}
	if !o.acl.Allowed(h, viewer) {
		return encrypted.Uint128{}, encrypted.ErrNotAllowed
	}
	return v, nil
}

// Len returns the number of live handles.
func (o *Oracle) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.values)
}
