// Package bgv is a homomorphic oracle backed by the lattigo BGV scheme.
// Each handle references a ciphertext whose first slot carries the value;
// arithmetic runs on ciphertexts and results are only revealed through
// Decrypt to allowed viewers.
package bgv

import (
	"context"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/oracle"
	"github.com/sasha-s/go-deadlock"
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
)

// DefaultPlaintextModulus is an NTT-friendly prime usable up to LogN 13.
const DefaultPlaintextModulus uint64 = 0x3ee0001

// Config selects the scheme parameters.
type Config struct {
	LogN             int
	LogQ             []int
	LogP             []int
	PlaintextModulus uint64
}

// DefaultConfig returns parameters sized for one multiplication.
func DefaultConfig() Config {
	return Config{
		LogN:             13,
		LogQ:             []int{54, 54, 54},
		LogP:             []int{55},
		PlaintextModulus: DefaultPlaintextModulus,
	}
}

// Oracle implements encrypted.Oracle and encrypted.Decrypter.
type Oracle struct {
	mu        deadlock.Mutex
	params    bgv.Parameters
	encoder   *bgv.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
	evaluator *bgv.Evaluator

	ciphers map[encrypted.Handle]*rlwe.Ciphertext
	acl     *oracle.AccessList
}

// New generates a fresh key set and returns an oracle using it.
func New(cfg Config, auditors ...[20]byte) (*Oracle, error) {
	if cfg.PlaintextModulus == 0 {
		cfg.PlaintextModulus = DefaultPlaintextModulus
	}
	params, err := bgv.NewParametersFromLiteral(bgv.ParametersLiteral{
		LogN:             cfg.LogN,
		LogQ:             cfg.LogQ,
		LogP:             cfg.LogP,
		PlaintextModulus: cfg.PlaintextModulus,
	})
	if err != nil {
		return nil, fmt.Errorf("bgv parameters: %w", err)
	}

	kgen := rlwe.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)
	evk := rlwe.NewMemEvaluationKeySet(rlk)

	return &Oracle{
		params:    params,
		encoder:   bgv.NewEncoder(params),
		encryptor: rlwe.NewEncryptor(params, pk),
		decryptor: rlwe.NewDecryptor(params, sk),
		evaluator: bgv.NewEvaluator(params, evk),
		ciphers:   make(map[encrypted.Handle]*rlwe.Ciphertext),
		acl:       oracle.NewAccessList(auditors...),
	}, nil
}

// PlaintextModulus returns the modulus values are reduced by.
func (o *Oracle) PlaintextModulus() uint64 {
	return o.params.PlaintextModulus()
}

func (o *Oracle) register(ct *rlwe.Ciphertext) (encrypted.Handle, error) {
	h, err := oracle.NewHandle()
	if err != nil {
		return h, err
	}
	o.ciphers[h] = ct
	return h, nil
}

func (o *Oracle) lookup(h encrypted.Handle) (*rlwe.Ciphertext, error) {
	ct, ok := o.ciphers[h]
	if !ok {
		return nil, encrypted.ErrUnknownHandle
	}
	return ct, nil
}

// Lift encrypts v. Values must be below the plaintext modulus.
func (o *Oracle) Lift(ctx context.Context, signer [20]byte, v encrypted.Uint128) (encrypted.Handle, error) {
	if err := ctx.Err(); err != nil {
		return encrypted.Handle{}, err
	}
	value, ok := v.Uint64()
	if !ok || value >= o.params.PlaintextModulus() {
		return encrypted.Handle{}, fmt.Errorf("%w: %s", oracle.ErrPlaintextRange, v)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	pt := bgv.NewPlaintext(o.params, o.params.MaxLevel())
	if err := o.encoder.Encode([]uint64{value}, pt); err != nil {
		return encrypted.Handle{}, fmt.Errorf("encode: %w", err)
	}
	ct := bgv.NewCiphertext(o.params, 1, o.params.MaxLevel())
	if err := o.encryptor.Encrypt(pt, ct); err != nil {
		return encrypted.Handle{}, fmt.Errorf("encrypt: %w", err)
	}
	return o.register(ct)
}

func (o *Oracle) evaluate(ctx context.Context, signer [20]byte, a, b encrypted.Handle,
	fn func(op0, op1, out *rlwe.Ciphertext) error) (encrypted.Handle, error) {
	if err := ctx.Err(); err != nil {
		return encrypted.Handle{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	op0, err := o.lookup(a)
	if err != nil {
		return encrypted.Handle{}, err
	}
	op1, err := o.lookup(b)
	if err != nil {
		return encrypted.Handle{}, err
	}
	level := op0.Level()
	if op1.Level() < level {
		level = op1.Level()
	}
	out := bgv.NewCiphertext(o.params, 1, level)
	if err := fn(op0, op1, out); err != nil {
		return encrypted.Handle{}, err
	}
	return o.register(out)
}

func (o *Oracle) Add(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
	return o.evaluate(ctx, signer, a, b, func(op0, op1, out *rlwe.Ciphertext) error {
		return o.evaluator.Add(op0, op1, out)
	})
}

func (o *Oracle) Sub(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
	return o.evaluate(ctx, signer, a, b, func(op0, op1, out *rlwe.Ciphertext) error {
		return o.evaluator.Sub(op0, op1, out)
	})
}

func (o *Oracle) Mul(ctx context.Context, signer [20]byte, a, b encrypted.Handle) (encrypted.Handle, error) {
	return o.evaluate(ctx, signer, a, b, func(op0, op1, out *rlwe.Ciphertext) error {
		return o.evaluator.MulRelin(op0, op1, out)
	})
}

// Allow gives id a view of h.
func (o *Oracle) Allow(ctx context.Context, h encrypted.Handle, id [20]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	_, err := o.lookup(h)
	o.mu.Unlock()
	if err != nil {
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
	o.mu.Lock()
	_, err := o.lookup(h)
	o.mu.Unlock()
	if err != nil {
		return err
	}
	return o.acl.Grant(h, authorizing, target)
}

// Decrypt reveals the value behind h to an allowed viewer.
func (o *Oracle) Decrypt(ctx context.Context, h encrypted.Handle, viewer [20]byte) (encrypted.Uint128, error) {
	if err := ctx.Err(); err != nil {
		return encrypted.Uint128{}, err
	}
	if !o.acl.Allowed(h, viewer) {
		return encrypted.Uint128{}, encrypted.ErrNotAllowed
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	ct, err := o.lookup(h)
	if err != nil {
		return encrypted.Uint128{}, err
	}
	pt := o.decryptor.DecryptNew(ct)
	values := make([]uint64, o.params.MaxSlots())
	if err := o.encoder.Decode(pt, values); err != nil {
		return encrypted.Uint128{}, fmt.Errorf("decode: %w", err)
	}
	return encrypted.U64(values[0]), nil
}
