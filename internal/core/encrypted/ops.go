package encrypted

import "context"

// Ops binds an Oracle to the signer of the operation being applied.
type Ops struct {
	oracle Oracle
	signer [20]byte
}

// NewOps returns oracle helpers acting on behalf of signer.
func NewOps(oracle Oracle, signer [20]byte) *Ops {
	return &Ops{oracle: oracle, signer: signer}
}

// Signer returns the identity calls are attributed to.
func (o *Ops) Signer() [20]byte {
	return o.signer
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OracleError{Op: op, Err: err}
}

// Lift encrypts a plaintext.
func (o *Ops) Lift(ctx context.Context, v Uint128) (Handle, error) {
	h, err := o.oracle.Lift(ctx, o.signer, v)
	return h, wrap("lift", err)
}

// LiftU64 encrypts a 64-bit plaintext.
func (o *Ops) LiftU64(ctx context.Context, v uint64) (Handle, error) {
	return o.Lift(ctx, U64(v))
}

// Zero returns a freshly lifted zero.
func (o *Ops) Zero(ctx context.Context) (Handle, error) {
	return o.Lift(ctx, Uint128{})
}

// Add returns a+b.
func (o *Ops) Add(ctx context.Context, a, b Handle) (Handle, error) {
	h, err := o.oracle.Add(ctx, o.signer, a, b)
	return h, wrap("add", err)
}

// Sub returns a-b.
func (o *Ops) Sub(ctx context.Context, a, b Handle) (Handle, error) {
	h, err := o.oracle.Sub(ctx, o.signer, a, b)
	return h, wrap("sub", err)
}

// Mul returns a*b.
func (o *Ops) Mul(ctx context.Context, a, b Handle) (Handle, error) {
	h, err := o.oracle.Mul(ctx, o.signer, a, b)
	return h, wrap("mul", err)
}

// GrantView lets target decrypt h, authorized by the signer.
func (o *Ops) GrantView(ctx context.Context, h Handle, target [20]byte) error {
	return wrap("grant_view", o.oracle.GrantView(ctx, h, o.signer, target))
}

// materialize replaces a never-combined field by a lifted zero so the
// oracle only ever sees handles it issued.
func (o *Ops) materialize(ctx context.Context, balance Handle) (Handle, error) {
	if !balance.IsZero() {
		return balance, nil
	}
	return o.Zero(ctx)
}

// Credit returns balance+delta. A fresh balance field is first combined
// against a lifted zero.
func (o *Ops) Credit(ctx context.Context, balance, delta Handle) (Handle, error) {
	base, err := o.materialize(ctx, balance)
	if err != nil {
		return Handle{}, err
	}
	return o.Add(ctx, base, delta)
}

// Debit returns balance-delta. A fresh balance field is first combined
// against a lifted zero.
func (o *Ops) Debit(ctx context.Context, balance, delta Handle) (Handle, error) {
	base, err := o.materialize(ctx, balance)
	if err != nil {
		return Handle{}, err
	}
	return o.Sub(ctx, base, delta)
}

// Share gives owner a view of h. It is called for the owner of every
// account field an operation writes, the signer included.
func (o *Ops) Share(ctx context.Context, h Handle, owner [20]byte) error {
	return wrap("allow", o.oracle.Allow(ctx, h, owner))
}
