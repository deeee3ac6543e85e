package zkpdel

import (
	"io"

	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
)

type (
	Public struct {
		// L is the first component of the ElGamal ciphertext being decrypted.
		L *curve.G1
		// PD = d⋅L
		PD *curve.G1
		// P = d⋅g₁
		P *curve.G1
	}
	Private struct {
		D *curve.Scalar
	}
)

// Proof is a discrete logarithm equality proof between (g₁, P) and (L, PD).
type Proof struct {
	E *curve.Scalar
	Z *curve.Scalar
}

func NewProof(hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	a := sample.Scalar(rand)
	e, err := challenge(hash, public, a.Act(public.L), a.ActOnBase())
	if err != nil {
		return nil, err
	}
	return &Proof{E: e, Z: curve.NewScalar().Set(e).Mul(private.D).Add(a)}, nil
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if p == nil || p.E == nil || p.Z == nil {
		return false
	}
	if public.L == nil || public.L.IsIdentity() || public.PD == nil || public.P == nil || public.P.IsIdentity() {
		return false
	}
	// A₁ = z⋅L - e⋅PD, A₂ = z⋅g₁ - e⋅P
	a1 := p.Z.Act(public.L).Sub(p.E.Act(public.PD))
	a2 := p.Z.ActOnBase().Sub(p.E.Act(public.P))
	e, err := challenge(hash, public, a1, a2)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

func challenge(hash *hash.Hash, public Public, a1, a2 *curve.G1) (*curve.Scalar, error) {
	return zk.Challenge(hash, public.L, public.PD, public.P, a1, a2)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{E: curve.NewScalar(), Z: curve.NewScalar()}
}
