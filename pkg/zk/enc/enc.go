package zkenc

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
	zkencs "github.com/taurusgroup/threshold-bbs/pkg/zk/encs"
)

type (
	Public struct {
		// Ct = (hʳ, fᵐ⋅PKʳ)
		Ct *cl.Ciphertext
		PK *cl.Element
		// X = m⋅g₂
		X *curve.G2
	}
	Private struct {
		M *saferith.Int
		R *saferith.Int
	}
)

// Proof shows that Ct encrypts the discrete logarithm of X.
type Proof struct {
	E  *curve.Scalar
	ZM *saferith.Int
	ZR *saferith.Int
}

func NewProof(group cl.Group, hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	um := zk.Mask(rand, zk.ScalarBits)
	ur := zk.Mask(rand, zk.RandomnessBits(group))
	u1, u2 := zkencs.Commitment(group, public.PK, um, ur)
	// U₃ = uₘ⋅g₂, the same mask reduced mod q
	u3 := curve.ScalarFromInt(um).ActOnBaseG2()
	e, err := challenge(group, hash, public, u1, u2, u3)
	if err != nil {
		return nil, err
	}
	return &Proof{
		E:  e,
		ZM: zk.Response(um, e, private.M),
		ZR: zk.Response(ur, e, private.R),
	}, nil
}

func (p *Proof) Verify(group cl.Group, hash *hash.Hash, public Public) bool {
	if p == nil || p.E == nil {
		return false
	}
	if !zk.IsBounded(p.ZM, zk.ScalarBits) || !zk.IsBounded(p.ZR, zk.RandomnessBits(group)) {
		return false
	}
	if !public.Ct.Valid(group) || !group.Valid(public.PK) || public.X == nil {
		return false
	}
	u1, u2 := zkencs.Commitment(group, public.PK, p.ZM, p.ZR)
	negE := zk.NegChallenge(p.E)
	u1 = group.Compose(u1, group.Exp(public.Ct.C1, negE))
	u2 = group.Compose(u2, group.Exp(public.Ct.C2, negE))
	// U₃ = (zₘ mod q)⋅g₂ - e⋅X
	u3 := curve.ScalarFromInt(p.ZM).ActOnBaseG2().Sub(p.E.ActG2(public.X))
	e, err := challenge(group, hash, public, u1, u2, u3)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

func challenge(group cl.Group, hash *hash.Hash, public Public, u1, u2 *cl.Element, u3 *curve.G2) (*curve.Scalar, error) {
	return zk.Challenge(hash, group, public.PK, public.Ct, public.X, u1, u2, u3)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{E: curve.NewScalar(), ZM: new(saferith.Int), ZR: new(saferith.Int)}
}
