package zkencs

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
)

type (
	Public struct {
		// Ct = (hʳ, fᵐ⋅PKʳ)
		Ct *cl.Ciphertext
		PK *cl.Element
	}
	Private struct {
		// M is a curve scalar, as an integer in [0, q).
		M *saferith.Int
		R *saferith.Int
	}
)

type Proof struct {
	E *curve.Scalar
	// ZM = uₘ + e⋅m
	ZM *saferith.Int
	// ZR = uᵣ + e⋅r
	ZR *saferith.Int
}

// Commitment returns (h^{uᵣ}, f^{uₘ}⋅PK^{uᵣ}), the encryption of the masks.
func Commitment(group cl.Group, pk *cl.Element, um, ur *saferith.Int) (*cl.Element, *cl.Element) {
	return group.PowerOfH(ur), group.Compose(group.PowerOfF(um), group.Exp(pk, ur))
}

func NewProof(group cl.Group, hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	um := zk.Mask(rand, zk.ScalarBits)
	ur := zk.Mask(rand, zk.RandomnessBits(group))
	u1, u2 := Commitment(group, public.PK, um, ur)
	e, err := challenge(group, hash, public, u1, u2)
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
	if !public.Ct.Valid(group) || !group.Valid(public.PK) {
		return false
	}
	u1, u2 := Commitment(group, public.PK, p.ZM, p.ZR)
	negE := zk.NegChallenge(p.E)
	u1 = group.Compose(u1, group.Exp(public.Ct.C1, negE))
	u2 = group.Compose(u2, group.Exp(public.Ct.C2, negE))
	e, err := challenge(group, hash, public, u1, u2)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

func challenge(group cl.Group, hash *hash.Hash, public Public, u1, u2 *cl.Element) (*curve.Scalar, error) {
	return zk.Challenge(hash, group, public.PK, public.Ct, u1, u2)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{E: curve.NewScalar(), ZM: new(saferith.Int), ZR: new(saferith.Int)}
}
