package zkrand

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
		// Base is the component being re-randomised.
		Base *cl.Element
		// Result = Baseᵐ⋅hʳ
		Result *cl.Element
	}
	Private struct {
		// M is a curve scalar, as an integer in [0, q).
		M *saferith.Int
		R *saferith.Int
	}
)

type Proof struct {
	E  *curve.Scalar
	ZM *saferith.Int
	ZR *saferith.Int
}

func commitment(group cl.Group, base *cl.Element, um, ur *saferith.Int) *cl.Element {
	return group.Compose(group.Exp(base, um), group.PowerOfH(ur))
}

func NewProof(group cl.Group, hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	um := zk.Mask(rand, zk.ScalarBits)
	ur := zk.Mask(rand, zk.RandomnessBits(group))
	e, err := challenge(group, hash, public, commitment(group, public.Base, um, ur))
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
	if !zk.ValidElements(group, public.Base, public.Result) {
		return false
	}
	// U = Base^{zₘ}⋅h^{zᵣ}⋅Result⁻ᵉ
	u := group.Compose(commitment(group, public.Base, p.ZM, p.ZR), group.Exp(public.Result, zk.NegChallenge(p.E)))
	e, err := challenge(group, hash, public, u)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

func challenge(group cl.Group, hash *hash.Hash, public Public, u *cl.Element) (*curve.Scalar, error) {
	return zk.Challenge(hash, group, public.Base, public.Result, u)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{E: curve.NewScalar(), ZM: new(saferith.Int), ZR: new(saferith.Int)}
}
