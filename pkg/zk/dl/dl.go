package zkdl

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
		// P = hˣ
		P *cl.Element
		// Bits bounds the size of x.
		Bits int
	}
	Private struct {
		X *saferith.Int
	}
)

type Proof struct {
	E *curve.Scalar
	// Z = u + e⋅x
	Z *saferith.Int
}

func NewProof(group cl.Group, hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	u := zk.Mask(rand, public.Bits)
	e, err := challenge(group, hash, public, group.PowerOfH(u))
	if err != nil {
		return nil, err
	}
	return &Proof{E: e, Z: zk.Response(u, e, private.X)}, nil
}

func (p *Proof) Verify(group cl.Group, hash *hash.Hash, public Public) bool {
	if p == nil || p.E == nil || !zk.IsBounded(p.Z, public.Bits) {
		return false
	}
	if !group.Valid(public.P) {
		return false
	}
	// U = hᶻ⋅P⁻ᵉ
	u := group.Compose(group.PowerOfH(p.Z), group.Exp(public.P, zk.NegChallenge(p.E)))
	e, err := challenge(group, hash, public, u)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

func challenge(group cl.Group, hash *hash.Hash, public Public, u *cl.Element) (*curve.Scalar, error) {
	return zk.Challenge(hash, group, public.P, zk.Bits(public.Bits), u)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{E: curve.NewScalar(), Z: new(saferith.Int)}
}
