package zkpdcl

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
		// C1 is the first component of the ciphertext being decrypted.
		C1 *cl.Element
		// PD = C1ᵈ
		PD *cl.Element
		// P = hᵈ
		P *cl.Element
		// Bits bounds the size of d.
		Bits int
	}
	Private struct {
		D *saferith.Int
	}
)

// Proof shows that PD was computed with the key share behind P.
type Proof struct {
	E *curve.Scalar
	Z *saferith.Int
}

func NewProof(group cl.Group, hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	u := zk.Mask(rand, public.Bits)
	e, err := challenge(group, hash, public, group.Exp(public.C1, u), group.PowerOfH(u))
	if err != nil {
		return nil, err
	}
	return &Proof{E: e, Z: zk.Response(u, e, private.D)}, nil
}

func (p *Proof) Verify(group cl.Group, hash *hash.Hash, public Public) bool {
	if p == nil || p.E == nil || !zk.IsBounded(p.Z, public.Bits) {
		return false
	}
	if !zk.ValidElements(group, public.C1, public.PD, public.P) {
		return false
	}
	negE := zk.NegChallenge(p.E)
	// U₁ = C1ᶻ⋅PD⁻ᵉ, U₂ = hᶻ⋅P⁻ᵉ
	u1 := group.Compose(group.Exp(public.C1, p.Z), group.Exp(public.PD, negE))
	u2 := group.Compose(group.PowerOfH(p.Z), group.Exp(public.P, negE))
	e, err := challenge(group, hash, public, u1, u2)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

func challenge(group cl.Group, hash *hash.Hash, public Public, u1, u2 *cl.Element) (*curve.Scalar, error) {
	return zk.Challenge(hash, group, public.C1, public.PD, public.P, zk.Bits(public.Bits), u1, u2)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{E: curve.NewScalar(), Z: new(saferith.Int)}
}
