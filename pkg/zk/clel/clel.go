package zkclel

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/elgamal"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
)

type (
	Public struct {
		// Ct is the ciphertext being raised to γ.
		Ct *cl.Ciphertext
		// Out = Ct^γ⋅(hʳ, PKʳ)
		Out *cl.Ciphertext
		PK  *cl.Element

		// B is the curve point multiplied by γ.
		B *curve.G1
		// EK is the ElGamal public key.
		EK *elgamal.PublicKey
		// EG = (ρ⋅g₁, γ⋅B + ρ⋅EK)
		EG *elgamal.Ciphertext
	}
	Private struct {
		// Gamma is a curve scalar, as an integer in [0, q).
		Gamma *saferith.Int
		R     *saferith.Int
		Rho   *curve.Scalar
	}
)

// Proof shows that the same γ was applied to a group ciphertext and to a point
// encrypted under ElGamal.
type Proof struct {
	E *curve.Scalar
	// ZGamma = u₁ + e⋅γ
	ZGamma *saferith.Int
	// ZR = u₃ + e⋅r
	ZR *saferith.Int
	// ZRho = u₂ + e⋅ρ mod q
	ZRho *curve.Scalar
}

type commitments struct {
	U1, U2 *cl.Element
	U3, U4 *curve.G1
}

func commit(group cl.Group, public Public, uGamma, uR *saferith.Int, uRho *curve.Scalar) commitments {
	gammaModQ := curve.ScalarFromInt(uGamma)
	return commitments{
		U1: group.Compose(group.Exp(public.Ct.C1, uGamma), group.PowerOfH(uR)),
		U2: group.Compose(group.Exp(public.Ct.C2, uGamma), group.Exp(public.PK, uR)),
		U3: uRho.ActOnBase(),
		U4: gammaModQ.Act(public.B).Add(uRho.Act(public.EK)),
	}
}

func NewProof(group cl.Group, hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	uGamma := zk.Mask(rand, zk.ScalarBits)
	uR := zk.Mask(rand, zk.RandomnessBits(group))
	uRho := sample.Scalar(rand)
	e, err := challenge(group, hash, public, commit(group, public, uGamma, uR, uRho))
	if err != nil {
		return nil, err
	}
	return &Proof{
		E:      e,
		ZGamma: zk.Response(uGamma, e, private.Gamma),
		ZR:     zk.Response(uR, e, private.R),
		ZRho:   curve.NewScalar().Set(e).Mul(private.Rho).Add(uRho),
	}, nil
}

func (p *Proof) Verify(group cl.Group, hash *hash.Hash, public Public) bool {
	if p == nil || p.E == nil || p.ZRho == nil {
		return false
	}
	if !zk.IsBounded(p.ZGamma, zk.ScalarBits) || !zk.IsBounded(p.ZR, zk.RandomnessBits(group)) {
		return false
	}
	if !public.Ct.Valid(group) || !public.Out.Valid(group) || !group.Valid(public.PK) {
		return false
	}
	if public.B == nil || public.EK == nil || !public.EG.Valid() {
		return false
	}

	c := commit(group, public, p.ZGamma, p.ZR, p.ZRho)
	negE := zk.NegChallenge(p.E)
	c.U1 = group.Compose(c.U1, group.Exp(public.Out.C1, negE))
	c.U2 = group.Compose(c.U2, group.Exp(public.Out.C2, negE))
	c.U3 = c.U3.Sub(p.E.Act(public.EG.L))
	c.U4 = c.U4.Sub(p.E.Act(public.EG.M))

	e, err := challenge(group, hash, public, c)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

func challenge(group cl.Group, hash *hash.Hash, public Public, c commitments) (*curve.Scalar, error) {
	return zk.Challenge(hash, group, public.PK, public.Ct, public.Out, public.B, public.EK, public.EG,
		c.U1, c.U2, c.U3, c.U4)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{
		E:      curve.NewScalar(),
		ZGamma: new(saferith.Int),
		ZR:     new(saferith.Int),
		ZRho:   curve.NewScalar(),
	}
}
