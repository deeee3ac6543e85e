package zksch

import (
	"io"

	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
)

// Public is X = x⋅g₁.
type Public struct {
	X *curve.G1
}

// PublicG2 is X = x⋅g₂.
type PublicG2 struct {
	X *curve.G2
}

type Private struct {
	X *curve.Scalar
}

// Proof is a Schnorr proof in compact form, used in both groups.
type Proof struct {
	E *curve.Scalar
	// Z = a + e⋅x mod q
	Z *curve.Scalar
}

func response(a, e, x *curve.Scalar) *curve.Scalar {
	return curve.NewScalar().Set(e).Mul(x).Add(a)
}

// NewProof proves knowledge of the discrete logarithm of X in G1.
func NewProof(hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	a := sample.Scalar(rand)
	e, err := zk.Challenge(hash, public.X, a.ActOnBase())
	if err != nil {
		return nil, err
	}
	return &Proof{E: e, Z: response(a, e, private.X)}, nil
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if p == nil || p.E == nil || p.Z == nil || public.X == nil || public.X.IsIdentity() {
		return false
	}
	// A = z⋅g₁ - e⋅X
	a := p.Z.ActOnBase().Sub(p.E.Act(public.X))
	e, err := zk.Challenge(hash, public.X, a)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

// NewProofG2 proves knowledge of the discrete logarithm of X in G2.
func NewProofG2(hash *hash.Hash, public PublicG2, private Private, rand io.Reader) (*Proof, error) {
	a := sample.Scalar(rand)
	e, err := zk.Challenge(hash, public.X, a.ActOnBaseG2())
	if err != nil {
		return nil, err
	}
	return &Proof{E: e, Z: response(a, e, private.X)}, nil
}

func (p *Proof) VerifyG2(hash *hash.Hash, public PublicG2) bool {
	if p == nil || p.E == nil || p.Z == nil || public.X == nil || public.X.IsIdentity() {
		return false
	}
	// A = z⋅g₂ - e⋅X
	a := p.Z.ActOnBaseG2().Sub(p.E.ActG2(public.X))
	e, err := zk.Challenge(hash, public.X, a)
	if err != nil {
		return false
	}
	return e.Equal(p.E)
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{E: curve.NewScalar(), Z: curve.NewScalar()}
}
