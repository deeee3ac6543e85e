// Package zkdualmod proves knowledge of (m, r) with Result = Baseᵐ⋅hʳ, without any
// exponentiation by a full size response on the verifier side.
//
// The responses β = u + α⋅w are never sent. The prover instead sends their decomposition
// β = k⋅q + e modulo the curve order q, as K = Base^{k₁}⋅h^{k₂} and the remainders,
// and a second decomposition modulo a fresh prime q′ of λ bits. Both must lead to the
// same first message R, which ties the remainders to a single pair of small responses.
//
// q′ is carried in a record keyed by a digest of the first decomposition. A proof
// whose record is missing is rejected.
package zkdualmod

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/params"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
)

type (
	Public struct {
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
	// Alpha is the λ bit challenge.
	Alpha *saferith.Int

	// K = Base^{⌊β₁/q⌋}⋅h^{⌊β₂/q⌋}
	K  *cl.Element
	E1 *saferith.Nat
	E2 *saferith.Nat

	// KPrime = Base^{⌊β₁/q′⌋}⋅h^{⌊β₂/q′⌋}
	KPrime  *cl.Element
	E1Prime *saferith.Nat
	E2Prime *saferith.Nat

	// SecondModulus maps the key of the first decomposition to q′.
	SecondModulus map[string]*saferith.Nat
}

func NewProof(group cl.Group, hash *hash.Hash, public Public, private Private, rand io.Reader) (*Proof, error) {
	u1 := zk.Mask(rand, zk.ScalarBits)
	u2 := zk.Mask(rand, zk.RandomnessBits(group))
	r := commitment(group, public.Base, u1, u2)
	alpha, err := challenge(group, hash.Clone(), public, r)
	if err != nil {
		return nil, err
	}

	beta1 := response(u1, alpha, private.M)
	beta2 := response(u2, alpha, private.R)

	q := curve.Order().Big()
	k, e1, e2 := decompose(group, public.Base, beta1, beta2, q)

	qPrime, err := sample.Prime(rand, params.BitsSecondModulus)
	if err != nil {
		return nil, fmt.Errorf("zkdualmod: %w", err)
	}
	kPrime, e1Prime, e2Prime := decompose(group, public.Base, beta1, beta2, qPrime.Big())

	key, err := recordKey(hash.Clone(), public, k, e1, e2)
	if err != nil {
		return nil, err
	}
	return &Proof{
		Alpha:         alpha,
		K:             k,
		E1:            e1,
		E2:            e2,
		KPrime:        kPrime,
		E1Prime:       e1Prime,
		E2Prime:       e2Prime,
		SecondModulus: map[string]*saferith.Nat{key: qPrime},
	}, nil
}

func (p *Proof) Verify(group cl.Group, hash *hash.Hash, public Public) bool {
	if p == nil || p.Alpha == nil || p.E1 == nil || p.E2 == nil || p.E1Prime == nil || p.E2Prime == nil {
		return false
	}
	if !zk.ValidElements(group, public.Base, public.Result, p.K, p.KPrime) {
		return false
	}
	if p.Alpha.IsNegative() == 1 || p.Alpha.Abs().TrueLen() > params.SecParam {
		return false
	}
	q := curve.Order().Big()
	if !below(q, p.E1, p.E2) {
		return false
	}

	r := recompose(group, public, p.Alpha, p.K, p.E1, p.E2, q)
	alpha, err := challenge(group, hash.Clone(), public, r)
	if err != nil || alpha.Abs().Big().Cmp(p.Alpha.Abs().Big()) != 0 {
		return false
	}

	key, err := recordKey(hash.Clone(), public, p.K, p.E1, p.E2)
	if err != nil {
		return false
	}
	qPrimeNat, ok := p.SecondModulus[key]
	if !ok || qPrimeNat == nil {
		return false
	}
	qPrime := qPrimeNat.Big()
	if qPrime.BitLen() != params.BitsSecondModulus || !qPrime.ProbablyPrime(20) {
		return false
	}
	if !below(qPrime, p.E1Prime, p.E2Prime) {
		return false
	}
	return recompose(group, public, p.Alpha, p.KPrime, p.E1Prime, p.E2Prime, qPrime).Equal(r)
}

func commitment(group cl.Group, base *cl.Element, u1, u2 *saferith.Int) *cl.Element {
	return group.Compose(group.Exp(base, u1), group.PowerOfH(u2))
}

// response returns u + α⋅w.
func response(u, alpha, w *saferith.Int) *saferith.Int {
	out := new(saferith.Int).Mul(alpha, w, -1)
	return out.Add(out, u, -1)
}

// decompose writes βᵢ = kᵢ⋅modulus + eᵢ and returns (Base^{k₁}⋅h^{k₂}, e₁, e₂).
//
// β is a masked response, which an ordinary Sigma proof would send in the clear.
func decompose(group cl.Group, base *cl.Element, beta1, beta2 *saferith.Int, modulus *big.Int) (*cl.Element, *saferith.Nat, *saferith.Nat) {
	k1, e1 := new(big.Int).DivMod(beta1.Big(), modulus, new(big.Int))
	k2, e2 := new(big.Int).DivMod(beta2.Big(), modulus, new(big.Int))
	k := commitment(group, base, toInt(k1), toInt(k2))
	return k, toNat(e1), toNat(e2)
}

// recompose returns K^{modulus}⋅Base^{e₁}⋅h^{e₂}⋅Result^{−α}.
func recompose(group cl.Group, public Public, alpha *saferith.Int, k *cl.Element, e1, e2 *saferith.Nat, modulus *big.Int) *cl.Element {
	out := group.Exp(k, toInt(modulus))
	out = group.Compose(out, commitment(group, public.Base, new(saferith.Int).SetNat(e1), new(saferith.Int).SetNat(e2)))
	negAlpha := alpha.Clone().Neg(1)
	return group.Compose(out, group.Exp(public.Result, negAlpha))
}

func below(modulus *big.Int, values ...*saferith.Nat) bool {
	for _, v := range values {
		if v.Big().Cmp(modulus) >= 0 {
			return false
		}
	}
	return true
}

// challenge returns α, the first λ bits of the digest.
func challenge(group cl.Group, hash *hash.Hash, public Public, r *cl.Element) (*saferith.Int, error) {
	if err := hash.WriteAny(group, public.Base, public.Result, r); err != nil {
		return nil, err
	}
	buf := make([]byte, params.SecBytes)
	if _, err := io.ReadFull(hash.Digest(), buf); err != nil {
		return nil, err
	}
	return new(saferith.Int).SetNat(new(saferith.Nat).SetBytes(buf)), nil
}

// recordKey identifies the record holding q′ for this first decomposition.
func recordKey(hash *hash.Hash, public Public, k *cl.Element, e1, e2 *saferith.Nat) (string, error) {
	if err := hash.WriteAny(recordLabel, public.Result, k, e1, e2); err != nil {
		return "", err
	}
	buf := make([]byte, params.SecBytes)
	if _, err := io.ReadFull(hash.Digest(), buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

var recordLabel = hash.BytesWithDomain{TheDomain: "Label", Bytes: []byte("zkdualmod record")}

func toInt(x *big.Int) *saferith.Int {
	return new(saferith.Int).SetBig(x, x.BitLen()+1)
}

func toNat(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, x.BitLen())
}

// Empty returns a Proof ready to be unmarshalled into.
func Empty() *Proof {
	return &Proof{SecondModulus: map[string]*saferith.Nat{}}
}
