// Package pvss implements verifiable Shamir sharing of an integer exponent of h.
//
// The group has unknown order, so Lagrange weights cannot be inverted. Every
// polynomial is instead scaled by Δ = n!, which makes Δ⋅λᵢ an integer for every
// quorum, and shares are recovered as multiples of the secret:
//
//	Σᵢ dᵢ = Δ³⋅Σⱼ sⱼ
//
// for the quorum {1, …, t} used by the signing protocols.
package pvss

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/bits"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
	zkdl "github.com/taurusgroup/threshold-bbs/pkg/zk/dl"
)

var (
	ErrInvalidDealing = errors.New("pvss: invalid dealing")
	ErrInvalidShare   = errors.New("pvss: share does not match the dealing")
)

// Dealing is the public part of one dealer's sharing.
type Dealing struct {
	// Commitments[0] = hˢ, Commitments[k] = h^{Δ⋅aₖ}
	Commitments []*cl.Element
	// Proofs[k] proves knowledge of the exponent of Commitments[k].
	Proofs []*zkdl.Proof
}

// Deal shares secret among the parties 1, …, n so that any t of them can recover it.
//
// The sub-share of party i is s(i) = Δ⋅s + Σₖ aₖ⋅iᵏ, with random aₖ below the
// encryption randomness bound. The dealer checks its own output with VerifyShare.
func Deal(group cl.Group, h *hash.Hash, rand io.Reader, secret *saferith.Int, t, n int) (*Dealing, map[party.ID]*saferith.Int, error) {
	if t < 1 || t > n {
		return nil, nil, fmt.Errorf("pvss: threshold %d is invalid for %d parties", t, n)
	}
	delta := toInt(polynomial.Factorial(n))

	coefficients := make([]*saferith.Int, t)
	coefficients[0] = new(saferith.Int).Mul(delta, secret, -1)
	for k := 1; k < t; k++ {
		coefficients[k] = new(saferith.Int).SetNat(sample.Below(rand, group.EncryptRandomnessBound()))
	}

	dealing := &Dealing{
		Commitments: make([]*cl.Element, t),
		Proofs:      make([]*zkdl.Proof, t),
	}
	for k := 0; k < t; k++ {
		// the constant is committed without its Δ factor, so that it equals the dealer's key share
		witness := secret
		if k > 0 {
			witness = new(saferith.Int).Mul(delta, coefficients[k], -1)
		}
		public := zkdl.Public{P: group.PowerOfH(witness), Bits: CoefficientBits(group, k, n)}
		proof, err := zkdl.NewProof(group, coefficientHash(h, k), public, zkdl.Private{X: witness}, rand)
		if err != nil {
			return nil, nil, fmt.Errorf("pvss: coefficient %d: %w", k, err)
		}
		dealing.Commitments[k] = public.P
		dealing.Proofs[k] = proof
	}

	shares := make(map[party.ID]*saferith.Int, n)
	for _, id := range party.Range(n) {
		share := evaluate(coefficients, id)
		if !VerifyShare(group, dealing, id, share, n) {
			return nil, nil, ErrInvalidShare
		}
		shares[id] = share
	}
	return dealing, shares, nil
}

// Verify checks the shape of the dealing and the proof attached to each commitment.
func (d *Dealing) Verify(group cl.Group, h *hash.Hash, t, n int) bool {
	if d == nil || len(d.Commitments) != t || len(d.Proofs) != t {
		return false
	}
	for k := 0; k < t; k++ {
		public := zkdl.Public{P: d.Commitments[k], Bits: CoefficientBits(group, k, n)}
		if !d.Proofs[k].Verify(group, coefficientHash(h, k), public) {
			return false
		}
	}
	return true
}

// VerifyShare checks h^{Δ⋅share} against the commitments evaluated at id.
func VerifyShare(group cl.Group, d *Dealing, id party.ID, share *saferith.Int, n int) bool {
	if d == nil || len(d.Commitments) == 0 || share == nil {
		return false
	}
	delta := polynomial.Factorial(n)
	lhs := group.PowerOfH(new(saferith.Int).Mul(toInt(delta), share, -1))
	return lhs.Equal(expectedCommitment(group, d.Commitments, id, delta))
}

// expectedCommitment returns C₀^{Δ²}⋅Πₖ Cₖ^{iᵏ} = h^{Δ⋅s(i)}.
//
// Dealer and receivers both go through this function, so the exponent applied to
// the constant term is the same on both sides.
func expectedCommitment(group cl.Group, commitments []*cl.Element, id party.ID, delta *big.Int) *cl.Element {
	deltaSquared := new(big.Int).Mul(delta, delta)
	result := group.Exp(commitments[0], toInt(deltaSquared))
	x := big.NewInt(int64(id))
	power := big.NewInt(1)
	for k := 1; k < len(commitments); k++ {
		power.Mul(power, x)
		result = group.Compose(result, group.Exp(commitments[k], toInt(power)))
	}
	return result
}

// Recover returns the key share dᵢ = (Δ⋅λᵢ)⋅Δ⋅Σⱼ sⱼ(i) of a member of the quorum,
// given the sub-shares it received from every dealer.
func Recover(shares []*saferith.Int, id party.ID, quorum party.IDSlice, n int) (*saferith.Int, error) {
	if !quorum.Contains(id) {
		return nil, fmt.Errorf("pvss: party %v is not in the quorum", id)
	}
	sum := new(saferith.Int).SetUint64(0)
	for _, s := range shares {
		if s == nil {
			return nil, ErrInvalidShare
		}
		sum.Add(sum, s, -1)
	}
	delta := polynomial.Factorial(n)
	// Δ⋅(Δ⋅λᵢ) is public, only the sum of sub-shares is secret
	weight := new(big.Int).Mul(delta, polynomial.LagrangeInt(quorum, id, delta))
	return sum.Mul(sum, toInt(weight), -1), nil
}

// PublicShare returns h^{dᵢ} for the quorum member id, computed from the dealings alone.
func PublicShare(group cl.Group, dealings []*Dealing, id party.ID, quorum party.IDSlice, n int) (*cl.Element, error) {
	if !quorum.Contains(id) {
		return nil, fmt.Errorf("pvss: party %v is not in the quorum", id)
	}
	delta := polynomial.Factorial(n)
	result := group.Identity()
	for _, d := range dealings {
		if d == nil || len(d.Commitments) == 0 {
			return nil, ErrInvalidDealing
		}
		result = group.Compose(result, expectedCommitment(group, d.Commitments, id, delta))
	}
	return group.Exp(result, toInt(polynomial.LagrangeInt(quorum, id, delta))), nil
}

// CoefficientBits bounds the exponent of the k-th commitment.
func CoefficientBits(group cl.Group, k, n int) int {
	if k == 0 {
		return zk.RandomnessBits(group)
	}
	return zk.RandomnessBits(group) + polynomial.Factorial(n).BitLen()
}

// ShareBits bounds the size of a recovered key share dᵢ.
func ShareBits(group cl.Group, t, n int) int {
	return zk.RandomnessBits(group) + 4*polynomial.Factorial(n).BitLen() + (t+1)*bits.Len(uint(n)) + 2
}

// evaluate returns Σₖ coefficients[k]⋅xᵏ over the integers.
func evaluate(coefficients []*saferith.Int, x party.ID) *saferith.Int {
	result := new(saferith.Int).SetUint64(0)
	for k := len(coefficients) - 1; k >= 0; k-- {
		result.Mul(result, x.Int(), -1)
		result.Add(result, coefficients[k], -1)
	}
	return result
}

func coefficientHash(h *hash.Hash, k int) *hash.Hash {
	return h.Fork(&hash.BytesWithDomain{
		TheDomain: "PVSS Coefficient",
		Bytes:     []byte{byte(k >> 8), byte(k)},
	})
}

// toInt converts a public integer.
func toInt(x *big.Int) *saferith.Int {
	return new(saferith.Int).SetBig(x, x.BitLen()+1)
}
