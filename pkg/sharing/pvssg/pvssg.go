// Package pvssg implements verifiable Shamir sharing of a curve scalar, with
// commitments in G1.
package pvssg

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	zksch "github.com/taurusgroup/threshold-bbs/pkg/zk/sch"
)

var ErrInvalidShare = errors.New("pvssg: share does not match the dealing")

// Dealing is the public part of one dealer's sharing.
type Dealing struct {
	// Commitments[k] = aₖ⋅g₁
	Commitments []*curve.G1
	// Proof is a proof of knowledge of a₀.
	Proof *zksch.Proof
}

// Deal shares secret among ids with a random polynomial of degree t-1.
func Deal(h *hash.Hash, rand io.Reader, secret *curve.Scalar, t int, ids party.IDSlice) (*Dealing, map[party.ID]*curve.Scalar, error) {
	if t < 1 || t > len(ids) {
		return nil, nil, fmt.Errorf("pvssg: threshold %d is invalid for %d parties", t, len(ids))
	}
	f := polynomial.NewPolynomial(rand, t-1, secret)
	exponent := polynomial.NewPolynomialExponent(f)
	proof, err := zksch.NewProof(h.Clone(), zksch.Public{X: exponent.Constant()}, zksch.Private{X: secret}, rand)
	if err != nil {
		return nil, nil, fmt.Errorf("pvssg: %w", err)
	}
	dealing := &Dealing{Commitments: exponent.Coefficients(), Proof: proof}

	shares := make(map[party.ID]*curve.Scalar, len(ids))
	for _, id := range ids {
		shares[id] = f.Evaluate(id.Scalar())
	}
	return dealing, shares, nil
}

// Verify checks the degree of the dealing and the proof of its constant term.
func (d *Dealing) Verify(h *hash.Hash, t int) bool {
	if d == nil || len(d.Commitments) != t {
		return false
	}
	for _, c := range d.Commitments {
		if c == nil {
			return false
		}
	}
	return d.Proof.Verify(h.Clone(), zksch.Public{X: d.Commitments[0]})
}

// Exponent returns the committed polynomial.
func (d *Dealing) Exponent() *polynomial.Exponent {
	return polynomial.NewExponent(d.Commitments)
}

// VerifyShare checks share⋅g₁ = F(id).
func VerifyShare(d *Dealing, id party.ID, share *curve.Scalar) bool {
	if d == nil || len(d.Commitments) == 0 || share == nil {
		return false
	}
	return share.ActOnBase().Equal(d.Exponent().Evaluate(id.Scalar()))
}

// Recover returns the Lagrange weighted shares λᵢ⋅Σⱼ fⱼ(i) of the quorum, which sum to the secret.
//
// shares maps every quorum member to the sum of the sub-shares it received.
func Recover(shares map[party.ID]*curve.Scalar, quorum party.IDSlice) (map[party.ID]*curve.Scalar, error) {
	out := make(map[party.ID]*curve.Scalar, len(quorum))
	for _, id := range quorum {
		s, ok := shares[id]
		if !ok {
			return nil, fmt.Errorf("pvssg: missing share of %v", id)
		}
		w, err := Weighted(id, s, quorum)
		if err != nil {
			return nil, err
		}
		out[id] = w
	}
	return out, nil
}

// Weighted returns λᵢ⋅share for a single member of the quorum.
func Weighted(id party.ID, share *curve.Scalar, quorum party.IDSlice) (*curve.Scalar, error) {
	if !quorum.Contains(id) {
		return nil, fmt.Errorf("pvssg: party %v is not in the quorum", id)
	}
	return polynomial.Lagrange(quorum)[id].Mul(share), nil
}

// PublicShares returns λᵢ⋅F(i) for every quorum member, where F is the sum of the dealings.
func PublicShares(dealings []*Dealing, quorum party.IDSlice) (map[party.ID]*curve.G1, error) {
	exponents := make([]*polynomial.Exponent, 0, len(dealings))
	for _, d := range dealings {
		if d == nil {
			return nil, errors.New("pvssg: nil dealing")
		}
		exponents = append(exponents, d.Exponent())
	}
	sum, err := polynomial.Sum(exponents)
	if err != nil {
		return nil, fmt.Errorf("pvssg: %w", err)
	}
	lagrange := polynomial.Lagrange(quorum)
	out := make(map[party.ID]*curve.G1, len(quorum))
	for _, id := range quorum {
		out[id] = lagrange[id].Act(sum.Evaluate(id.Scalar()))
	}
	return out, nil
}
