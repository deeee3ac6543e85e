// Package zeroshare produces additive shares of zero from pairwise masks.
package zeroshare

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
)

// Masks holds the mask β′ᵢⱼ chosen by i for every other party j.
type Masks map[party.ID]map[party.ID]*saferith.Nat

// NewMasks samples β′ᵢⱼ < bound for every ordered pair of distinct parties.
func NewMasks(rand io.Reader, ids party.IDSlice, bound *saferith.Nat) Masks {
	masks := make(Masks, len(ids))
	for _, i := range ids {
		masks[i] = make(map[party.ID]*saferith.Nat, len(ids)-1)
		for _, j := range ids {
			if i != j {
				masks[i][j] = sample.Below(rand, bound)
			}
		}
	}
	return masks
}

// pair returns βᵢⱼ, which is the same value for (i, j) and (j, i).
func (m Masks) pair(i, j party.ID) *saferith.Int {
	hi, lo := i, j
	if hi < lo {
		hi, lo = lo, hi
	}
	neg := new(saferith.Int).SetNat(m[lo][hi]).Neg(1)
	return neg.Add(new(saferith.Int).SetNat(m[hi][lo]), neg, -1)
}

// Share returns βᵢ = Σ_{j<i} βᵢⱼ - Σ_{j>i} βᵢⱼ over the quorum.
//
// Shares of all the quorum members sum to zero.
func (m Masks) Share(i party.ID, quorum party.IDSlice) *saferith.Int {
	out := new(saferith.Int).SetUint64(0)
	for _, j := range quorum {
		switch {
		case j < i:
			out.Add(out, m.pair(i, j), -1)
		case j > i:
			out.Add(out, m.pair(i, j).Neg(1), -1)
		}
	}
	return out
}

// Shares returns βᵢ for every member of the quorum.
func (m Masks) Shares(quorum party.IDSlice) map[party.ID]*saferith.Int {
	out := make(map[party.ID]*saferith.Int, len(quorum))
	for _, i := range quorum {
		out[i] = m.Share(i, quorum)
	}
	return out
}
