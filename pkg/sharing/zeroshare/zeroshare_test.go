package zeroshare

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
)

func TestShares_SumToZero(t *testing.T) {
	bound := new(saferith.Nat).SetUint64(1).Lsh(new(saferith.Nat).SetUint64(1), 300, -1)
	for _, tc := range []struct{ n, t int }{{1, 1}, {2, 2}, {5, 3}, {6, 6}} {
		masks := NewMasks(test.Source(uint64(tc.n)).Ints(), party.Range(tc.n), bound)
		quorum := party.Range(tc.t)
		sum := new(big.Int)
		nonZero := false
		for _, s := range masks.Shares(quorum) {
			sum.Add(sum, s.Big())
			if s.Big().Sign() != 0 {
				nonZero = true
			}
		}
		assert.Equal(t, 0, sum.Sign(), "n=%d t=%d", tc.n, tc.t)
		if tc.t > 1 {
			assert.True(t, nonZero)
		}
	}
}

func TestShares_Symmetric(t *testing.T) {
	bound := new(saferith.Nat).SetUint64(1 << 40)
	masks := NewMasks(test.Source(2).Ints(), party.Range(4), bound)
	for _, i := range party.Range(4) {
		for _, j := range party.Range(4) {
			if i != j {
				assert.Equal(t, 0, masks.pair(i, j).Big().Cmp(masks.pair(j, i).Big()))
			}
		}
	}
}
