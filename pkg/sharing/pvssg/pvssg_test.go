package pvssg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
)

func TestPVSSG_Recover(t *testing.T) {
	for _, tc := range []struct{ n, t int }{{1, 1}, {3, 2}, {5, 3}, {5, 5}} {
		src := test.Source(uint64(tc.n*10 + tc.t))
		ids := party.Range(tc.n)

		secret := curve.NewScalar()
		dealings := make([]*Dealing, 0, tc.n)
		sums := make(map[party.ID]*curve.Scalar, tc.n)
		for _, id := range ids {
			sums[id] = curve.NewScalar()
		}
		for range ids {
			s := sample.Scalar(src.Scalars())
			secret.Add(s)
			d, shares, err := Deal(hash.New(), src.Scalars(), s, tc.t, ids)
			require.NoError(t, err)
			require.True(t, d.Verify(hash.New(), tc.t))
			dealings = append(dealings, d)
			for id, share := range shares {
				assert.True(t, VerifyShare(d, id, share))
				sums[id].Add(share)
			}
		}

		// any quorum recombines exactly
		for _, quorum := range []party.IDSlice{ids[:tc.t], ids[tc.n-tc.t:]} {
			weighted, err := Recover(sums, quorum)
			require.NoError(t, err)
			publics, err := PublicShares(dealings, quorum)
			require.NoError(t, err)

			total := curve.NewScalar()
			for id, w := range weighted {
				total.Add(w)
				assert.True(t, w.ActOnBase().Equal(publics[id]))
			}
			assert.True(t, secret.Equal(total), "n=%d t=%d quorum=%v", tc.n, tc.t, quorum)
		}
	}
}

func TestPVSSG_Invalid(t *testing.T) {
	src := test.Source(1)
	ids := party.Range(3)
	d, shares, err := Deal(hash.New(), src.Scalars(), sample.Scalar(src.Scalars()), 2, ids)
	require.NoError(t, err)

	assert.False(t, d.Verify(hash.New(), 3))
	assert.False(t, d.Verify(hash.New().Fork([]byte("other")), 2))
	assert.False(t, VerifyShare(d, 1, shares[2]))
	assert.False(t, VerifyShare(nil, 1, shares[1]))

	_, err = Recover(shares, party.IDSlice{1, 4})
	assert.Error(t, err)
	_, _, err = Deal(hash.New(), src.Scalars(), sample.Scalar(src.Scalars()), 4, ids)
	assert.Error(t, err)
}
