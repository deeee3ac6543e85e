package cl_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
)

func intFromBig(x *big.Int) *saferith.Int {
	return new(saferith.Int).SetBig(x, x.BitLen()+1)
}

func TestNSquare_PowerOfF(t *testing.T) {
	g := test.Group()
	for _, m := range []int64{0, 1, 42, -1, -1000} {
		got, err := g.DLogF(g.PowerOfF(intFromBig(big.NewInt(m))))
		require.NoError(t, err)
		assert.Equal(t, 0, got.Big().Cmp(big.NewInt(m)), "m = %d", m)
	}
}

func TestNSquare_DLogF_NotInSubgroup(t *testing.T) {
	g := test.Group()
	h := g.PowerOfH(new(saferith.Int).SetUint64(1))
	_, err := g.DLogF(h)
	assert.ErrorIs(t, err, cl.ErrNotInSubgroup)
}

func TestNSquare_Homomorphism(t *testing.T) {
	g := test.Group()
	a := sample.Interval(rand.Reader, 300)
	b := sample.Interval(rand.Reader, 300)
	sum := new(saferith.Int).Add(a, b, -1)

	assert.True(t, g.Compose(g.PowerOfH(a), g.PowerOfH(b)).Equal(g.PowerOfH(sum)))
	assert.True(t, g.Compose(g.PowerOfF(a), g.PowerOfF(b)).Equal(g.PowerOfF(sum)))

	x := g.PowerOfH(a)
	assert.True(t, g.Compose(x, g.Inverse(x)).Equal(g.Identity()))
	negA := a.Clone().Neg(1)
	assert.True(t, g.Exp(g.PowerOfH(new(saferith.Int).SetUint64(1)), negA).Equal(g.Inverse(x)))
}

// DLogF recovers exactly the integers of at most MessageBits bits, and fails beyond N/2.
func TestNSquare_RangeBoundary(t *testing.T) {
	g := test.Group()
	n := g.N().Big()
	half := new(big.Int).Rsh(n, 1)

	largest := new(big.Int).Lsh(big.NewInt(1), uint(g.MessageBits()))
	largest.Sub(largest, big.NewInt(1))
	for _, m := range []*big.Int{largest, new(big.Int).Neg(largest), half} {
		got, err := g.DLogF(g.PowerOfF(intFromBig(m)))
		require.NoError(t, err)
		assert.Equal(t, 0, got.Big().Cmp(m))
	}

	// N/2 + 1 wraps around to a negative representative
	over := new(big.Int).Add(half, big.NewInt(1))
	got, err := g.DLogF(g.PowerOfF(intFromBig(over)))
	require.NoError(t, err)
	assert.NotEqual(t, 0, got.Big().Cmp(over))
	assert.Equal(t, 0, got.Big().Cmp(new(big.Int).Sub(over, n)))
}

func TestCheckMessageBits(t *testing.T) {
	g := test.Group()
	assert.NoError(t, cl.CheckMessageBits(g, 5, big.NewInt(1)))
	scale := new(big.Int).Exp(big.NewInt(120), big.NewInt(3), nil)
	assert.NoError(t, cl.CheckMessageBits(g, 5, scale))

	huge := new(big.Int).Lsh(big.NewInt(1), 600)
	assert.ErrorIs(t, cl.CheckMessageBits(g, 5, huge), cl.ErrPlaintextRange)
}

func TestNew_Invalid(t *testing.T) {
	_, err := cl.New(new(saferith.Nat).SetUint64(15))
	assert.ErrorIs(t, err, cl.ErrModulus)

	even := new(big.Int).Lsh(big.NewInt(1), 1023)
	_, err = cl.New(new(saferith.Nat).SetBig(even, 1024))
	assert.ErrorIs(t, err, cl.ErrModulus)
}

func TestSetup(t *testing.T) {
	if testing.Short() {
		t.Skip("prime generation")
	}
	pl := pool.NewPool(0)
	defer pl.TearDown()
	g, err := cl.Setup(rand.Reader, 1024, pl)
	require.NoError(t, err)
	assert.Equal(t, 1024, g.N().TrueLen())

	m := intFromBig(big.NewInt(77))
	got, err := g.DLogF(g.PowerOfF(m))
	require.NoError(t, err)
	assert.Equal(t, int64(77), got.Big().Int64())
}

func TestValid(t *testing.T) {
	g := test.Group()
	assert.True(t, g.Valid(g.Identity()))
	assert.False(t, g.Valid(nil))
	assert.False(t, g.Valid(&cl.Element{}))

	var e cl.Element
	require.NoError(t, e.UnmarshalBinary(g.N().Big().Bytes()))
	assert.False(t, g.Valid(&e), "N is not a unit")
}
