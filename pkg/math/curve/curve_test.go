package curve

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalar_Arithmetic(t *testing.T) {
	a := NewScalar().SetUint64(7)
	b := NewScalar().SetUint64(5)

	sum := NewScalar().Set(a).Add(b)
	assert.True(t, sum.Equal(NewScalar().SetUint64(12)))

	diff := NewScalar().Set(b).Sub(a)
	assert.True(t, diff.Equal(NewScalar().SetUint64(2).Negate()))

	inv := NewScalar().Set(a).Invert()
	assert.True(t, inv.Mul(a).Equal(NewScalar().SetUint64(1)))

	assert.True(t, NewScalar().Invert().IsZero())
}

func TestScalarFromInt_Negative(t *testing.T) {
	minusOne := new(saferith.Int).SetBig(big.NewInt(-1), 8)
	s := ScalarFromInt(minusOne)
	assert.True(t, s.Add(NewScalar().SetUint64(1)).IsZero())
}

func TestScalar_Marshal(t *testing.T) {
	s := NewScalar().SetUint64(123456789)
	data, err := s.MarshalBinary()
	require.NoError(t, err)
	got := NewScalar()
	require.NoError(t, got.UnmarshalBinary(data))
	assert.True(t, s.Equal(got))

	q := Order().Big().Bytes()
	assert.Error(t, got.UnmarshalBinary(q), "q itself is not canonical")
	assert.Error(t, got.UnmarshalBinary(data[1:]))
}

func TestG1_Group(t *testing.T) {
	a := NewScalar().SetUint64(3)
	b := NewScalar().SetUint64(4)
	ab := NewScalar().Set(a).Add(b)

	assert.True(t, a.ActOnBase().Add(b.ActOnBase()).Equal(ab.ActOnBase()))
	assert.True(t, ab.ActOnBase().Sub(b.ActOnBase()).Equal(a.ActOnBase()))
	assert.True(t, a.ActOnBase().Add(a.ActOnBase().Negate()).IsIdentity())
	assert.True(t, NewG1().Add(G1Generator()).Equal(G1Generator()))
	assert.True(t, NewScalar().ActOnBase().IsIdentity())
}

func TestG2_Group(t *testing.T) {
	a := NewScalar().SetUint64(9)
	b := NewScalar().SetUint64(11)
	ab := NewScalar().Set(a).Add(b)

	assert.True(t, a.ActOnBaseG2().Add(b.ActOnBaseG2()).Equal(ab.ActOnBaseG2()))
	assert.True(t, NewG2().Add(G2Generator()).Equal(G2Generator()))
	assert.True(t, ab.ActOnBaseG2().Sub(ab.ActOnBaseG2()).IsIdentity())
}

func TestPoint_Marshal(t *testing.T) {
	p := NewScalar().SetUint64(42).ActOnBase()
	data, err := p.MarshalBinary()
	require.NoError(t, err)
	got := NewG1()
	require.NoError(t, got.UnmarshalBinary(data))
	assert.True(t, p.Equal(got))

	p2 := NewScalar().SetUint64(42).ActOnBaseG2()
	data, err = p2.MarshalBinary()
	require.NoError(t, err)
	got2 := NewG2()
	require.NoError(t, got2.UnmarshalBinary(data))
	assert.True(t, p2.Equal(got2))
}

func TestPairingEqual(t *testing.T) {
	a := NewScalar().SetUint64(6)
	b := NewScalar().SetUint64(35)
	ab := NewScalar().Set(a).Mul(b)

	// e(a⋅g₁, b⋅g₂) = e(ab⋅g₁, g₂)
	assert.True(t, PairingEqual(a.ActOnBase(), b.ActOnBaseG2(), ab.ActOnBase(), G2Generator()))
	assert.False(t, PairingEqual(a.ActOnBase(), b.ActOnBaseG2(), b.ActOnBase(), G2Generator()))
}
