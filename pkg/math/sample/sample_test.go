package sample

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
)

func TestIntBits(t *testing.T) {
	for _, bits := range []int{1, 7, 8, 9, 130} {
		x := IntBits(rand.Reader, bits)
		assert.LessOrEqual(t, x.TrueLen(), bits)
	}
}

func TestInterval(t *testing.T) {
	for i := 0; i < 20; i++ {
		x := Interval(rand.Reader, 100)
		assert.LessOrEqual(t, x.Abs().TrueLen(), 100)
	}
}

func TestBelow(t *testing.T) {
	bound := new(saferith.Nat).SetUint64(1000)
	for i := 0; i < 50; i++ {
		x := Below(rand.Reader, bound)
		_, _, lt := x.Cmp(bound)
		assert.Equal(t, saferith.Choice(1), lt)
	}
}

func TestPrime(t *testing.T) {
	p, err := Prime(rand.Reader, 128)
	require.NoError(t, err)
	assert.Equal(t, 128, p.TrueLen())
	assert.True(t, p.Big().ProbablyPrime(20))

	_, err = Prime(rand.Reader, 16)
	assert.ErrorIs(t, err, ErrPrimeSize)
}

func TestPrimes(t *testing.T) {
	pl := pool.NewPool(2)
	defer pl.TearDown()
	ps, err := Primes(rand.Reader, 256, 2, pl)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	for _, p := range ps {
		assert.Equal(t, 256, p.TrueLen())
		assert.True(t, p.Big().ProbablyPrime(20))
	}
}

func readN(t *testing.T, r io.Reader, n int) []byte {
	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	return buf
}

func TestSource_Reproducible(t *testing.T) {
	a, b := Seeded(42), Seeded(42)
	assert.Equal(t, readN(t, a.Scalars(), 64), readN(t, b.Scalars(), 64))
	assert.Equal(t, readN(t, a.Ints(), 64), readN(t, b.Ints(), 64))

	c := Seeded(43)
	assert.NotEqual(t, readN(t, Seeded(42).Scalars(), 64), readN(t, c.Scalars(), 64))
}

func TestSource_IndependentStreams(t *testing.T) {
	s := Seeded(7)
	assert.False(t, bytes.Equal(readN(t, s.Scalars(), 32), readN(t, Seeded(7).Ints(), 32)))
}

func TestSource_Fork(t *testing.T) {
	parent := Seeded(1)
	first := readN(t, parent.Fork("party 1").Scalars(), 32)

	// reading from the parent does not change its forks
	readN(t, parent.Scalars(), 100)
	assert.Equal(t, first, readN(t, parent.Fork("party 1").Scalars(), 32))
	assert.NotEqual(t, first, readN(t, parent.Fork("party 2").Scalars(), 32))
}

func TestSource_Random(t *testing.T) {
	s := Random()
	assert.False(t, s.Seeded())
	assert.NotEqual(t, readN(t, s.Fork("x").Scalars(), 32), readN(t, s.Fork("x").Scalars(), 32))
}

// This exists to save the results of functions we want to benchmark, to avoid
// having them optimized away.
var resultNat *saferith.Nat

func BenchmarkPrime(b *testing.B) {
	for i := 0; i < b.N; i++ {
		resultNat, _ = Prime(rand.Reader, 128)
	}
}
