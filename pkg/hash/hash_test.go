package hash

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
)

func TestHash_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		h := New()
		return h.WriteAny(vs...)
	}

	assert.NoError(t, testFunc(big.NewInt(35)))
	assert.NoError(t, testFunc(new(saferith.Nat).SetUint64(35)))
	assert.NoError(t, testFunc(new(saferith.Int).SetUint64(35)))
	assert.NoError(t, testFunc([]byte{1, 4, 6}))
	assert.NoError(t, testFunc(&BytesWithDomain{"test", []byte{1}}))

	var i *big.Int
	assert.Error(t, testFunc(i))
	var n *saferith.Nat
	assert.Error(t, testFunc(n))
	assert.Error(t, testFunc(3), "int is not supported")

	assert.NoError(t, testFunc(big.NewInt(35), []byte{1, 4, 6}))
}

func TestHash_DomainSeparation(t *testing.T) {
	a, b := New(), New()
	_ = a.WriteAny([]byte{1, 2}, []byte{3})
	_ = b.WriteAny([]byte{1}, []byte{2, 3})
	assert.NotEqual(t, a.Sum(), b.Sum())
}

func TestHash_Fork(t *testing.T) {
	h := New()
	before := h.Clone().Sum()
	forked := h.Fork([]byte("round 1"))
	assert.Equal(t, before, h.Sum(), "Fork must not modify the original hash")
	assert.NotEqual(t, before, forked.Sum())
}

func TestHash_AnnouncedLength(t *testing.T) {
	small := new(saferith.Nat).SetUint64(35)
	wide := new(saferith.Nat).SetUint64(35).Resize(2048)
	a, b := New(), New()
	_ = a.WriteAny(small)
	_ = b.WriteAny(wide)
	assert.Equal(t, a.Sum(), b.Sum())

	neg := new(saferith.Int).SetUint64(35)
	neg.Neg(1)
	c, d := New(), New()
	_ = c.WriteAny(new(saferith.Int).SetUint64(35))
	_ = d.WriteAny(neg)
	assert.NotEqual(t, c.Sum(), d.Sum())
}

func TestHash_Framing(t *testing.T) {
	// the domain and the data cannot trade bytes
	a, b := New(), New()
	_ = a.WriteAny(&BytesWithDomain{"ab", []byte("c")})
	_ = b.WriteAny(&BytesWithDomain{"a", []byte("bc")})
	assert.NotEqual(t, a.Sum(), b.Sum())
}
