package cl

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/params"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
)

// Group is the unknown order group with an easy discrete logarithm subgroup
// used for additively homomorphic encryption.
//
// The protocols only rely on this interface, never on a concrete group.
type Group interface {
	hash.WriterToWithDomain

	// Compose returns a⋅b.
	Compose(a, b *Element) *Element
	// Exp returns aᵏ, inverting a when k < 0.
	Exp(a *Element, k *saferith.Int) *Element
	Inverse(a *Element) *Element
	// PowerOfH returns hᵏ for the generator h of unknown order.
	PowerOfH(k *saferith.Int) *Element
	// PowerOfF returns fᵐ for the generator f of the message subgroup.
	PowerOfF(m *saferith.Int) *Element
	// DLogF recovers m from fᵐ, as the representative in (−N/2, N/2].
	DLogF(a *Element) (*saferith.Int, error)
	// EncryptRandomnessBound is the bound B that encryption randomness and
	// secret keys are sampled below.
	EncryptRandomnessBound() *saferith.Nat
	Identity() *Element
	Valid(a *Element) bool
	// MessageBits is the largest bit size of a plaintext that DLogF recovers exactly.
	MessageBits() int
}

var (
	ErrNotInSubgroup   = errors.New("cl: element is not in the message subgroup")
	ErrModulus         = errors.New("cl: invalid modulus")
	ErrPlaintextRange  = errors.New("cl: group cannot hold the protocol plaintexts")
	ErrInvalidArgument = errors.New("cl: invalid element")
)

// minModulusBits is the smallest N accepted by New.
const minModulusBits = 512

// NSquare is the group ℤ*_{N²} for an RSA modulus N whose factorisation nobody knows.
//
// h is a 2N-th power derived from N, so it lies in the subgroup of unknown order,
// and f = 1+N generates the subgroup of order N where discrete logarithms are easy.
type NSquare struct {
	n        *saferith.Modulus
	nNat     *saferith.Nat
	nHalf    *big.Int
	nSquared *saferith.Modulus
	h        *Element
	bound    *saferith.Nat
}

// New returns the group built on a published modulus N.
func New(n *saferith.Nat) (*NSquare, error) {
	if n == nil || n.TrueLen() < minModulusBits {
		return nil, fmt.Errorf("%w: N must have at least %d bits", ErrModulus, minModulusBits)
	}
	nBig := n.Big()
	if nBig.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: N must be odd", ErrModulus)
	}
	nSquaredBig := new(big.Int).Mul(nBig, nBig)

	g := &NSquare{
		n:        saferith.ModulusFromNat(n),
		nNat:     new(saferith.Nat).SetBig(nBig, nBig.BitLen()),
		nHalf:    new(big.Int).Rsh(nBig, 1),
		nSquared: saferith.ModulusFromBytes(nSquaredBig.Bytes()),
	}
	// B = 2^{|N|+λ}
	boundBits := nBig.BitLen() + params.SecParam
	g.bound = new(saferith.Nat).SetBig(new(big.Int).Lsh(big.NewInt(1), uint(boundBits)), boundBits+1)

	h, err := g.deriveH()
	if err != nil {
		return nil, err
	}
	g.h = h
	return g, nil
}

// Setup performs a trusted setup of a group with an N of the given size.
//
// The primes are searched on the pool and discarded once N is computed.
func Setup(rand io.Reader, bits int, pl *pool.Pool) (*NSquare, error) {
	primes, err := sample.Primes(rand, bits/2, 2, pl)
	if err != nil {
		return nil, fmt.Errorf("cl: setup: %w", err)
	}
	if primes[0].Eq(primes[1]) == 1 {
		return nil, fmt.Errorf("cl: setup: %w: equal primes", ErrModulus)
	}
	n := new(big.Int).Mul(primes[0].Big(), primes[1].Big())
	return New(new(saferith.Nat).SetBig(n, n.BitLen()))
}

// deriveH hashes N into ℤ/N² and raises the result to 2N.
func (g *NSquare) deriveH() (*Element, error) {
	hs := hash.New()
	if err := hs.WriteAny(&hash.BytesWithDomain{TheDomain: "cl.h", Bytes: nil}, g.nNat); err != nil {
		return nil, err
	}
	buf := make([]byte, (g.nSquared.BitLen()+7)/8+params.SecBytes)
	if _, err := io.ReadFull(hs.Digest(), buf); err != nil {
		return nil, err
	}
	y := new(saferith.Nat).SetBytes(buf)
	y.Mod(y, g.nSquared)
	twoN := new(saferith.Nat).Lsh(g.nNat, 1, g.nNat.AnnouncedLen()+1)
	h := &Element{value: new(saferith.Nat).Exp(y, twoN, g.nSquared)}
	if !g.Valid(h) || h.Equal(g.Identity()) {
		return nil, fmt.Errorf("%w: degenerate generator", ErrModulus)
	}
	return h, nil
}

// N returns the public modulus.
func (g *NSquare) N() *saferith.Nat {
	return g.nNat
}

func (g *NSquare) Compose(a, b *Element) *Element {
	return &Element{value: new(saferith.Nat).ModMul(a.value, b.value, g.nSquared)}
}

func (g *NSquare) Exp(a *Element, k *saferith.Int) *Element {
	return &Element{value: new(saferith.Nat).ExpI(a.value, k, g.nSquared)}
}

func (g *NSquare) Inverse(a *Element) *Element {
	return &Element{value: new(saferith.Nat).ModInverse(a.value, g.nSquared)}
}

func (g *NSquare) PowerOfH(k *saferith.Int) *Element {
	return g.Exp(g.h, k)
}

// PowerOfF returns fᵐ = 1 + (m mod N)⋅N mod N².
func (g *NSquare) PowerOfF(m *saferith.Int) *Element {
	mm := m.Mod(g.n)
	x := new(saferith.Nat).ModMul(mm, g.nNat, g.nSquared)
	x.ModAdd(x, new(saferith.Nat).SetUint64(1), g.nSquared)
	return &Element{value: x}
}

func (g *NSquare) DLogF(a *Element) (*saferith.Int, error) {
	if !g.Valid(a) {
		return nil, ErrInvalidArgument
	}
	x := a.value.Big()
	n := g.n.Big()
	if new(big.Int).Mod(x, n).Cmp(big.NewInt(1)) != 0 {
		return nil, ErrNotInSubgroup
	}
	m := x.Sub(x, big.NewInt(1))
	m.Quo(m, n)
	if m.Cmp(g.nHalf) > 0 {
		m.Sub(m, n)
	}
	return intFromBig(m, n.BitLen()), nil
}

func (g *NSquare) EncryptRandomnessBound() *saferith.Nat {
	return g.bound
}

func (g *NSquare) Identity() *Element {
	return &Element{value: new(saferith.Nat).SetUint64(1)}
}

// Valid checks that a is a unit of ℤ/N².
func (g *NSquare) Valid(a *Element) bool {
	if a == nil || a.value == nil {
		return false
	}
	if a.value.Big().Cmp(g.nSquared.Big()) >= 0 {
		return false
	}
	return a.value.IsUnit(g.nSquared) == 1
}

// MessageBits leaves one bit of margin below N/2.
func (g *NSquare) MessageBits() int {
	return g.n.BitLen() - 2
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (g *NSquare) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(g.nNat.Big().Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*NSquare) Domain() string { return "cl.NSquare" }

// RequiredMessageBits bounds the plaintexts the signing protocols decrypt with n parties,
// when every decryption is multiplied by scale.
//
// The largest is scale⋅Σᵢ γᵢ⋅(e + x) with γᵢ < q and e, x < n⋅q.
func RequiredMessageBits(n int, scale *big.Int) int {
	nBits := big.NewInt(int64(n)).BitLen()
	return scale.BitLen() + 2*nBits + 2*params.BitsScalar + 2
}

// CheckMessageBits returns ErrPlaintextRange if g cannot decrypt the plaintexts
// of a session with n parties at the given scale.
func CheckMessageBits(g Group, n int, scale *big.Int) error {
	if required := RequiredMessageBits(n, scale); required > g.MessageBits() {
		return fmt.Errorf("%w: need %d bits, have %d", ErrPlaintextRange, required, g.MessageBits())
	}
	return nil
}

func intFromBig(x *big.Int, bits int) *saferith.Int {
	out := new(saferith.Int).SetBig(x, bits)
	return out
}
