package curve

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/cronokirby/saferith"
)

// Scalar is an element of the BLS12-381 scalar field 𝔽_q.
//
// Arithmetic methods modify the receiver and return it, so that calls can be chained.
type Scalar struct {
	value fr.Element
}

// NewScalar returns a new zero Scalar.
func NewScalar() *Scalar {
	return &Scalar{}
}

// Order returns q, the order of G1 and G2.
func Order() *saferith.Modulus {
	return saferith.ModulusFromBytes(fr.Modulus().Bytes())
}

// ScalarFromInt reduces a signed integer modulo q.
func ScalarFromInt(x *saferith.Int) *Scalar {
	return NewScalar().SetBig(x.Big())
}

// ScalarFromBytes interprets b as a big-endian integer and reduces it modulo q.
func ScalarFromBytes(b []byte) *Scalar {
	var s Scalar
	s.value.SetBytes(b)
	return &s
}

func (s *Scalar) Set(t *Scalar) *Scalar {
	s.value.Set(&t.value)
	return s
}

func (s *Scalar) SetUint64(v uint64) *Scalar {
	s.value.SetUint64(v)
	return s
}

// SetBig sets s = v mod q, including for negative v.
func (s *Scalar) SetBig(v *big.Int) *Scalar {
	s.value.SetBigInt(v)
	return s
}

// SetNat sets s = v mod q.
func (s *Scalar) SetNat(v *saferith.Nat) *Scalar {
	return s.SetBig(v.Big())
}

func (s *Scalar) Add(t *Scalar) *Scalar {
	s.value.Add(&s.value, &t.value)
	return s
}

func (s *Scalar) Sub(t *Scalar) *Scalar {
	s.value.Sub(&s.value, &t.value)
	return s
}

func (s *Scalar) Mul(t *Scalar) *Scalar {
	s.value.Mul(&s.value, &t.value)
	return s
}

func (s *Scalar) Negate() *Scalar {
	s.value.Neg(&s.value)
	return s
}

// Invert sets s = s⁻¹. Zero is left unchanged.
func (s *Scalar) Invert() *Scalar {
	s.value.Inverse(&s.value)
	return s
}

func (s *Scalar) Equal(t *Scalar) bool {
	return s.value.Equal(&t.value)
}

func (s *Scalar) IsZero() bool {
	return s.value.IsZero()
}

// Big returns the canonical representative of s in [0, q).
func (s *Scalar) Big() *big.Int {
	return s.value.BigInt(new(big.Int))
}

// Int returns the canonical representative of s in [0, q) as a signed integer.
func (s *Scalar) Int() *saferith.Int {
	return new(saferith.Int).SetBig(s.Big(), BitsScalar)
}

// Act computes s⋅p in G1.
func (s *Scalar) Act(p *G1) *G1 {
	var out G1
	out.value.ScalarMultiplication(&p.value, s.Big())
	return &out
}

// ActOnBase computes s⋅g₁.
func (s *Scalar) ActOnBase() *G1 {
	return s.Act(G1Generator())
}

// ActG2 computes s⋅p in G2.
func (s *Scalar) ActG2(p *G2) *G2 {
	var out G2
	out.value.ScalarMultiplication(&p.value, s.Big())
	return &out
}

// ActOnBaseG2 computes s⋅g₂.
func (s *Scalar) ActOnBaseG2() *G2 {
	return s.ActG2(G2Generator())
}

// BitsScalar is the bit length of q.
const BitsScalar = fr.Bits

// MarshalBinary returns the 32 byte big-endian encoding of s.
func (s *Scalar) MarshalBinary() ([]byte, error) {
	b := s.value.Bytes()
	return b[:], nil
}

// UnmarshalBinary rejects encodings that are not canonical.
func (s *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != fr.Bytes {
		return fmt.Errorf("curve: invalid scalar length %d", len(data))
	}
	if err := s.value.SetBytesCanonical(data); err != nil {
		return errors.New("curve: scalar is not reduced")
	}
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (s *Scalar) WriteTo(w io.Writer) (int64, error) {
	b := s.value.Bytes()
	n, err := w.Write(b[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Scalar) Domain() string { return "Scalar" }

func (s *Scalar) String() string {
	return s.value.String()
}
