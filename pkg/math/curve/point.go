package curve

import (
	"fmt"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// G1 is a point of the first source group of the BLS12-381 pairing.
//
// Operations return new points and leave their inputs untouched.
type G1 struct {
	value bls12381.G1Jac
}

// G2 is a point of the second source group of the BLS12-381 pairing.
type G2 struct {
	value bls12381.G2Jac
}

// NewG1 returns the identity of G1.
func NewG1() *G1 {
	var p G1
	p.value.X.SetOne()
	p.value.Y.SetOne()
	return &p
}

// NewG2 returns the identity of G2.
func NewG2() *G2 {
	var p G2
	p.value.X.SetOne()
	p.value.Y.SetOne()
	return &p
}

// G1Generator returns the standard generator g₁.
func G1Generator() *G1 {
	g1, _, _, _ := bls12381.Generators()
	return &G1{value: g1}
}

// G2Generator returns the standard generator g₂.
func G2Generator() *G2 {
	_, g2, _, _ := bls12381.Generators()
	return &G2{value: g2}
}

func (p *G1) Add(q *G1) *G1 {
	var out G1
	out.value.Set(&p.value)
	out.value.AddAssign(&q.value)
	return &out
}

func (p *G1) Sub(q *G1) *G1 {
	var out G1
	out.value.Set(&p.value)
	out.value.SubAssign(&q.value)
	return &out
}

func (p *G1) Negate() *G1 {
	var out G1
	out.value.Neg(&p.value)
	return &out
}

func (p *G1) Equal(q *G1) bool {
	return p.value.Equal(&q.value)
}

func (p *G1) IsIdentity() bool {
	return p.value.Z.IsZero()
}

func (p *G1) affine() bls12381.G1Affine {
	var a bls12381.G1Affine
	a.FromJacobian(&p.value)
	return a
}

// MarshalBinary returns the compressed encoding of p.
func (p *G1) MarshalBinary() ([]byte, error) {
	a := p.affine()
	b := a.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes a compressed point, checking that it lies in G1.
func (p *G1) UnmarshalBinary(data []byte) error {
	if len(data) != bls12381.SizeOfG1AffineCompressed {
		return fmt.Errorf("curve: invalid G1 length %d", len(data))
	}
	var a bls12381.G1Affine
	if _, err := a.SetBytes(data); err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	p.value.FromAffine(&a)
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *G1) WriteTo(w io.Writer) (int64, error) {
	a := p.affine()
	b := a.Bytes()
	n, err := w.Write(b[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*G1) Domain() string { return "G1" }

func (p *G2) Add(q *G2) *G2 {
	var out G2
	out.value.Set(&p.value)
	out.value.AddAssign(&q.value)
	return &out
}

func (p *G2) Sub(q *G2) *G2 {
	var out G2
	out.value.Set(&p.value)
	out.value.SubAssign(&q.value)
	return &out
}

func (p *G2) Negate() *G2 {
	var out G2
	out.value.Neg(&p.value)
	return &out
}

func (p *G2) Equal(q *G2) bool {
	return p.value.Equal(&q.value)
}

func (p *G2) IsIdentity() bool {
	return p.value.Z.IsZero()
}

func (p *G2) affine() bls12381.G2Affine {
	var a bls12381.G2Affine
	a.FromJacobian(&p.value)
	return a
}

// MarshalBinary returns the compressed encoding of p.
func (p *G2) MarshalBinary() ([]byte, error) {
	a := p.affine()
	b := a.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes a compressed point, checking that it lies in G2.
func (p *G2) UnmarshalBinary(data []byte) error {
	if len(data) != bls12381.SizeOfG2AffineCompressed {
		return fmt.Errorf("curve: invalid G2 length %d", len(data))
	}
	var a bls12381.G2Affine
	if _, err := a.SetBytes(data); err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	p.value.FromAffine(&a)
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *G2) WriteTo(w io.Writer) (int64, error) {
	a := p.affine()
	b := a.Bytes()
	n, err := w.Write(b[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*G2) Domain() string { return "G2" }
