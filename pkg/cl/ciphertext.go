package cl

import (
	"io"

	"github.com/cronokirby/saferith"
)

// Ciphertext is an encryption (c1, c2) = (hʳ, fᵐ⋅pkʳ) of an integer m.
type Ciphertext struct {
	C1 *Element
	C2 *Element
}

// Encrypt returns (hʳ, fᵐ⋅pkʳ).
func Encrypt(g Group, pk *Element, m, r *saferith.Int) *Ciphertext {
	return &Ciphertext{
		C1: g.PowerOfH(r),
		C2: g.Compose(g.PowerOfF(m), g.Exp(pk, r)),
	}
}

// Decrypt returns m from c2⋅c1⁻ˢᵏ = fᵐ.
func Decrypt(g Group, sk *saferith.Int, ct *Ciphertext) (*saferith.Int, error) {
	if !ct.Valid(g) {
		return nil, ErrInvalidArgument
	}
	negSk := sk.Clone().Neg(1)
	return g.DLogF(g.Compose(ct.C2, g.Exp(ct.C1, negSk)))
}

// Add returns the encryption of the sum of both plaintexts.
func (ct *Ciphertext) Add(g Group, other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: g.Compose(ct.C1, other.C1),
		C2: g.Compose(ct.C2, other.C2),
	}
}

// Mul returns the encryption of k⋅m.
func (ct *Ciphertext) Mul(g Group, k *saferith.Int) *Ciphertext {
	return &Ciphertext{
		C1: g.Exp(ct.C1, k),
		C2: g.Exp(ct.C2, k),
	}
}

// ReRandomise multiplies in a fresh encryption of zero (hʳ, pkʳ).
func (ct *Ciphertext) ReRandomise(g Group, pk *Element, r *saferith.Int) *Ciphertext {
	return &Ciphertext{
		C1: g.Compose(ct.C1, g.PowerOfH(r)),
		C2: g.Compose(ct.C2, g.Exp(pk, r)),
	}
}

// Valid checks that both components are elements of g.
func (ct *Ciphertext) Valid(g Group) bool {
	return ct != nil && g.Valid(ct.C1) && g.Valid(ct.C2)
}

func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.C1.Equal(other.C1) && ct.C2.Equal(other.C2)
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (ct *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	n1, err := ct.C1.WriteTo(w)
	if err != nil {
		return n1, err
	}
	n2, err := ct.C2.WriteTo(w)
	return n1 + n2, err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Ciphertext) Domain() string { return "cl.Ciphertext" }
