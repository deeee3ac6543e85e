package elgamal

import (
	"io"

	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
)

type (
	PublicKey = curve.G1
	Nonce     = curve.Scalar
)

// Ciphertext encrypts a point of G1 rather than a scalar, so decryption needs no discrete logarithm.
type Ciphertext struct {
	// L = nonce⋅g₁
	L *curve.G1
	// M = message + nonce⋅public
	M *curve.G1
}

// Encrypt returns (nonce⋅g₁, message + nonce⋅public).
func Encrypt(public *PublicKey, message *curve.G1, nonce *Nonce) *Ciphertext {
	return &Ciphertext{
		L: nonce.ActOnBase(),
		M: message.Add(nonce.Act(public)),
	}
}

// Add returns the encryption of the sum of both messages.
func (c *Ciphertext) Add(other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		L: c.L.Add(other.L),
		M: c.M.Add(other.M),
	}
}

// PartialDecrypt returns share⋅L, the contribution of one holder of the secret key.
func (c *Ciphertext) PartialDecrypt(share *curve.Scalar) *curve.G1 {
	return share.Act(c.L)
}

// Combine removes the sum of partial decryptions from M.
func (c *Ciphertext) Combine(partials ...*curve.G1) *curve.G1 {
	out := c.M
	for _, p := range partials {
		out = out.Sub(p)
	}
	return out
}

// Decrypt returns M - secret⋅L.
func (c *Ciphertext) Decrypt(secret *curve.Scalar) *curve.G1 {
	return c.Combine(c.PartialDecrypt(secret))
}

func (c *Ciphertext) Valid() bool {
	return c != nil && c.L != nil && !c.L.IsIdentity() && c.M != nil
}

func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	n1, err := c.L.WriteTo(w)
	if err != nil {
		return n1, err
	}
	n2, err := c.M.WriteTo(w)
	return n1 + n2, err
}

func (*Ciphertext) Domain() string {
	return "ElGamal Ciphertext"
}
