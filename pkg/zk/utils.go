// Package zk holds what the Sigma protocols of its subpackages share:
// challenge derivation, integer masks and responses, and input validation.
//
// Every proof is kept in compact form: the challenge and the responses. The verifier
// recomputes the first message from them and checks that it hashes back to the challenge.
package zk

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/params"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
)

// Challenge writes data to the hash and reads a challenge scalar from its digest.
func Challenge(hash *hash.Hash, data ...any) (*curve.Scalar, error) {
	if err := hash.WriteAny(data...); err != nil {
		return nil, err
	}
	return sample.Scalar(hash.Digest()), nil
}

// Mask samples a non-negative mask hiding e⋅w for a witness w of witnessBits bits.
func Mask(rand io.Reader, witnessBits int) *saferith.Int {
	return new(saferith.Int).SetNat(sample.IntBits(rand, params.MaskBits(witnessBits)))
}

// Response returns mask + e⋅witness over the integers.
func Response(mask *saferith.Int, e *curve.Scalar, witness *saferith.Int) *saferith.Int {
	z := new(saferith.Int).Mul(e.Int(), witness, -1)
	return z.Add(z, mask, -1)
}

// NegChallenge returns −e as an integer exponent.
func NegChallenge(e *curve.Scalar) *saferith.Int {
	return e.Int().Neg(1)
}

// IsBounded reports whether |z| < 2^{MaskBits(witnessBits)+1}, the largest honest response.
func IsBounded(z *saferith.Int, witnessBits int) bool {
	if z == nil {
		return false
	}
	return z.Abs().TrueLen() <= params.MaskBits(witnessBits)+1
}

// ValidElements reports whether every element belongs to g.
func ValidElements(g cl.Group, elements ...*cl.Element) bool {
	for _, e := range elements {
		if !g.Valid(e) {
			return false
		}
	}
	return true
}

// Bits wraps a bit size so that it can be written to a hash.Hash.
type Bits int

// WriteTo implements io.WriterTo.
func (b Bits) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte{byte(b >> 24), byte(b >> 16), byte(b >> 8), byte(b)})
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (Bits) Domain() string { return "Bits" }

// ScalarBits is the size of the witnesses that are curve scalars.
const ScalarBits = params.BitsScalar

// RandomnessBits is the size of encryption randomness and secret keys sampled below the bound of g.
func RandomnessBits(g cl.Group) int {
	return g.EncryptRandomnessBound().TrueLen()
}
