package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/params"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Scalar returns a uniform element of 𝔽_q.
//
// Twice the size of q is read before reducing, so the bias is negligible.
func Scalar(rand io.Reader) *curve.Scalar {
	buf := make([]byte, params.BytesDigest)
	mustReadBits(rand, buf)
	return curve.ScalarFromBytes(buf)
}

// ScalarUnit returns a uniform non-zero element of 𝔽_q.
func ScalarUnit(rand io.Reader) *curve.Scalar {
	for i := 0; i < maxIterations; i++ {
		s := Scalar(rand)
		if !s.IsZero() {
			return s
		}
	}
	panic(ErrMaxIterations)
}

// IntBits returns a uniform integer in [0, 2ᵇⁱᵗˢ).
func IntBits(rand io.Reader, bits int) *saferith.Nat {
	buf := make([]byte, (bits+7)/8)
	mustReadBits(rand, buf)
	if excess := len(buf)*8 - bits; excess > 0 {
		buf[0] &= 0xff >> excess
	}
	return new(saferith.Nat).SetBytes(buf)
}

// Interval returns an integer in the range ± 2ᵇⁱᵗˢ, but with constant-time properties.
func Interval(rand io.Reader, bits int) *saferith.Int {
	var sign [1]byte
	mustReadBits(rand, sign[:])
	out := new(saferith.Int).SetNat(IntBits(rand, bits))
	out.Neg(saferith.Choice(sign[0] & 1))
	return out
}

// Below returns a uniform integer in [0, bound).
func Below(rand io.Reader, bound *saferith.Nat) *saferith.Nat {
	bits := bound.TrueLen()
	for i := 0; i < maxIterations; i++ {
		x := IntBits(rand, bits)
		if _, _, lt := x.Cmp(bound); lt == 1 {
			return x
		}
	}
	panic(ErrMaxIterations)
}
