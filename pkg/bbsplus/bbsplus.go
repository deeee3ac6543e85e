// Package bbsplus implements single signer BBS+ signatures over BLS12-381.
//
// A signature on messages m₀, …, mₗ₋₁ is (A, e, s) with
//
//	B = g₁ + Σ Hᵢ⋅mᵢ + Hₗ⋅s,  A = (x + e)⁻¹⋅B,
//
// and verifies when e(A, X + e⋅g₂) = e(B, g₂) for the public key X = x⋅g₂.
package bbsplus

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
)

var (
	ErrInvalidSignature = errors.New("bbsplus: invalid signature")
	ErrMessageCount     = errors.New("bbsplus: wrong number of messages")
)

// PublicKey is X = x⋅g₂ together with the l+1 generators H₀, …, Hₗ.
type PublicKey struct {
	X *curve.G2
	H []*curve.G1
}

// MessageCount returns l.
func (pk *PublicKey) MessageCount() int {
	return len(pk.H) - 1
}

type SecretKey struct {
	X      *curve.Scalar
	Public *PublicKey
}

// GenerateKey samples a key for signing l messages.
func GenerateKey(rand io.Reader, l int) (*SecretKey, error) {
	if l < 1 {
		return nil, fmt.Errorf("%w: l = %d", ErrMessageCount, l)
	}
	x := sample.ScalarUnit(rand)
	h := make([]*curve.G1, l+1)
	for i := range h {
		h[i] = sample.ScalarUnit(rand).ActOnBase()
	}
	return &SecretKey{X: x, Public: &PublicKey{X: x.ActOnBaseG2(), H: h}}, nil
}

// ComputeB returns g₁ + Σ Hᵢ⋅mᵢ + Hₗ⋅s.
func ComputeB(h []*curve.G1, messages []*curve.Scalar, s *curve.Scalar) (*curve.G1, error) {
	if len(h) != len(messages)+1 {
		return nil, fmt.Errorf("%w: %d generators for %d messages", ErrMessageCount, len(h), len(messages))
	}
	b := curve.G1Generator()
	for i, m := range messages {
		b = b.Add(m.Act(h[i]))
	}
	return b.Add(s.Act(h[len(messages)])), nil
}

// Sign produces a signature on messages.
func Sign(rand io.Reader, sk *SecretKey, messages []*curve.Scalar) (*Signature, error) {
	s := sample.Scalar(rand)
	b, err := ComputeB(sk.Public.H, messages, s)
	if err != nil {
		return nil, err
	}
	for {
		e := sample.Scalar(rand)
		xe := curve.NewScalar().Set(sk.X).Add(e)
		if xe.IsZero() {
			continue
		}
		return &Signature{A: xe.Invert().Act(b), E: e, S: s}, nil
	}
}

// Verify checks e(A, X + e⋅g₂) = e(B, g₂).
func Verify(pk *PublicKey, messages []*curve.Scalar, sig *Signature) error {
	if sig == nil || sig.A == nil || sig.E == nil || sig.S == nil {
		return ErrInvalidSignature
	}
	if sig.A.IsIdentity() {
		return ErrInvalidSignature
	}
	b, err := ComputeB(pk.H, messages, sig.S)
	if err != nil {
		return err
	}
	xe := pk.X.Add(sig.E.ActOnBaseG2())
	if !curve.PairingEqual(sig.A, xe, b, curve.G2Generator()) {
		return ErrInvalidSignature
	}
	return nil
}
