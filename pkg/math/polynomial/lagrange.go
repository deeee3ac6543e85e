package polynomial

import (
	"math/big"

	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
)

// Lagrange returns the Lagrange coefficients at 0 for all parties in the interpolation domain.
//
//	                 x₀ ⋅⋅⋅ xₖ
//	lⱼ(0) = ---------------------------------------------------
//	        xⱼ⋅(x₀ - xⱼ)⋅⋅⋅(xⱼ₋₁ - xⱼ)⋅(xⱼ₊₁ - xⱼ)⋅⋅⋅(xₖ - xⱼ)
func Lagrange(interpolationDomain party.IDSlice) map[party.ID]*curve.Scalar {
	numerator := curve.NewScalar().SetUint64(1)
	for _, id := range interpolationDomain {
		numerator.Mul(id.Scalar())
	}

	coefficients := make(map[party.ID]*curve.Scalar, len(interpolationDomain))
	for _, j := range interpolationDomain {
		xJ := j.Scalar()
		denominator := curve.NewScalar().SetUint64(1)
		for _, i := range interpolationDomain {
			if i == j {
				denominator.Mul(xJ)
				continue
			}
			denominator.Mul(i.Scalar().Sub(xJ))
		}
		coefficients[j] = denominator.Invert().Mul(numerator)
	}
	return coefficients
}

// Factorial returns n!.
func Factorial(n int) *big.Int {
	return new(big.Int).MulRange(1, int64(n))
}

// LagrangeInt returns Δ⋅lⱼ(0) as an exact integer, where Δ = n! for any n ≥ max(domain).
//
// Every denominator ∏(xᵢ - xⱼ) divides Δ, which is what makes the scaled coefficient integral.
func LagrangeInt(interpolationDomain party.IDSlice, j party.ID, delta *big.Int) *big.Int {
	num := new(big.Int).Set(delta)
	den := big.NewInt(1)
	for _, i := range interpolationDomain {
		if i == j {
			continue
		}
		num.Mul(num, big.NewInt(int64(i)))
		den.Mul(den, big.NewInt(int64(i)-int64(j)))
	}
	return num.Quo(num, den)
}
