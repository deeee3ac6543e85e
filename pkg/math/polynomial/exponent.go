package polynomial

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
)

// Exponent represents a polynomial whose coefficients are points of G1.
type Exponent struct {
	coefficients []*curve.G1
}

// NewPolynomialExponent generates an Exponent polynomial F(X) = [a₀ + a₁⋅X + … + aₜ⋅Xᵗ]•g₁.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	var p Exponent
	p.coefficients = make([]*curve.G1, len(polynomial.coefficients))
	for i, c := range polynomial.coefficients {
		p.coefficients[i] = c.ActOnBase()
	}
	return &p
}

// NewExponent wraps already computed coefficient commitments.
func NewExponent(coefficients []*curve.G1) *Exponent {
	return &Exponent{coefficients: coefficients}
}

// Evaluate returns F(index) using Horner's method.
func (p *Exponent) Evaluate(index *curve.Scalar) *curve.G1 {
	result := curve.NewG1()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// Bₙ₋₁ = [x]Bₙ  + Aₙ₋₁
		result = index.Act(result).Add(p.coefficients[i])
	}
	return result
}

func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

// Sum creates a new Exponent, by summing a slice of existing ones of equal degree.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	if len(polynomials) == 0 {
		return nil, errors.New("polynomial: nothing to sum")
	}
	summed := &Exponent{coefficients: append([]*curve.G1{}, polynomials[0].coefficients...)}
	for _, q := range polynomials[1:] {
		if len(q.coefficients) != len(summed.coefficients) {
			return nil, errors.New("polynomial: degree mismatch")
		}
		for i := range summed.coefficients {
			summed.coefficients[i] = summed.coefficients[i].Add(q.coefficients[i])
		}
	}
	return summed, nil
}

// Constant returns the constant coefficient of the polynomial 'in the exponent'
func (p *Exponent) Constant() *curve.G1 {
	return p.coefficients[0]
}

func (p *Exponent) Coefficients() []*curve.G1 {
	return p.coefficients
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Exponent) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, uint32(len(p.coefficients))); err != nil {
		return 0, err
	}
	nAll := int64(4)
	for _, c := range p.coefficients {
		n, err := c.WriteTo(w)
		nAll += n
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Exponent) Domain() string { return "Exponent" }
