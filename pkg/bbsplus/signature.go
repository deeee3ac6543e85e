package bbsplus

import (
	"fmt"

	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
)

const (
	sizeG1     = 48
	sizeScalar = 32
	// SignatureSize is the length of a marshalled Signature.
	SignatureSize = sizeG1 + 2*sizeScalar
)

// Signature is a BBS+ signature (A, e, s), independent of how it was produced.
type Signature struct {
	A *curve.G1
	E *curve.Scalar
	S *curve.Scalar
}

// MarshalBinary returns A ‖ e ‖ s.
func (sig *Signature) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, SignatureSize)
	for _, part := range []interface{ MarshalBinary() ([]byte, error) }{sig.A, sig.E, sig.S} {
		b, err := part.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func (sig *Signature) UnmarshalBinary(data []byte) error {
	if len(data) != SignatureSize {
		return fmt.Errorf("bbsplus: invalid signature length %d", len(data))
	}
	a, e, s := curve.NewG1(), curve.NewScalar(), curve.NewScalar()
	if err := a.UnmarshalBinary(data[:sizeG1]); err != nil {
		return err
	}
	if err := e.UnmarshalBinary(data[sizeG1 : sizeG1+sizeScalar]); err != nil {
		return err
	}
	if err := s.UnmarshalBinary(data[sizeG1+sizeScalar:]); err != nil {
		return err
	}
	sig.A, sig.E, sig.S = a, e, s
	return nil
}

func (sig *Signature) Equal(other *Signature) bool {
	return sig.A.Equal(other.A) && sig.E.Equal(other.E) && sig.S.Equal(other.S)
}
