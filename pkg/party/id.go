package party

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
)

// ByteSize is the number of bytes required to store an ID.
const ByteSize = 2

// MAX is the largest index a party can have.
const MAX = (1 << (ByteSize * 8)) - 1

// ID is the index of a party, in [1, n].
//
// It is used both as an identity and as the evaluation point of the sharing polynomials,
// which is why 0 is never a valid ID.
type ID uint16

// Scalar returns the ID as a curve.Scalar.
func (id ID) Scalar() *curve.Scalar {
	return curve.NewScalar().SetUint64(uint64(id))
}

// Int returns the ID as a saferith.Int, for use as an exponent.
func (id ID) Int() *saferith.Int {
	return new(saferith.Int).SetUint64(uint64(id))
}

// Valid returns true if the ID is non-zero.
func (id ID) Valid() bool {
	return id != 0
}

// String returns a base 10 representation of ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// WriteTo implements io.WriterTo interface.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, ByteSize)
	binary.BigEndian.PutUint16(buf, uint16(id))
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string {
	return "ID"
}
