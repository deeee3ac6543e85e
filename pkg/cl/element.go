package cl

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/cronokirby/saferith"
)

// Element is a residue modulo N².
//
// Elements are immutable once created; group operations return new ones.
type Element struct {
	value *saferith.Nat
}

// Equal compares values, ignoring the announced length.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil || e.value == nil || other.value == nil {
		return false
	}
	return e.value.Big().Cmp(other.value.Big()) == 0
}

// MarshalBinary returns the minimal big-endian encoding of the residue.
func (e *Element) MarshalBinary() ([]byte, error) {
	if e == nil || e.value == nil {
		return nil, errors.New("cl: nil element")
	}
	return e.value.Big().Bytes(), nil
}

// UnmarshalBinary does not check membership, which is left to Group.Valid.
func (e *Element) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return errors.New("cl: empty element")
	}
	e.value = new(saferith.Nat).SetBytes(data)
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	b := e.value.Big().Bytes()
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(b)))
	n1, err := w.Write(length[:])
	if err != nil {
		return int64(n1), err
	}
	n2, err := w.Write(b)
	return int64(n1 + n2), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Element) Domain() string { return "cl.Element" }
