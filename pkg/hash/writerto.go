package hash

import (
	"bytes"
	"encoding/binary"
	"io"
)

// WriterToWithDomain is a value that serialises itself under a domain label.
//
// Two types with the same encoding hash differently as long as their domains differ.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain must be unique among the types written to a Hash.
	Domain() string
}

// writeWithDomain frames object as len(domain) ‖ domain ‖ len(data) ‖ data,
// with 32 bit big endian lengths.
func writeWithDomain(w io.Writer, object WriterToWithDomain) error {
	var data bytes.Buffer
	if _, err := object.WriteTo(&data); err != nil {
		return err
	}
	domain := object.Domain()
	var frame []byte
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(domain)))
	frame = append(frame, domain...)
	frame = binary.BigEndian.AppendUint32(frame, uint32(data.Len()))
	if _, err := w.Write(frame); err != nil {
		return err
	}
	_, err := w.Write(data.Bytes())
	return err
}

// BytesWithDomain labels raw bytes with a domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}
