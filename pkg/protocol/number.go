package protocol

import (
	"encoding/binary"
	"io"
)

// RoundNumber is the index of the current round.
// 0 indicates the output round, 1 is the first round.
type RoundNumber uint16

// WriteTo implements io.WriterTo interface.
func (i RoundNumber) WriteTo(w io.Writer) (int64, error) {
	err := binary.Write(w, binary.BigEndian, uint16(i))
	return 2, err
}

// Domain implements hash.WriterToWithDomain.
func (RoundNumber) Domain() string {
	return "Round Number"
}
