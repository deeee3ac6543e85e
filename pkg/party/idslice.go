package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a sorted list of distinct party IDs.
type IDSlice []ID

// NewIDSlice returns a sorted copy of partyIDs.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := IDSlice(partyIDs).Copy()
	ids.sort()
	return ids
}

// Range returns the IDs 1, …, n.
func Range(n int) IDSlice {
	ids := make(IDSlice, n)
	for i := range ids {
		ids[i] = ID(i + 1)
	}
	return ids
}

func (partyIDs IDSlice) Len() int           { return len(partyIDs) }
func (partyIDs IDSlice) Less(i, j int) bool { return partyIDs[i] < partyIDs[j] }
func (partyIDs IDSlice) Swap(i, j int)      { partyIDs[i], partyIDs[j] = partyIDs[j], partyIDs[i] }

func (partyIDs IDSlice) sort() { sort.Sort(partyIDs) }

// Valid returns true if the IDs are non-zero, sorted and contain no duplicates.
func (partyIDs IDSlice) Valid() bool {
	for i, id := range partyIDs {
		if !id.Valid() {
			return false
		}
		if i > 0 && partyIDs[i-1] >= id {
			return false
		}
	}
	return true
}

// Contains returns true if partyIDs contains id.
// Assumes that partyIDs is sorted.
func (partyIDs IDSlice) Contains(id ID) bool {
	_, ok := partyIDs.search(id)
	return ok
}

// GetIndex returns the index of id in partyIDs.
// If no index was found, return -1.
func (partyIDs IDSlice) GetIndex(id ID) int {
	if idx, ok := partyIDs.search(id); ok {
		return idx
	}
	return -1
}

func (partyIDs IDSlice) search(x ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= x })
	if index >= 0 && index < len(partyIDs) && partyIDs[index] == x {
		return index, true
	}
	return 0, false
}

// Copy returns an identical copy of the received.
func (partyIDs IDSlice) Copy() IDSlice {
	a := make(IDSlice, len(partyIDs))
	copy(a, partyIDs)
	return a
}

// Remove finds id in partyIDs and returns a copy of the slice without it.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	newPartyIDs := make(IDSlice, 0, len(partyIDs))
	for _, partyID := range partyIDs {
		if partyID != id {
			newPartyIDs = append(newPartyIDs, partyID)
		}
	}
	return newPartyIDs
}

// WriteTo implements io.WriterTo interface.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	if partyIDs == nil {
		return 0, io.ErrUnexpectedEOF
	}
	// write length as 32 bit
	if err := binary.Write(w, binary.BigEndian, uint32(len(partyIDs))); err != nil {
		return 0, err
	}
	total := int64(4)
	for _, id := range partyIDs {
		n, err := id.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string {
	return "IDSlice"
}
