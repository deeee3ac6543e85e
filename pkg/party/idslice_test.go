package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDSlice_GetIndex(t *testing.T) {
	tests := []struct {
		name        string
		partyIDs    IDSlice
		requestedID ID
		want        int
	}{
		{"empty", IDSlice{}, 1, -1},
		{"first", Range(5), 1, 0},
		{"last", Range(5), 5, 4},
		{"missing", IDSlice{1, 3, 5}, 4, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.partyIDs.GetIndex(tt.requestedID))
		})
	}
}

func TestIDSlice_Valid(t *testing.T) {
	assert.True(t, Range(3).Valid())
	assert.True(t, NewIDSlice([]ID{4, 2, 9}).Valid())
	assert.False(t, IDSlice{0, 1}.Valid(), "0 is not a party index")
	assert.False(t, IDSlice{2, 2}.Valid(), "duplicates")
	assert.False(t, IDSlice{3, 1}.Valid(), "unsorted")
}

func TestIDSlice_Remove(t *testing.T) {
	ids := Range(4)
	assert.Equal(t, IDSlice{1, 2, 4}, ids.Remove(3))
	assert.Equal(t, Range(4), ids, "Remove must not modify the receiver")
}
