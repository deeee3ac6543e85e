package zkdl

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
)

func TestDL(t *testing.T) {
	group := test.Group()
	x := new(saferith.Int).SetNat(sample.Below(rand.Reader, group.EncryptRandomnessBound()))
	public := Public{P: group.PowerOfH(x), Bits: zk.RandomnessBits(group)}

	proof, err := NewProof(group, hash.New(), public, Private{X: x}, rand.Reader)
	require.NoError(t, err)
	assert.True(t, proof.Verify(group, hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := Empty()
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(group, hash.New(), public))

	assert.False(t, proof.Verify(group, hash.New().Fork([]byte("other")), public), "bound to the hash state")
}

func TestDL_Fail(t *testing.T) {
	group := test.Group()
	x := new(saferith.Int).SetNat(sample.Below(rand.Reader, group.EncryptRandomnessBound()))
	public := Public{P: group.PowerOfH(x), Bits: zk.RandomnessBits(group)}

	wrong := new(saferith.Int).SetNat(sample.Below(rand.Reader, group.EncryptRandomnessBound()))
	proof, err := NewProof(group, hash.New(), public, Private{X: wrong}, rand.Reader)
	require.NoError(t, err)
	assert.False(t, proof.Verify(group, hash.New(), public))

	proof, err = NewProof(group, hash.New(), public, Private{X: x}, rand.Reader)
	require.NoError(t, err)
	mutated := *proof
	mutated.E = curve.NewScalar().Set(proof.E).Add(curve.NewScalar().SetUint64(1))
	assert.False(t, mutated.Verify(group, hash.New(), public))

	mutated = *proof
	mutated.Z = new(saferith.Int).Add(proof.Z, new(saferith.Int).SetUint64(1), -1)
	assert.False(t, mutated.Verify(group, hash.New(), public))

	assert.False(t, (&Proof{}).Verify(group, hash.New(), public))
	assert.False(t, proof.Verify(group, hash.New(), Public{Bits: public.Bits}))
}
