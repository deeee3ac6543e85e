package zksch

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
)

func TestSchPass(t *testing.T) {
	x := sample.ScalarUnit(rand.Reader)
	public := Public{X: x.ActOnBase()}

	proof, err := NewProof(hash.New(), public, Private{X: x}, rand.Reader)
	require.NoError(t, err)
	assert.True(t, proof.Verify(hash.New(), public), "failed passing test")

	out, err := cbor.Marshal(proof)
	require.NoError(t, err)
	proof2 := Empty()
	require.NoError(t, cbor.Unmarshal(out, proof2))
	assert.True(t, proof2.Verify(hash.New(), public))
}

func TestSchG2Pass(t *testing.T) {
	x := sample.ScalarUnit(rand.Reader)
	public := PublicG2{X: x.ActOnBaseG2()}

	proof, err := NewProofG2(hash.New(), public, Private{X: x}, rand.Reader)
	require.NoError(t, err)
	assert.True(t, proof.VerifyG2(hash.New(), public))
	assert.False(t, proof.Verify(hash.New(), Public{X: x.ActOnBase()}), "a G2 proof is not a G1 proof")
}

func TestSchFail(t *testing.T) {
	x := sample.ScalarUnit(rand.Reader)
	public := Public{X: x.ActOnBase()}
	proof, err := NewProof(hash.New(), public, Private{X: sample.ScalarUnit(rand.Reader)}, rand.Reader)
	require.NoError(t, err)
	assert.False(t, proof.Verify(hash.New(), public))

	proof, err = NewProof(hash.New(), Public{X: curve.NewG1()}, Private{X: curve.NewScalar()}, rand.Reader)
	require.NoError(t, err)
	assert.False(t, proof.Verify(hash.New(), Public{X: curve.NewG1()}), "proof should not accept identity point")

	proof, err = NewProof(hash.New(), public, Private{X: x}, rand.Reader)
	require.NoError(t, err)
	proof.Z.Add(curve.NewScalar().SetUint64(1))
	assert.False(t, proof.Verify(hash.New(), public))
	assert.False(t, (&Proof{}).Verify(hash.New(), public))
}
