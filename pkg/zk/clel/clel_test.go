package zkclel

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/internal/elgamal"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
)

func statement() (Public, Private) {
	group := test.Group()
	below := func() *saferith.Int {
		return new(saferith.Int).SetNat(sample.Below(rand.Reader, group.EncryptRandomnessBound()))
	}
	pk := group.PowerOfH(below())
	ct := cl.Encrypt(group, pk, sample.Scalar(rand.Reader).Int(), below())

	gamma := sample.Scalar(rand.Reader)
	r := below()
	rho := sample.Scalar(rand.Reader)
	out := ct.Mul(group, gamma.Int()).ReRandomise(group, pk, r)

	b := sample.Scalar(rand.Reader).ActOnBase()
	ek := sample.Scalar(rand.Reader).ActOnBase()
	eg := elgamal.Encrypt(ek, gamma.Act(b), rho)

	public := Public{Ct: ct, Out: out, PK: pk, B: b, EK: ek, EG: eg}
	return public, Private{Gamma: gamma.Int(), R: r, Rho: rho}
}

func TestCLEL(t *testing.T) {
	group := test.Group()
	public, private := statement()

	proof, err := NewProof(group, hash.New(), public, private, rand.Reader)
	require.NoError(t, err)
	assert.True(t, proof.Verify(group, hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := Empty()
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(group, hash.New(), public))

	assert.False(t, proof.Verify(group, hash.New().Fork([]byte("other")), public), "bound to the hash state")
}

func TestCLEL_Fail(t *testing.T) {
	group := test.Group()
	public, private := statement()

	// a different γ on the curve side
	wrongEG := public
	wrongEG.EG = elgamal.Encrypt(public.EK, sample.Scalar(rand.Reader).Act(public.B), private.Rho)
	proof, err := NewProof(group, hash.New(), wrongEG, private, rand.Reader)
	require.NoError(t, err)
	assert.False(t, proof.Verify(group, hash.New(), wrongEG))

	proof, err = NewProof(group, hash.New(), public, private, rand.Reader)
	require.NoError(t, err)

	mutated := *proof
	mutated.ZRho = curve.NewScalar().Set(proof.ZRho).Add(curve.NewScalar().SetUint64(1))
	assert.False(t, mutated.Verify(group, hash.New(), public))

	mutated = *proof
	mutated.ZGamma = new(saferith.Int).Add(proof.ZGamma, new(saferith.Int).SetUint64(1), -1)
	assert.False(t, mutated.Verify(group, hash.New(), public))

	other := public
	other.B = sample.Scalar(rand.Reader).ActOnBase()
	assert.False(t, proof.Verify(group, hash.New(), other))

	assert.False(t, (&Proof{}).Verify(group, hash.New(), public))
}
