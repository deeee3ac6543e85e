package setbbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
)

// Three of five parties sign ten messages, twice from the same seed.
func TestScenario_ThreeOfFive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 3-of-5 scenario in short mode")
	}
	cfg := newConfig(t)
	messages := randomMessages(sample.Seeded(2024), 10)

	run := func() (*bbsplus.Signature, *Transcript) {
		src := test.Source(42)
		km, err := KeyGen(cfg, src, 5, 3, 10)
		require.NoError(t, err)
		transcript, err := Sign(cfg, src.Fork("sign"), km, messages)
		require.NoError(t, err)
		sig, err := Combine(cfg, transcript, messages)
		require.NoError(t, err)
		require.NoError(t, bbsplus.Verify(km.Public.BBSPlus(), messages, sig))
		return sig, transcript
	}
	sig1, transcript := run()
	sig2, _ := run()
	data1, err := sig1.MarshalBinary()
	require.NoError(t, err)
	data2, err := sig2.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, data1, data2, "same seed gives the same signature")
	test.CheckGolden(t, "three_of_five_seed42", sig1)

	mutated := append([]*curve.Scalar{}, messages...)
	mutated[4] = curve.NewScalar().Set(messages[4]).Negate()
	assert.Error(t, bbsplus.Verify(transcript.Public.BBSPlus(), mutated, sig1))
	_, err = Combine(cfg, transcript, mutated)
	assert.Error(t, err)
}

// Two of three parties sign four messages from a fixed seed.
func TestScenario_TwoOfThree(t *testing.T) {
	cfg := newConfig(t)
	messages := randomMessages(sample.Seeded(7), 4)

	src := test.Source(42)
	km, err := KeyGen(cfg, src, 3, 2, 4)
	require.NoError(t, err)
	transcript, err := Sign(cfg, src.Fork("sign"), km, messages)
	require.NoError(t, err)
	sig, err := Combine(cfg, transcript, messages)
	require.NoError(t, err)
	require.NoError(t, bbsplus.Verify(km.Public.BBSPlus(), messages, sig))
	test.CheckGolden(t, "two_of_three_seed42", sig)

	again, err := CombineWithKey(cfg, km.Public, transcript, messages)
	require.NoError(t, err)
	assert.True(t, sig.Equal(again), "combining twice gives the same signature")
}
