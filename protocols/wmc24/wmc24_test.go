package wmc24

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/internal/signing"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
	zkclel "github.com/taurusgroup/threshold-bbs/pkg/zk/clel"
	zkencs "github.com/taurusgroup/threshold-bbs/pkg/zk/encs"
	zkpdcl "github.com/taurusgroup/threshold-bbs/pkg/zk/pdcl"
	zkpdel "github.com/taurusgroup/threshold-bbs/pkg/zk/pdel"
)

func newConfig(t *testing.T) *config.Config {
	cfg := config.New(test.Group())
	cfg.Pool = pool.NewPool(0)
	t.Cleanup(cfg.Pool.TearDown)
	return cfg
}

func randomMessages(src *sample.Source, l int) []*curve.Scalar {
	messages := make([]*curve.Scalar, l)
	for i := range messages {
		messages[i] = sample.Scalar(src.Scalars())
	}
	return messages
}

// signWithRule runs a signing session where rule rewrites broadcasts before delivery.
func signWithRule(t *testing.T, cfg *config.Config, src *sample.Source, km *keygen.KeyMaterial, messages []*curve.Scalar, rule protocol.RuleFunc) (*Transcript, error) {
	ssid, err := signing.NewSessionID(src, protocolID)
	require.NoError(t, err)
	s, err := signing.NewSession(cfg, protocolID, rounds, km.Public, ssid)
	require.NoError(t, err)
	return sign(s.WithRule(rule), cfg.Group, src, km, messages, ssid)
}

func TestSignCombine(t *testing.T) {
	cfg := newConfig(t)
	for _, tc := range []struct {
		name    string
		n, t, l int
	}{
		{"n-of-n", 3, 0, 2},
		{"single party", 1, 0, 1},
		{"t-of-n", 3, 2, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := test.Source(uint64(tc.n*100 + tc.t*10 + tc.l))
			km, err := KeyGen(cfg, src, tc.n, tc.t, tc.l)
			require.NoError(t, err)
			messages := randomMessages(src.Fork("messages"), tc.l)

			transcript, err := Sign(cfg, src.Fork("sign"), km, messages)
			require.NoError(t, err)
			sig, err := Combine(cfg, transcript, messages)
			require.NoError(t, err)
			require.NoError(t, bbsplus.Verify(km.Public.BBSPlus(), messages, sig))

			mutated := append([]*curve.Scalar{}, messages...)
			mutated[tc.l-1] = curve.NewScalar().Set(messages[tc.l-1]).Add(curve.NewScalar().SetUint64(1))
			assert.ErrorIs(t, bbsplus.Verify(km.Public.BBSPlus(), mutated, sig), bbsplus.ErrInvalidSignature)
		})
	}
}

func TestSign_Exclusion(t *testing.T) {
	cfg := newConfig(t)
	src := test.Source(11)
	km, err := KeyGen(cfg, src, 3, 0, 2)
	require.NoError(t, err)
	messages := randomMessages(src, 2)

	for _, tc := range []struct {
		name string
		rule protocol.RuleFunc
	}{
		{"round 1", func(number protocol.RoundNumber, from party.ID, content any) {
			if msg, ok := content.(*Broadcast1); ok && from == 2 {
				msg.ProofS = zkencs.Empty()
			}
		}},
		{"round 3", func(number protocol.RoundNumber, from party.ID, content any) {
			if msg, ok := content.(*Broadcast3); ok && from == 1 {
				msg.Proof = zkclel.Empty()
			}
		}},
		{"rounds 1 and 3", func(number protocol.RoundNumber, from party.ID, content any) {
			switch msg := content.(type) {
			case *Broadcast1:
				if from == 3 {
					msg.ProofE = zkencs.Empty()
				}
			case *Broadcast3:
				if from == 3 {
					msg.Proof = zkclel.Empty()
				}
			}
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			transcript, err := signWithRule(t, cfg, src.Fork(tc.name), km, messages, tc.rule)
			require.NoError(t, err)
			sig, err := Combine(cfg, transcript, messages)
			require.NoError(t, err)
			assert.NoError(t, bbsplus.Verify(km.Public.BBSPlus(), messages, sig))
		})
	}
}

func TestSign_EveryoneExcluded(t *testing.T) {
	cfg := newConfig(t)
	src := test.Source(12)
	km, err := KeyGen(cfg, src, 2, 0, 1)
	require.NoError(t, err)

	_, err = signWithRule(t, cfg, src, km, randomMessages(src, 1), func(number protocol.RoundNumber, from party.ID, content any) {
		if msg, ok := content.(*Broadcast1); ok {
			msg.ProofE = zkencs.Empty()
		}
	})
	assert.ErrorIs(t, err, protocol.ErrNotEnoughParties)
}

func TestSign_PartialDecryptionFailure(t *testing.T) {
	cfg := newConfig(t)
	src := test.Source(13)
	km, err := KeyGen(cfg, src, 3, 2, 1)
	require.NoError(t, err)
	messages := randomMessages(src, 1)

	// partial decryptions require every member of the quorum
	for _, tc := range []struct {
		name    string
		number  protocol.RoundNumber
		culprit party.ID
		rule    protocol.RuleFunc
	}{
		{"round 2", 2, 1, func(number protocol.RoundNumber, from party.ID, content any) {
			if msg, ok := content.(*Broadcast2); ok && from == 1 {
				msg.ProofS = zkpdcl.Empty()
			}
		}},
		{"round 4 ElGamal", 4, 2, func(number protocol.RoundNumber, from party.ID, content any) {
			if msg, ok := content.(*Broadcast4); ok && from == 2 {
				msg.ProofEG = zkpdel.Empty()
			}
		}},
		{"round 4 group", 4, 1, func(number protocol.RoundNumber, from party.ID, content any) {
			if msg, ok := content.(*Broadcast4); ok && from == 1 {
				msg.PD = cfg.Group.Compose(msg.PD, cfg.Group.PowerOfF(curve.NewScalar().SetUint64(1).Int()))
			}
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			transcript, err := signWithRule(t, cfg, src.Fork(tc.name), km, messages, tc.rule)
			assert.Nil(t, transcript)
			require.ErrorIs(t, err, protocol.ErrProofFailed)
			var protocolErr protocol.Error
			require.ErrorAs(t, err, &protocolErr)
			assert.Equal(t, tc.culprit, protocolErr.Culprit)
			assert.Equal(t, tc.number, protocolErr.RoundNumber)
		})
	}
}

func TestTranscript_Marshal(t *testing.T) {
	cfg := newConfig(t)
	src := test.Source(14)
	km, err := KeyGen(cfg, src, 2, 0, 1)
	require.NoError(t, err)
	messages := randomMessages(src, 1)
	transcript, err := Sign(cfg, src, km, messages)
	require.NoError(t, err)

	data, err := cbor.Marshal(transcript)
	require.NoError(t, err)
	var decoded Transcript
	require.NoError(t, cbor.Unmarshal(data, &decoded))

	sig1, err := Combine(cfg, transcript, messages)
	require.NoError(t, err)
	sig2, err := Combine(cfg, &decoded, messages)
	require.NoError(t, err)
	assert.True(t, sig1.Equal(sig2))
}

func TestSign_InvalidInput(t *testing.T) {
	cfg := newConfig(t)
	src := test.Source(15)
	km, err := KeyGen(cfg, src, 2, 0, 2)
	require.NoError(t, err)

	_, err = Sign(cfg, src, km, randomMessages(src, 1))
	assert.ErrorIs(t, err, protocol.ErrMessageCount)
	_, err = Sign(cfg, nil, km, randomMessages(src, 2))
	assert.ErrorIs(t, err, protocol.ErrMalformedInput)

	other, err := keygen.Generate(cfg, src, 2, 0, 2, keygen.SetBBS)
	require.NoError(t, err)
	_, err = Sign(cfg, src, other, randomMessages(src, 2))
	assert.ErrorIs(t, err, protocol.ErrMalformedInput)

	_, err = Combine(cfg, nil, randomMessages(src, 2))
	assert.ErrorIs(t, err, protocol.ErrMalformedInput)
}

func TestCombine_TamperedTranscript(t *testing.T) {
	cfg := newConfig(t)
	src := test.Source(16)
	km, err := KeyGen(cfg, src, 2, 0, 1)
	require.NoError(t, err)
	messages := randomMessages(src, 1)
	transcript, err := Sign(cfg, src, km, messages)
	require.NoError(t, err)

	// another session identifier invalidates every contribution
	tampered := *transcript
	tampered.SessionID = []byte("other session")
	_, err = Combine(cfg, &tampered, messages)
	assert.ErrorIs(t, err, protocol.ErrNotEnoughParties)

	// a wrong ElGamal partial decryption is caught by its proof
	tampered = *transcript
	tampered.Round4 = map[party.ID]*Broadcast4{}
	for id, b := range transcript.Round4 {
		tampered.Round4[id] = b
	}
	b := *transcript.Round4[2]
	b.PDEG = b.PDEG.Add(curve.NewScalar().SetUint64(1).ActOnBase())
	tampered.Round4[2] = &b
	_, err = Combine(cfg, &tampered, messages)
	require.ErrorIs(t, err, protocol.ErrProofFailed)
	var protocolErr protocol.Error
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, party.ID(2), protocolErr.Culprit)
}

func TestCombineWithKey(t *testing.T) {
	cfg := newConfig(t)
	src := test.Source(17)
	km, err := KeyGen(cfg, src, 2, 0, 1)
	require.NoError(t, err)
	other, err := KeyGen(cfg, src.Fork("other"), 2, 0, 1)
	require.NoError(t, err)
	messages := randomMessages(src, 1)
	transcript, err := Sign(cfg, src.Fork("sign"), km, messages)
	require.NoError(t, err)

	sig, err := CombineWithKey(cfg, km.Public, transcript, messages)
	require.NoError(t, err)
	assert.NoError(t, bbsplus.Verify(km.Public.BBSPlus(), messages, sig))

	// the transcript is self-consistent, only the expected key tells it apart
	_, err = CombineWithKey(cfg, other.Public, transcript, messages)
	assert.ErrorIs(t, err, protocol.ErrMalformedInput)
	_, err = CombineWithKey(cfg, km.Public, nil, messages)
	assert.ErrorIs(t, err, protocol.ErrMalformedInput)
}
