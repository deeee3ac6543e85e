package keygen

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/internal/test"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	zkdl "github.com/taurusgroup/threshold-bbs/pkg/zk/dl"
)

func newConfig(t *testing.T) *config.Config {
	cfg := config.New(test.Group())
	cfg.Pool = pool.NewPool(0)
	t.Cleanup(cfg.Pool.TearDown)
	return cfg
}

// decryptX threshold decrypts Enc(x) with the shares of the quorum, and removes the scale.
func decryptX(t *testing.T, km *KeyMaterial) *curve.Scalar {
	group := test.Group()
	p := km.Public
	d := new(big.Int)
	for _, id := range p.Quorum {
		require.NotNil(t, km.Secrets[id].Decryption)
		d.Add(d, km.Secrets[id].Decryption.Big())
	}
	negD := new(saferith.Int).SetBig(d, d.BitLen()+1).Neg(1)
	scale := new(saferith.Int).SetNat(p.Scale)
	fm := group.Compose(group.Exp(p.EncryptedX.C2, scale), group.Exp(p.EncryptedX.C1, negD))
	m, err := group.DLogF(fm)
	require.NoError(t, err)
	q, r := new(big.Int).QuoRem(m.Big(), p.ScaleInt(), new(big.Int))
	require.Equal(t, 0, r.Sign(), "plaintext is a multiple of the scale")
	return curve.NewScalar().SetBig(q)
}

func TestGenerate(t *testing.T) {
	group := test.Group()
	cfg := newConfig(t)
	for _, tc := range []struct {
		name    string
		n, t, l int
		variant Variant
	}{
		{"SET-BBS+ n-of-n", 3, 0, 2, SetBBS},
		{"SET-BBS+ t-of-n", 4, 2, 2, SetBBS},
		{"WMC24 n-of-n", 2, 0, 1, WMC24},
		{"WMC24 t-of-n", 4, 3, 3, WMC24},
	} {
		t.Run(tc.name, func(t *testing.T) {
			km, err := Generate(cfg, test.Source(1), tc.n, tc.t, tc.l, tc.variant)
			require.NoError(t, err)
			p := km.Public
			require.NoError(t, p.Validate(group))
			assert.Len(t, p.H, tc.l+1)
			assert.Len(t, km.Secrets, tc.n)

			x := curve.NewScalar()
			for _, id := range party.Range(tc.n) {
				xi := km.Secrets[id].Signing
				assert.True(t, xi.ActOnBaseG2().Equal(p.SigningShares[id]))
				x.Add(xi)
			}
			assert.True(t, x.ActOnBaseG2().Equal(p.X))
			assert.True(t, decryptX(t, km).Equal(x), "Enc(x) decrypts to x")

			for _, id := range p.Quorum {
				assert.True(t, group.PowerOfH(km.Secrets[id].Decryption).Equal(p.EncryptionShares[id]))
			}

			if tc.variant == WMC24 {
				k := curve.NewScalar()
				for _, id := range p.Quorum {
					ki := km.Secrets[id].ElGamal
					assert.True(t, ki.ActOnBase().Equal(p.ElGamalShares[id]))
					k.Add(ki)
				}
				assert.True(t, k.ActOnBase().Equal(p.ElGamalKey))
			} else {
				assert.Nil(t, p.ElGamalKey)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := newConfig(t)
	km1, err := Generate(cfg, test.Source(7), 3, 2, 2, SetBBS)
	require.NoError(t, err)
	km2, err := Generate(cfg, test.Source(7), 3, 2, 2, SetBBS)
	require.NoError(t, err)
	km3, err := Generate(cfg, test.Source(8), 3, 2, 2, SetBBS)
	require.NoError(t, err)

	b1, err := km1.MarshalBinary()
	require.NoError(t, err)
	b2, err := km2.MarshalBinary()
	require.NoError(t, err)
	b3, err := km3.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(b1, b2))
	assert.False(t, bytes.Equal(b1, b3))

	var decoded KeyMaterial
	require.NoError(t, decoded.UnmarshalBinary(b1))
	require.NoError(t, decoded.Public.Validate(test.Group()))
	assert.True(t, decoded.Public.EncryptedX.Equal(km1.Public.EncryptedX))
	assert.True(t, decoded.Public.X.Equal(km1.Public.X))
	assert.True(t, decryptX(t, &decoded).Equal(decryptX(t, km1)))
}

func TestGenerate_MalformedInput(t *testing.T) {
	cfg := newConfig(t)
	for _, tc := range []struct{ n, t, l int }{{0, 0, 1}, {3, 4, 1}, {3, -1, 1}, {3, 2, 0}} {
		_, err := Generate(cfg, test.Source(1), tc.n, tc.t, tc.l, SetBBS)
		assert.ErrorIs(t, err, protocol.ErrMalformedInput, "n=%d t=%d l=%d", tc.n, tc.t, tc.l)
	}
	_, err := Generate(cfg, test.Source(1), 3, 2, 1, Variant(9))
	assert.ErrorIs(t, err, protocol.ErrMalformedInput)

	// (100!)³ does not fit in the plaintext space of the test group
	_, err = Generate(cfg, test.Source(1), 100, 50, 1, SetBBS)
	assert.ErrorIs(t, err, ErrPlaintextRange)
	assert.True(t, errors.Is(err, cl.ErrPlaintextRange))
}

func TestGenerate_ProofFailure(t *testing.T) {
	cfg := newConfig(t)
	s, err := newSession(cfg, test.Source(1), 3, 0, 1, SetBBS)
	require.NoError(t, err)
	s.WithRule(protocol.RuleFunc(func(number protocol.RoundNumber, from party.ID, content any) {
		if msg, ok := content.(*broadcast1); ok && from == 2 {
			msg.Proof = zkdl.Empty()
		}
	}))
	_, err = generate(s, cfg.Group, test.Source(1), 1, SetBBS)
	require.ErrorIs(t, err, protocol.ErrProofFailed)
	var protocolErr protocol.Error
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, party.ID(2), protocolErr.Culprit)
	assert.Equal(t, protocol.RoundNumber(1), protocolErr.RoundNumber)
}

func TestGenerate_TamperedGenerators(t *testing.T) {
	cfg := newConfig(t)
	s, err := newSession(cfg, test.Source(1), 2, 0, 2, SetBBS)
	require.NoError(t, err)
	s.WithRule(protocol.RuleFunc(func(number protocol.RoundNumber, from party.ID, content any) {
		if msg, ok := content.(*broadcast2); ok && from == 1 {
			msg.Generators = msg.Generators[:1]
		}
	}))
	_, err = generate(s, cfg.Group, test.Source(1), 2, SetBBS)
	assert.ErrorIs(t, err, protocol.ErrMalformedInput)
}

func TestAgree(t *testing.T) {
	views := map[party.ID]any{1: []byte("a"), 2: []byte("a")}
	v, err := agree(3, views, party.Range(2), func(v any) ([]byte, error) { return digest(v) })
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)

	views[2] = []byte("b")
	_, err = agree(3, views, party.Range(2), func(v any) ([]byte, error) { return digest(v) })
	assert.ErrorIs(t, err, protocol.ErrInconsistentView)

	// a view that cannot be hashed is reported, not compared as empty
	views[2] = 42
	_, err = agree(3, views, party.Range(2), func(v any) ([]byte, error) { return digest(v) })
	require.Error(t, err)
	var protocolErr protocol.Error
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, party.ID(2), protocolErr.Culprit)
	assert.NotErrorIs(t, err, protocol.ErrInconsistentView)
}
