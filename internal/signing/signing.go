// Package signing holds what the SET-BBS+ and WMC24 signing protocols share:
// input checks, session setup, threshold decryption of a scalar and the final
// verification of the recombined signature.
package signing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
	"golang.org/x/sync/errgroup"
)

// CheckInput rejects a signing request before any cryptographic work.
func CheckInput(cfg *config.Config, public *keygen.Public, variant keygen.Variant, messages []*curve.Scalar) error {
	if cfg == nil || cfg.Group == nil {
		return fmt.Errorf("%w: missing configuration", protocol.ErrMalformedInput)
	}
	if public == nil {
		return fmt.Errorf("%w: missing key material", protocol.ErrMalformedInput)
	}
	if public.Variant != variant {
		return fmt.Errorf("%w: key generated for %v", protocol.ErrMalformedInput, public.Variant)
	}
	if err := public.Validate(cfg.Group); err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrMalformedInput, err)
	}
	if len(messages) != public.L {
		return fmt.Errorf("%w: got %d, key signs %d", protocol.ErrMessageCount, len(messages), public.L)
	}
	for i, m := range messages {
		if m == nil {
			return fmt.Errorf("%w: message %d is nil", protocol.ErrMalformedInput, i)
		}
	}
	return nil
}

// NewSessionID draws the identifier of a signing session.
func NewSessionID(src *sample.Source, protocolID string) ([]byte, error) {
	ssid := make([]byte, 32)
	if _, err := io.ReadFull(src.Fork(protocolID+"/ssid").Scalars(), ssid); err != nil {
		return nil, err
	}
	return ssid, nil
}

// NewSession returns the session of the quorum, bound to the public key material.
// Combine rebuilds the same session from a transcript.
func NewSession(cfg *config.Config, protocolID string, rounds protocol.RoundNumber, public *keygen.Public, ssid []byte) (*round.Session, error) {
	info := round.Info{
		ProtocolID:       protocolID,
		FinalRoundNumber: rounds,
		PartyIDs:         public.Quorum,
		Threshold:        public.T,
	}
	return round.NewSession(info, ssid, cfg.Pool, cfg.Log, cfg.Group, public)
}

// PartyRand returns the randomness of one party in one round.
func PartyRand(src *sample.Source, protocolID string, number protocol.RoundNumber, id party.ID) *sample.Source {
	return src.Fork(fmt.Sprintf("%s/%d/%d", protocolID, number, id))
}

var errNotMultiple = errors.New("decrypted value is not a multiple of the scale")

// RecoverScalar extracts m from f^{scale⋅m} and reduces it mod q.
//
// The recovered integer lies in (-N/2, N/2], which the range check of keygen
// guarantees to hold the plaintexts of both protocols.
func RecoverScalar(group cl.Group, fm *cl.Element, scale *big.Int) (*curve.Scalar, error) {
	m, err := group.DLogF(fm)
	if err != nil {
		return nil, err
	}
	q, r := new(big.Int).QuoRem(m.Big(), scale, new(big.Int))
	if r.Sign() != 0 {
		return nil, errNotMultiple
	}
	return curve.ScalarFromInt(new(saferith.Int).SetBig(q, q.BitLen()+1)), nil
}

// Decrypt combines the partial decryptions c1^{dᵢ} of a ciphertext into its plaintext,
// c2^{scale}⋅Π pdᵢ⁻¹ = f^{scale⋅m}.
func Decrypt(group cl.Group, ct *cl.Ciphertext, partials []*cl.Element, scale *big.Int) (*curve.Scalar, error) {
	acc := group.Identity()
	for _, pd := range partials {
		acc = group.Compose(acc, pd)
	}
	scaleInt := new(saferith.Int).SetBig(scale, scale.BitLen()+1)
	return RecoverScalar(group, group.Compose(group.Exp(ct.C2, scaleInt), group.Inverse(acc)), scale)
}

// VerifyAll runs verify for every id concurrently, and returns the error of the smallest failing id.
func VerifyAll(ids party.IDSlice, verify func(id party.ID) error) error {
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			errs[i] = verify(id)
			return errs[i]
		})
	}
	if g.Wait() == nil {
		return nil
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Finish verifies the recombined signature against the joint key.
func Finish(s *round.Session, public *keygen.Public, messages []*curve.Scalar, sig *bbsplus.Signature) (*bbsplus.Signature, error) {
	log := s.Logger(s.FinalRoundNumber() + 1)
	if err := bbsplus.Verify(public.BBSPlus(), messages, sig); err != nil {
		log.Error().Err(err).Msg("recombined signature does not verify")
		return nil, fmt.Errorf("%w: %v", protocol.ErrSignatureInvalid, err)
	}
	log.Info().Msg("signature produced")
	return sig, nil
}

// Filter runs verify for every id concurrently, and splits ids into the accepted and the excluded ones.
func Filter(ids party.IDSlice, verify func(id party.ID) bool) (accepted, excluded party.IDSlice) {
	ok := make([]bool, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			ok[i] = verify(id)
			return nil
		})
	}
	_ = g.Wait()
	for i, id := range ids {
		if ok[i] {
			accepted = append(accepted, id)
		} else {
			excluded = append(excluded, id)
		}
	}
	return accepted, excluded
}

// CheckPublic rejects a transcript whose key material differs from the expected one.
func CheckPublic(expected, got *keygen.Public) error {
	if expected == nil || got == nil {
		return fmt.Errorf("%w: missing key material", protocol.ErrMalformedInput)
	}
	a, b := hash.New(), hash.New()
	if err := a.WriteAny(expected); err != nil {
		return err
	}
	if err := b.WriteAny(got); err != nil {
		return err
	}
	if !bytes.Equal(a.Sum(), b.Sum()) {
		return fmt.Errorf("%w: transcript was produced under another key", protocol.ErrMalformedInput)
	}
	return nil
}
