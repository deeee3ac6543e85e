package wmc24

import (
	"fmt"

	"github.com/taurusgroup/threshold-bbs/internal/signing"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
)

// CombineWithKey is Combine for a caller holding the expected key material.
// A transcript carrying any other key is rejected with protocol.ErrMalformedInput.
func CombineWithKey(cfg *config.Config, public *keygen.Public, transcript *Transcript, messages []*curve.Scalar) (*bbsplus.Signature, error) {
	if transcript == nil {
		return nil, fmt.Errorf("wmc24: %w: missing transcript", protocol.ErrMalformedInput)
	}
	if err := signing.CheckPublic(public, transcript.Public); err != nil {
		return nil, fmt.Errorf("wmc24: %w", err)
	}
	return Combine(cfg, transcript, messages)
}

// Combine verifies a transcript and recovers the BBS+ signature on messages.
//
// The joint key carried by the transcript is taken as given: callers that know which
// key to expect use CombineWithKey.
//
// Contributions to rounds 1 and 3 are filtered exactly as the signers did,
// so the same parties end up excluded.
func Combine(cfg *config.Config, transcript *Transcript, messages []*curve.Scalar) (*bbsplus.Signature, error) {
	if err := transcript.validate(); err != nil {
		return nil, fmt.Errorf("wmc24: %w", err)
	}
	public := transcript.Public
	if err := signing.CheckInput(cfg, public, keygen.WMC24, messages); err != nil {
		return nil, fmt.Errorf("wmc24: %w", err)
	}
	s, err := signing.NewSession(cfg, protocolID, rounds, public, transcript.SessionID)
	if err != nil {
		return nil, fmt.Errorf("wmc24: %w", err)
	}
	group := cfg.Group
	log := s.Logger(rounds + 1)

	j := &joint{}
	if err = j.fold1(s, group, public, transcript.Round1, log); err != nil {
		return nil, err
	}
	if err = j.fold2(s, group, public, transcript.Round2, messages); err != nil {
		return nil, err
	}
	if err = j.fold3(s, group, public, transcript.Round3, log); err != nil {
		return nil, err
	}
	if err = j.fold4(s, group, public, transcript.Round4); err != nil {
		return nil, err
	}
	sig := &bbsplus.Signature{A: j.a, E: j.e, S: j.s}
	return signing.Finish(s, public, messages, sig)
}
