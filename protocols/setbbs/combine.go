package setbbs

import (
	"fmt"

	"github.com/taurusgroup/threshold-bbs/internal/signing"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
)

// CombineWithKey is Combine for a caller holding the expected key material.
// A transcript carrying any other key is rejected with protocol.ErrMalformedInput.
func CombineWithKey(cfg *config.Config, public *keygen.Public, transcript *Transcript, messages []*curve.Scalar) (*bbsplus.Signature, error) {
	if transcript == nil {
		return nil, fmt.Errorf("setbbs: %w: missing transcript", protocol.ErrMalformedInput)
	}
	if err := signing.CheckPublic(public, transcript.Public); err != nil {
		return nil, fmt.Errorf("setbbs: %w", err)
	}
	return Combine(cfg, transcript, messages)
}

// Combine verifies a transcript and recovers the BBS+ signature on messages.
//
// No signature is returned unless it verifies against the joint key carried by the
// transcript. That key is taken as given: callers that know which key to expect
// use CombineWithKey.
func Combine(cfg *config.Config, transcript *Transcript, messages []*curve.Scalar) (*bbsplus.Signature, error) {
	if err := transcript.validate(); err != nil {
		return nil, fmt.Errorf("setbbs: %w", err)
	}
	public := transcript.Public
	if err := signing.CheckInput(cfg, public, keygen.SetBBS, messages); err != nil {
		return nil, fmt.Errorf("setbbs: %w", err)
	}
	s, err := signing.NewSession(cfg, protocolID, rounds, public, transcript.SessionID)
	if err != nil {
		return nil, fmt.Errorf("setbbs: %w", err)
	}
	group := cfg.Group

	err = signing.VerifyAll(public.Quorum, func(id party.ID) error {
		if !verifyRound1(s, group, public, id, transcript.Round1[id]) {
			return protocol.Error{RoundNumber: 1, Culprit: id, Err: fmt.Errorf("re-randomisation: %w", protocol.ErrProofFailed)}
		}
		if !group.Valid(transcript.Round2[id].PD) {
			return protocol.Error{RoundNumber: 2, Culprit: id, Err: cl.ErrNotInSubgroup}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e, sBlind, beta := curve.NewScalar(), curve.NewScalar(), curve.NewScalar()
	b := curve.NewG1()
	pd := group.Identity()
	for _, id := range public.Quorum {
		r1, r2 := transcript.Round1[id], transcript.Round2[id]
		e.Add(r1.E)
		sBlind.Add(r1.S)
		beta.Add(r2.Z)
		b = b.Add(r2.B)
		pd = group.Compose(pd, r2.PD)
	}

	// y = γ⋅x + ρ
	y, err := signing.RecoverScalar(group, pd, public.ScaleInt())
	if err != nil {
		return nil, fmt.Errorf("setbbs: %w: %v", protocol.ErrSignatureInvalid, err)
	}
	// γ⋅(x + e) = y + Σ zᵢ
	denominator := y.Add(beta)
	if denominator.IsZero() {
		return nil, fmt.Errorf("setbbs: %w: zero denominator", protocol.ErrSignatureInvalid)
	}
	sig := &bbsplus.Signature{
		A: denominator.Invert().Act(b),
		E: e,
		S: sBlind,
	}
	return signing.Finish(s, public, messages, sig)
}
