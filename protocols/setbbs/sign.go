package setbbs

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/internal/signing"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/pkg/sharing/zeroshare"
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
	zkdualmod "github.com/taurusgroup/threshold-bbs/pkg/zk/dualmod"
	zkrand "github.com/taurusgroup/threshold-bbs/pkg/zk/rand"
)

// signer is the private state of one member of the quorum.
type signer struct {
	e, s, gamma, rho *curve.Scalar
	// ct2 = Enc(x).c2^{γᵢ}⋅pk^{rᵢ}, never sent.
	ct2 *cl.Element
	msg *Broadcast1
}

type view1 struct {
	e, s *curve.Scalar
	ct1  *cl.Element
}

// Sign runs the signing protocol among the quorum of km on l messages.
func Sign(cfg *config.Config, src *sample.Source, km *keygen.KeyMaterial, messages []*curve.Scalar) (*Transcript, error) {
	if km == nil {
		return nil, fmt.Errorf("setbbs: %w: missing key material", protocol.ErrMalformedInput)
	}
	if err := signing.CheckInput(cfg, km.Public, keygen.SetBBS, messages); err != nil {
		return nil, fmt.Errorf("setbbs: %w", err)
	}
	if src == nil {
		return nil, fmt.Errorf("setbbs: %w: missing randomness", protocol.ErrMalformedInput)
	}
	ssid, err := signing.NewSessionID(src, protocolID)
	if err != nil {
		return nil, fmt.Errorf("setbbs: %w", err)
	}
	s, err := signing.NewSession(cfg, protocolID, rounds, km.Public, ssid)
	if err != nil {
		return nil, fmt.Errorf("setbbs: %w", err)
	}
	return sign(s, cfg.Group, src, km, messages, ssid)
}

func sign(s *round.Session, group cl.Group, src *sample.Source, km *keygen.KeyMaterial, messages []*curve.Scalar, ssid []byte) (*Transcript, error) {
	public := km.Public
	quorum := public.Quorum
	for _, id := range quorum {
		if km.Secrets[id] == nil || km.Secrets[id].Decryption == nil {
			return nil, fmt.Errorf("setbbs: %w: no decryption share for %v", protocol.ErrMalformedInput, id)
		}
	}

	// Round 1
	signers, err := round.Compute(s, 1, func(id party.ID) (*signer, error) {
		return round1(s, group, src, public, id)
	})
	if err != nil {
		return nil, err
	}
	sent1 := make(map[party.ID]*Broadcast1, len(signers))
	for id, st := range signers {
		sent1[id] = st.msg
	}
	received1, err := round.Broadcast(s, 1, sent1)
	if err != nil {
		return nil, err
	}

	// Round 2
	views, err := round.Compute(s, 2, func(party.ID) (*view1, error) {
		return fold1(s, group, public, received1)
	})
	if err != nil {
		return nil, err
	}
	v, err := agreeView(views, quorum)
	if err != nil {
		return nil, err
	}

	masks := zeroshare.NewMasks(src.Fork(protocolID+"/zeroshare").Ints(), quorum, group.EncryptRandomnessBound())
	b, err := bbsplus.ComputeB(public.H, messages, v.s)
	if err != nil {
		return nil, err
	}
	scale := new(saferith.Int).SetNat(public.Scale)
	sent2, err := round.Compute(s, 2, func(id party.ID) (*Broadcast2, error) {
		st := signers[id]
		// zᵢ = γᵢ⋅e - ρᵢ
		z := curve.NewScalar().Set(st.gamma).Mul(v.e).Sub(st.rho)
		// (ct2ᵢ⋅f^{ρᵢ})^{scale}
		pd := group.Exp(group.Compose(st.ct2, group.PowerOfF(st.rho.Int())), scale)
		// ⋅(ct1^{dᵢ})⁻¹
		pd = group.Compose(pd, group.Inverse(group.Exp(v.ct1, km.Secrets[id].Decryption)))
		// ⋅h^{βᵢ}
		pd = group.Compose(pd, group.PowerOfH(masks.Share(id, quorum)))
		return &Broadcast2{B: st.gamma.Act(b), Z: z, PD: pd}, nil
	})
	if err != nil {
		return nil, err
	}
	received2, err := round.Broadcast(s, 2, sent2)
	if err != nil {
		return nil, err
	}

	return &Transcript{
		Public:    public,
		SessionID: ssid,
		Round1:    received1,
		Round2:    received2,
	}, nil
}

// round1 samples eᵢ, sᵢ, γᵢ, ρᵢ and rᵢ, and re-randomises Enc(x) with them.
func round1(s *round.Session, group cl.Group, src *sample.Source, public *keygen.Public, id party.ID) (*signer, error) {
	rand := signing.PartyRand(src, protocolID, 1, id)
	st := &signer{
		e:     sample.Scalar(rand.Scalars()),
		s:     sample.Scalar(rand.Scalars()),
		gamma: sample.ScalarUnit(rand.Scalars()),
		rho:   sample.Scalar(rand.Scalars()),
	}
	r := new(saferith.Int).SetNat(sample.Below(rand.Ints(), group.EncryptRandomnessBound()))
	gamma := st.gamma.Int()
	encX := public.EncryptedX
	ct1 := group.Compose(group.Exp(encX.C1, gamma), group.PowerOfH(r))
	st.ct2 = group.Compose(group.Exp(encX.C2, gamma), group.Exp(public.EncryptionKey, r))

	st.msg = &Broadcast1{E: st.e, S: st.s, Ct1: ct1}
	h := s.HashForID(1, id)
	var err error
	if public.T == 0 {
		st.msg.Rand, err = zkrand.NewProof(group, h, zkrand.Public{Base: encX.C1, Result: ct1}, zkrand.Private{M: gamma, R: r}, rand.Ints())
	} else {
		st.msg.DualMod, err = zkdualmod.NewProof(group, h, zkdualmod.Public{Base: encX.C1, Result: ct1}, zkdualmod.Private{M: gamma, R: r}, rand.Ints())
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// fold1 verifies every round 1 message and sums them. Every member of the quorum must be accepted.
func fold1(s *round.Session, group cl.Group, public *keygen.Public, received map[party.ID]*Broadcast1) (*view1, error) {
	v := &view1{e: curve.NewScalar(), s: curve.NewScalar(), ct1: group.Identity()}
	for _, j := range public.Quorum {
		msg := received[j]
		if !verifyRound1(s, group, public, j, msg) {
			return nil, protocol.Error{RoundNumber: 1, Culprit: j, Err: fmt.Errorf("re-randomisation: %w", protocol.ErrProofFailed)}
		}
		v.e.Add(msg.E)
		v.s.Add(msg.S)
		v.ct1 = group.Compose(v.ct1, msg.Ct1)
	}
	return v, nil
}

func agreeView(views map[party.ID]*view1, quorum party.IDSlice) (*view1, error) {
	digests := make(map[party.ID][]byte, len(views))
	for id, v := range views {
		h := hash.New()
		if err := h.WriteAny(v.e, v.s, v.ct1); err != nil {
			return nil, err
		}
		digests[id] = h.Sum()
	}
	if err := round.Agree(1, digests); err != nil {
		return nil, err
	}
	return views[quorum[0]], nil
}
