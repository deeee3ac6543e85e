package wmc24

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/elgamal"
	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/internal/signing"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
	zkclel "github.com/taurusgroup/threshold-bbs/pkg/zk/clel"
	zkencs "github.com/taurusgroup/threshold-bbs/pkg/zk/encs"
	zkpdcl "github.com/taurusgroup/threshold-bbs/pkg/zk/pdcl"
	zkpdel "github.com/taurusgroup/threshold-bbs/pkg/zk/pdel"
)

// Sign runs the signing protocol among the quorum of km on l messages.
func Sign(cfg *config.Config, src *sample.Source, km *keygen.KeyMaterial, messages []*curve.Scalar) (*Transcript, error) {
	if km == nil {
		return nil, fmt.Errorf("wmc24: %w: missing key material", protocol.ErrMalformedInput)
	}
	if err := signing.CheckInput(cfg, km.Public, keygen.WMC24, messages); err != nil {
		return nil, fmt.Errorf("wmc24: %w", err)
	}
	if src == nil {
		return nil, fmt.Errorf("wmc24: %w: missing randomness", protocol.ErrMalformedInput)
	}
	ssid, err := signing.NewSessionID(src, protocolID)
	if err != nil {
		return nil, fmt.Errorf("wmc24: %w", err)
	}
	s, err := signing.NewSession(cfg, protocolID, rounds, km.Public, ssid)
	if err != nil {
		return nil, fmt.Errorf("wmc24: %w", err)
	}
	return sign(s, cfg.Group, src, km, messages, ssid)
}

func sign(s *round.Session, group cl.Group, src *sample.Source, km *keygen.KeyMaterial, messages []*curve.Scalar, ssid []byte) (*Transcript, error) {
	public := km.Public
	quorum := public.Quorum
	for _, id := range quorum {
		secret := km.Secrets[id]
		if secret == nil || secret.Decryption == nil || secret.ElGamal == nil {
			return nil, fmt.Errorf("wmc24: %w: no key shares for %v", protocol.ErrMalformedInput, id)
		}
	}
	bits := public.DecryptionShareBits(group)

	// Round 1
	sent1, err := round.Compute(s, 1, func(id party.ID) (*Broadcast1, error) {
		return round1(s, group, src, public, id)
	})
	if err != nil {
		return nil, err
	}
	received1, err := round.Broadcast(s, 1, sent1)
	if err != nil {
		return nil, err
	}

	// Round 2
	views, err := round.Compute(s, 2, func(id party.ID) (*joint, error) {
		j := &joint{}
		if err := j.fold1(s, group, public, received1, s.PartyLogger(2, id)); err != nil {
			return nil, err
		}
		return j, nil
	})
	if err != nil {
		return nil, err
	}
	if err = agree(1, views); err != nil {
		return nil, err
	}
	sent2, err := round.Compute(s, 2, func(id party.ID) (*Broadcast2, error) {
		j := views[id]
		rand := signing.PartyRand(src, protocolID, 2, id)
		var err error
		d := km.Secrets[id].Decryption
		p := public.EncryptionShares[id]
		msg := &Broadcast2{
			PDE: group.Exp(j.encE.C1, d),
			PDS: group.Exp(j.encS.C1, d),
		}
		msg.ProofE, err = zkpdcl.NewProof(group, valueHash(s, 2, id, "e"),
			zkpdcl.Public{C1: j.encE.C1, PD: msg.PDE, P: p, Bits: bits}, zkpdcl.Private{D: d}, rand.Ints())
		if err != nil {
			return nil, err
		}
		msg.ProofS, err = zkpdcl.NewProof(group, valueHash(s, 2, id, "s"),
			zkpdcl.Public{C1: j.encS.C1, PD: msg.PDS, P: p, Bits: bits}, zkpdcl.Private{D: d}, rand.Ints())
		if err != nil {
			return nil, err
		}
		return msg, nil
	})
	if err != nil {
		return nil, err
	}
	received2, err := round.Broadcast(s, 2, sent2)
	if err != nil {
		return nil, err
	}

	// Round 3
	sent3, err := round.Compute(s, 3, func(id party.ID) (*Broadcast3, error) {
		j := views[id]
		if err := j.fold2(s, group, public, received2, messages); err != nil {
			return nil, err
		}
		return round3(s, group, src, public, j, id)
	})
	if err != nil {
		return nil, err
	}
	received3, err := round.Broadcast(s, 3, sent3)
	if err != nil {
		return nil, err
	}

	// Round 4
	if _, err = round.Compute(s, 4, func(id party.ID) (struct{}, error) {
		return struct{}{}, views[id].fold3(s, group, public, received3, s.PartyLogger(4, id))
	}); err != nil {
		return nil, err
	}
	if err = agree(3, views); err != nil {
		return nil, err
	}
	sent4, err := round.Compute(s, 4, func(id party.ID) (*Broadcast4, error) {
		j := views[id]
		rand := signing.PartyRand(src, protocolID, 4, id)
		var err error
		secret := km.Secrets[id]
		msg := &Broadcast4{
			PD:   group.Exp(j.ct.C1, secret.Decryption),
			PDEG: j.eg.PartialDecrypt(secret.ElGamal),
		}
		msg.ProofPD, err = zkpdcl.NewProof(group, valueHash(s, 4, id, "cl"),
			zkpdcl.Public{C1: j.ct.C1, PD: msg.PD, P: public.EncryptionShares[id], Bits: bits},
			zkpdcl.Private{D: secret.Decryption}, rand.Ints())
		if err != nil {
			return nil, err
		}
		msg.ProofEG, err = zkpdel.NewProof(valueHash(s, 4, id, "el"),
			zkpdel.Public{L: j.eg.L, PD: msg.PDEG, P: public.ElGamalShares[id]},
			zkpdel.Private{D: secret.ElGamal}, rand.Scalars())
		if err != nil {
			return nil, err
		}
		return msg, nil
	})
	if err != nil {
		return nil, err
	}
	received4, err := round.Broadcast(s, 4, sent4)
	if err != nil {
		return nil, err
	}
	if _, err = round.Compute(s, 4, func(id party.ID) (struct{}, error) {
		return struct{}{}, views[id].fold4(s, group, public, received4)
	}); err != nil {
		return nil, err
	}

	return &Transcript{
		Public:    public,
		SessionID: ssid,
		Round1:    received1,
		Round2:    received2,
		Round3:    received3,
		Round4:    received4,
	}, nil
}

// round1 samples eᵢ and sᵢ and encrypts them.
func round1(s *round.Session, group cl.Group, src *sample.Source, public *keygen.Public, id party.ID) (*Broadcast1, error) {
	rand := signing.PartyRand(src, protocolID, 1, id)
	pk := public.EncryptionKey
	e := sample.Scalar(rand.Scalars())
	sBlind := sample.Scalar(rand.Scalars())
	rE := new(saferith.Int).SetNat(sample.Below(rand.Ints(), group.EncryptRandomnessBound()))
	rS := new(saferith.Int).SetNat(sample.Below(rand.Ints(), group.EncryptRandomnessBound()))

	msg := &Broadcast1{
		EncE: cl.Encrypt(group, pk, e.Int(), rE),
		EncS: cl.Encrypt(group, pk, sBlind.Int(), rS),
	}
	var err error
	msg.ProofE, err = zkencs.NewProof(group, valueHash(s, 1, id, "e"),
		zkencs.Public{Ct: msg.EncE, PK: pk}, zkencs.Private{M: e.Int(), R: rE}, rand.Ints())
	if err != nil {
		return nil, err
	}
	msg.ProofS, err = zkencs.NewProof(group, valueHash(s, 1, id, "s"),
		zkencs.Public{Ct: msg.EncS, PK: pk}, zkencs.Private{M: sBlind.Int(), R: rS}, rand.Ints())
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// round3 blinds Enc(e + x) and B with the same γᵢ.
func round3(s *round.Session, group cl.Group, src *sample.Source, public *keygen.Public, j *joint, id party.ID) (*Broadcast3, error) {
	rand := signing.PartyRand(src, protocolID, 3, id)
	gamma := sample.ScalarUnit(rand.Scalars())
	rho := sample.Scalar(rand.Scalars())
	r := new(saferith.Int).SetNat(sample.Below(rand.Ints(), group.EncryptRandomnessBound()))

	msg := &Broadcast3{
		Ct: j.encEX.Mul(group, gamma.Int()).ReRandomise(group, public.EncryptionKey, r),
		EG: elgamal.Encrypt(public.ElGamalKey, gamma.Act(j.b), rho),
	}
	statement := zkclel.Public{
		Ct:  j.encEX,
		Out: msg.Ct,
		PK:  public.EncryptionKey,
		B:   j.b,
		EK:  public.ElGamalKey,
		EG:  msg.EG,
	}
	var err error
	msg.Proof, err = zkclel.NewProof(group, s.HashForID(3, id), statement,
		zkclel.Private{Gamma: gamma.Int(), R: r, Rho: rho}, rand.Ints())
	if err != nil {
		return nil, err
	}
	return msg, nil
}
