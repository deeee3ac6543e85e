// Package wmc24 implements the WMC24 threshold signing protocol.
//
// e and s are encrypted by every member of the quorum and threshold decrypted.
// Enc(e + x) is then scaled by blinding scalars γᵢ, and linked to ElGamal
// encryptions of γᵢ⋅B. A final threshold decryption of both gives γ⋅(e + x)
// and γ⋅B, hence A = B / (x + e).
//
// Contributions with an invalid proof in rounds 1 and 3 are left out of the sums.
// Partial decryptions in rounds 2 and 4 are required from every member of the quorum.
package wmc24

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-bbs/internal/elgamal"
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
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
	zkclel "github.com/taurusgroup/threshold-bbs/pkg/zk/clel"
	zkencs "github.com/taurusgroup/threshold-bbs/pkg/zk/encs"
	zkpdcl "github.com/taurusgroup/threshold-bbs/pkg/zk/pdcl"
	zkpdel "github.com/taurusgroup/threshold-bbs/pkg/zk/pdel"
)

const (
	protocolID = "threshold-bbs/wmc24"
	rounds     = 4
)

// KeyGen generates key material for WMC24. t = 0 gives an n-of-n key.
func KeyGen(cfg *config.Config, src *sample.Source, n, t, l int) (*keygen.KeyMaterial, error) {
	return keygen.Generate(cfg, src, n, t, l, keygen.WMC24)
}

// Broadcast1 carries the encryptions of eᵢ and sᵢ.
type Broadcast1 struct {
	EncE, EncS     *cl.Ciphertext
	ProofE, ProofS *zkencs.Proof
}

// Broadcast2 carries the partial decryptions of Enc(e) and Enc(s).
type Broadcast2 struct {
	PDE, PDS       *cl.Element
	ProofE, ProofS *zkpdcl.Proof
}

// Broadcast3 carries Enc(e+x)^{γᵢ} re-randomised, and the ElGamal encryption of γᵢ⋅B.
type Broadcast3 struct {
	Ct    *cl.Ciphertext
	EG    *elgamal.Ciphertext
	Proof *zkclel.Proof
}

// Broadcast4 carries the partial decryptions of Σ ctᵢ and Σ EGᵢ.
type Broadcast4 struct {
	PD      *cl.Element
	ProofPD *zkpdcl.Proof
	PDEG    *curve.G1
	ProofEG *zkpdel.Proof
}

// Transcript is everything Combine needs to recover a signature.
// Rounds 1 and 3 may hold contributions that were excluded.
type Transcript struct {
	Public    *keygen.Public
	SessionID []byte
	Round1    map[party.ID]*Broadcast1
	Round2    map[party.ID]*Broadcast2
	Round3    map[party.ID]*Broadcast3
	Round4    map[party.ID]*Broadcast4
}

// joint holds the values every party derives from the broadcasts. The combiner derives them again.
type joint struct {
	accepted1  party.IDSlice
	encE, encS *cl.Ciphertext
	// encEX = Enc(e + x)
	encEX     *cl.Ciphertext
	e, s      *curve.Scalar
	b         *curve.G1
	accepted3 party.IDSlice
	ct        *cl.Ciphertext
	eg        *elgamal.Ciphertext
	// a = B / (x + e), set by fold4
	a *curve.G1
}

func valueHash(s *round.Session, number protocol.RoundNumber, id party.ID, label string) *hash.Hash {
	return s.HashForID(number, id).Fork(&hash.BytesWithDomain{TheDomain: "Value", Bytes: []byte(label)})
}

func excluded(log zerolog.Logger, number protocol.RoundNumber, ids party.IDSlice) {
	for _, id := range ids {
		log.Warn().Str("culprit", id.String()).Msgf("round %d contribution excluded", number)
	}
}

// fold1 keeps the encryptions of e and s with a valid proof, and adds them up.
func (j *joint) fold1(s *round.Session, group cl.Group, public *keygen.Public, received map[party.ID]*Broadcast1, log zerolog.Logger) error {
	pk := public.EncryptionKey
	accepted, rejected := signing.Filter(public.Quorum, func(id party.ID) bool {
		msg := received[id]
		if msg == nil {
			return false
		}
		return msg.ProofE.Verify(group, valueHash(s, 1, id, "e"), zkencs.Public{Ct: msg.EncE, PK: pk}) &&
			msg.ProofS.Verify(group, valueHash(s, 1, id, "s"), zkencs.Public{Ct: msg.EncS, PK: pk})
	})
	excluded(log, 1, rejected)
	if len(accepted) == 0 {
		return protocol.Error{RoundNumber: 1, Err: protocol.ErrNotEnoughParties}
	}
	j.accepted1 = accepted
	j.encE, j.encS = received[accepted[0]].EncE, received[accepted[0]].EncS
	for _, id := range accepted[1:] {
		j.encE = j.encE.Add(group, received[id].EncE)
		j.encS = j.encS.Add(group, received[id].EncS)
	}
	j.encEX = j.encE.Add(group, public.EncryptedX)
	return nil
}

// fold2 checks every partial decryption of Enc(e) and Enc(s), and recovers e and s.
func (j *joint) fold2(s *round.Session, group cl.Group, public *keygen.Public, received map[party.ID]*Broadcast2, messages []*curve.Scalar) error {
	bits := public.DecryptionShareBits(group)
	err := signing.VerifyAll(public.Quorum, func(id party.ID) error {
		msg := received[id]
		if msg == nil {
			return protocol.Error{RoundNumber: 2, Culprit: id, Err: fmt.Errorf("%w: missing partial decryption", protocol.ErrMalformedInput)}
		}
		p := public.EncryptionShares[id]
		okE := msg.ProofE.Verify(group, valueHash(s, 2, id, "e"), zkpdcl.Public{C1: j.encE.C1, PD: msg.PDE, P: p, Bits: bits})
		okS := msg.ProofS.Verify(group, valueHash(s, 2, id, "s"), zkpdcl.Public{C1: j.encS.C1, PD: msg.PDS, P: p, Bits: bits})
		if !okE || !okS {
			return protocol.Error{RoundNumber: 2, Culprit: id, Err: fmt.Errorf("partial decryption: %w", protocol.ErrProofFailed)}
		}
		return nil
	})
	if err != nil {
		return err
	}

	pdE := make([]*cl.Element, 0, len(public.Quorum))
	pdS := make([]*cl.Element, 0, len(public.Quorum))
	for _, id := range public.Quorum {
		pdE = append(pdE, received[id].PDE)
		pdS = append(pdS, received[id].PDS)
	}
	if j.e, err = signing.Decrypt(group, j.encE, pdE, public.ScaleInt()); err != nil {
		return protocol.Error{RoundNumber: 2, Err: err}
	}
	if j.s, err = signing.Decrypt(group, j.encS, pdS, public.ScaleInt()); err != nil {
		return protocol.Error{RoundNumber: 2, Err: err}
	}
	if j.b, err = bbsplus.ComputeB(public.H, messages, j.s); err != nil {
		return err
	}
	return nil
}

// fold3 keeps the blinded ciphertexts with a valid proof, and adds them up.
func (j *joint) fold3(s *round.Session, group cl.Group, public *keygen.Public, received map[party.ID]*Broadcast3, log zerolog.Logger) error {
	accepted, rejected := signing.Filter(public.Quorum, func(id party.ID) bool {
		msg := received[id]
		if msg == nil {
			return false
		}
		statement := zkclel.Public{
			Ct:  j.encEX,
			Out: msg.Ct,
			PK:  public.EncryptionKey,
			B:   j.b,
			EK:  public.ElGamalKey,
			EG:  msg.EG,
		}
		return msg.Proof.Verify(group, s.HashForID(3, id), statement)
	})
	excluded(log, 3, rejected)
	if len(accepted) == 0 {
		return protocol.Error{RoundNumber: 3, Err: protocol.ErrNotEnoughParties}
	}
	j.accepted3 = accepted
	j.ct, j.eg = received[accepted[0]].Ct, received[accepted[0]].EG
	for _, id := range accepted[1:] {
		j.ct = j.ct.Add(group, received[id].Ct)
		j.eg = j.eg.Add(received[id].EG)
	}
	return nil
}

// fold4 checks every partial decryption of the blinded values, and recovers
// γ⋅(e+x) and then A = (γ⋅B) / (γ⋅(e+x)).
func (j *joint) fold4(s *round.Session, group cl.Group, public *keygen.Public, received map[party.ID]*Broadcast4) error {
	bits := public.DecryptionShareBits(group)
	err := signing.VerifyAll(public.Quorum, func(id party.ID) error {
		msg := received[id]
		if msg == nil {
			return protocol.Error{RoundNumber: 4, Culprit: id, Err: fmt.Errorf("%w: missing partial decryption", protocol.ErrMalformedInput)}
		}
		okCL := msg.ProofPD.Verify(group, valueHash(s, 4, id, "cl"), zkpdcl.Public{
			C1:   j.ct.C1,
			PD:   msg.PD,
			P:    public.EncryptionShares[id],
			Bits: bits,
		})
		okEL := msg.ProofEG.Verify(valueHash(s, 4, id, "el"), zkpdel.Public{
			L:  j.eg.L,
			PD: msg.PDEG,
			P:  public.ElGamalShares[id],
		})
		if !okCL || !okEL {
			return protocol.Error{RoundNumber: 4, Culprit: id, Err: fmt.Errorf("partial decryption: %w", protocol.ErrProofFailed)}
		}
		return nil
	})
	if err != nil {
		return err
	}

	pd := make([]*cl.Element, 0, len(public.Quorum))
	pdEG := make([]*curve.G1, 0, len(public.Quorum))
	for _, id := range public.Quorum {
		pd = append(pd, received[id].PD)
		pdEG = append(pdEG, received[id].PDEG)
	}
	// γ⋅(e + x)
	denominator, err := signing.Decrypt(group, j.ct, pd, public.ScaleInt())
	if err != nil {
		return protocol.Error{RoundNumber: 4, Err: fmt.Errorf("%w: %v", protocol.ErrSignatureInvalid, err)}
	}
	if denominator.IsZero() {
		return protocol.Error{RoundNumber: 4, Err: fmt.Errorf("%w: zero denominator", protocol.ErrSignatureInvalid)}
	}
	j.a = denominator.Invert().Act(j.eg.Combine(pdEG...))
	return nil
}

// digest identifies the joint values computed so far.
func (j *joint) digest() ([]byte, error) {
	h := hash.New()
	if err := h.WriteAny(j.accepted1, j.encE, j.encS); err != nil {
		return nil, err
	}
	if j.accepted3 != nil {
		if err := h.WriteAny(j.e, j.s, j.accepted3, j.ct, j.eg); err != nil {
			return nil, err
		}
	}
	return h.Sum(), nil
}

// agree checks that every party computed the same joint values.
func agree(number protocol.RoundNumber, views map[party.ID]*joint) error {
	digests := make(map[party.ID][]byte, len(views))
	for id, v := range views {
		d, err := v.digest()
		if err != nil {
			return err
		}
		digests[id] = d
	}
	return round.Agree(number, digests)
}

func (t *Transcript) validate() error {
	if t == nil || t.Public == nil || len(t.SessionID) == 0 {
		return fmt.Errorf("%w: incomplete transcript", protocol.ErrMalformedInput)
	}
	if t.Round1 == nil || t.Round3 == nil {
		return fmt.Errorf("%w: incomplete transcript", protocol.ErrMalformedInput)
	}
	for _, id := range t.Public.Quorum {
		if b := t.Round2[id]; b == nil || b.PDE == nil || b.PDS == nil {
			return protocol.Error{RoundNumber: 2, Culprit: id, Err: fmt.Errorf("%w: missing partial decryption", protocol.ErrMalformedInput)}
		}
		if b := t.Round4[id]; b == nil || b.PD == nil || b.PDEG == nil {
			return protocol.Error{RoundNumber: 4, Culprit: id, Err: fmt.Errorf("%w: missing partial decryption", protocol.ErrMalformedInput)}
		}
	}
	return nil
}
