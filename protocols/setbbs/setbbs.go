// Package setbbs implements the SET-BBS+ threshold signing protocol.
//
// The quorum jointly re-randomises Enc(x) with blinding scalars γᵢ, so that the
// threshold decryption only ever reveals γ⋅x + ρ. With zᵢ = γᵢ⋅e - ρᵢ and Bᵢ = γᵢ⋅B
// anyone holding the transcript recovers
//
//	A = (Σ Bᵢ) / (γ⋅x + ρ + Σ zᵢ) = B / (x + e).
package setbbs

import (
	"fmt"

	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/protocols/keygen"
	zkdualmod "github.com/taurusgroup/threshold-bbs/pkg/zk/dualmod"
	zkrand "github.com/taurusgroup/threshold-bbs/pkg/zk/rand"
)

const (
	protocolID = "threshold-bbs/set-bbs+"
	rounds     = 2
)

// KeyGen generates key material for SET-BBS+. t = 0 gives an n-of-n key.
func KeyGen(cfg *config.Config, src *sample.Source, n, t, l int) (*keygen.KeyMaterial, error) {
	return keygen.Generate(cfg, src, n, t, l, keygen.SetBBS)
}

// Broadcast1 is sent by every member of the quorum in round 1.
type Broadcast1 struct {
	E, S *curve.Scalar
	// Ct1 = Enc(x).c1^{γᵢ}⋅h^{rᵢ}
	Ct1 *cl.Element
	// Rand proves Ct1 for n-of-n keys, DualMod for t-of-n keys.
	Rand    *zkrand.Proof
	DualMod *zkdualmod.Proof
}

// Broadcast2 is sent by every member of the quorum in round 2.
type Broadcast2 struct {
	// B = γᵢ⋅B
	B *curve.G1
	// Z = γᵢ⋅e - ρᵢ
	Z *curve.Scalar
	// PD = (ct2ᵢ⋅f^{ρᵢ})^{scale}⋅(ct1^{dᵢ})⁻¹⋅h^{βᵢ}
	PD *cl.Element
}

// Transcript is everything Combine needs to recover a signature.
type Transcript struct {
	Public    *keygen.Public
	SessionID []byte
	Round1    map[party.ID]*Broadcast1
	Round2    map[party.ID]*Broadcast2
}

func (t *Transcript) validate() error {
	if t == nil || t.Public == nil || len(t.SessionID) == 0 {
		return fmt.Errorf("%w: incomplete transcript", protocol.ErrMalformedInput)
	}
	for _, id := range t.Public.Quorum {
		b1, b2 := t.Round1[id], t.Round2[id]
		if b1 == nil || b1.E == nil || b1.S == nil || b2 == nil || b2.B == nil || b2.Z == nil || b2.PD == nil {
			return protocol.Error{RoundNumber: 1, Culprit: id, Err: fmt.Errorf("%w: missing contribution", protocol.ErrMalformedInput)}
		}
	}
	return nil
}

// verifyRound1 checks the proof that Ct1 raises Enc(x).c1 to a scalar and re-randomises it.
func verifyRound1(s *round.Session, group cl.Group, public *keygen.Public, id party.ID, msg *Broadcast1) bool {
	if msg == nil || msg.E == nil || msg.S == nil {
		return false
	}
	h := s.HashForID(1, id)
	if public.T == 0 {
		return msg.Rand.Verify(group, h, zkrand.Public{Base: public.EncryptedX.C1, Result: msg.Ct1})
	}
	return msg.DualMod.Verify(group, h, zkdualmod.Public{Base: public.EncryptedX.C1, Result: msg.Ct1})
}
