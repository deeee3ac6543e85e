package keygen

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	zkenc "github.com/taurusgroup/threshold-bbs/pkg/zk/enc"
)

type broadcast3 struct {
	// Ciphertext = Enc(xᵢ; rᵢ) under the joint encryption key.
	Ciphertext *cl.Ciphertext
	Proof      *zkenc.Proof
}

// encryptedSigningKey runs round 3: every party encrypts xᵢ, proves that the plaintext
// is the discrete logarithm of its signing share, and all ciphertexts are added into Enc(x).
func encryptedSigningKey(s *round.Session, group cl.Group, src *sample.Source, public *Public, secrets map[party.ID]*Secret) error {
	const number protocol.RoundNumber = 3

	sent, err := round.Compute(s, number, func(id party.ID) (*broadcast3, error) {
		rand := partyRand(src, number, id).Ints()
		x := secrets[id].Signing.Int()
		r := new(saferith.Int).SetNat(sample.Below(rand, group.EncryptRandomnessBound()))
		p := zkenc.Public{
			Ct: cl.Encrypt(group, public.EncryptionKey, x, r),
			PK: public.EncryptionKey,
			X:  public.SigningShares[id],
		}
		proof, err := zkenc.NewProof(group, s.HashForID(number, id), p, zkenc.Private{M: x, R: r}, rand)
		if err != nil {
			return nil, err
		}
		return &broadcast3{Ciphertext: p.Ct, Proof: proof}, nil
	})
	if err != nil {
		return err
	}
	received, err := round.Broadcast(s, number, sent)
	if err != nil {
		return err
	}

	views, err := round.Compute(s, number, func(party.ID) (*cl.Ciphertext, error) {
		var sum *cl.Ciphertext
		for _, j := range s.PartyIDs() {
			msg, ok := received[j]
			if !ok || msg == nil {
				return nil, culprit(number, j, errMissingMessage)
			}
			p := zkenc.Public{Ct: msg.Ciphertext, PK: public.EncryptionKey, X: public.SigningShares[j]}
			if !msg.Proof.Verify(group, s.HashForID(number, j), p) {
				return nil, culprit(number, j, fmt.Errorf("encrypted signing key share: %w", protocol.ErrProofFailed))
			}
			if sum == nil {
				sum = msg.Ciphertext
			} else {
				sum = sum.Add(group, msg.Ciphertext)
			}
		}
		return sum, nil
	})
	if err != nil {
		return err
	}

	encX, err := agree(number, views, s.PartyIDs(), func(ct *cl.Ciphertext) ([]byte, error) {
		return digest(ct)
	})
	if err != nil {
		return err
	}
	public.EncryptedX = encX
	return nil
}
