package keygen

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/pkg/sharing/pvss"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
	zkdl "github.com/taurusgroup/threshold-bbs/pkg/zk/dl"
)

type broadcast1 struct {
	// Key = h^{dᵢ}, for n-of-n.
	Key   *cl.Element
	Proof *zkdl.Proof
	// Dealing reshares dᵢ, for t-of-n. Its first commitment is h^{dᵢ}.
	Dealing *pvss.Dealing
}

type state1 struct {
	secret *saferith.Int
	// subShares are sent to each party over a private channel.
	subShares map[party.ID]*saferith.Int
	msg       *broadcast1
}

type view1 struct {
	key    *cl.Element
	shares map[party.ID]*cl.Element
	secret *saferith.Int
}

// encryptionKey runs round 1: every party samples dᵢ below the encryption randomness bound
// and publishes h^{dᵢ}, or a PVSS dealing of dᵢ.
func encryptionKey(s *round.Session, group cl.Group, src *sample.Source, public *Public, secrets map[party.ID]*Secret) error {
	const number protocol.RoundNumber = 1
	n, t := public.N, public.T

	states, err := round.Compute(s, number, func(id party.ID) (*state1, error) {
		rand := partyRand(src, number, id).Ints()
		d := new(saferith.Int).SetNat(sample.Below(rand, group.EncryptRandomnessBound()))
		h := s.HashForID(number, id)
		if t == 0 {
			p := zkdl.Public{P: group.PowerOfH(d), Bits: zk.RandomnessBits(group)}
			proof, err := zkdl.NewProof(group, h, p, zkdl.Private{X: d}, rand)
			if err != nil {
				return nil, err
			}
			return &state1{secret: d, msg: &broadcast1{Key: p.P, Proof: proof}}, nil
		}
		dealing, shares, err := pvss.Deal(group, h, rand, d, t, n)
		if err != nil {
			return nil, err
		}
		return &state1{secret: d, subShares: shares, msg: &broadcast1{Dealing: dealing}}, nil
	})
	if err != nil {
		return err
	}

	sent := make(map[party.ID]*broadcast1, n)
	for id, st := range states {
		sent[id] = st.msg
	}
	received, err := round.Broadcast(s, number, sent)
	if err != nil {
		return err
	}

	views, err := round.Compute(s, number, func(id party.ID) (*view1, error) {
		if t == 0 {
			return verifyKeys(s, group, received, states[id].secret)
		}
		return verifyDealings(s, group, received, states, id, public)
	})
	if err != nil {
		return err
	}

	v, err := agree(number, views, s.PartyIDs(), func(v *view1) ([]byte, error) {
		data := []any{v.key}
		for _, id := range public.Quorum {
			data = append(data, v.shares[id])
		}
		return digest(data...)
	})
	if err != nil {
		return err
	}
	public.EncryptionKey = v.key
	public.EncryptionShares = v.shares
	for id, view := range views {
		secrets[id].Decryption = view.secret
	}
	return nil
}

// verifyKeys checks every h^{dⱼ} of an n-of-n key, and multiplies them into hᵈ.
func verifyKeys(s *round.Session, group cl.Group, received map[party.ID]*broadcast1, secret *saferith.Int) (*view1, error) {
	const number protocol.RoundNumber = 1
	v := &view1{key: group.Identity(), shares: make(map[party.ID]*cl.Element, len(received)), secret: secret}
	for _, j := range s.PartyIDs() {
		msg, ok := received[j]
		if !ok || msg == nil {
			return nil, culprit(number, j, errMissingMessage)
		}
		p := zkdl.Public{P: msg.Key, Bits: zk.RandomnessBits(group)}
		if !msg.Proof.Verify(group, s.HashForID(number, j), p) {
			return nil, culprit(number, j, fmt.Errorf("encryption key share: %w", protocol.ErrProofFailed))
		}
		v.shares[j] = msg.Key
		v.key = group.Compose(v.key, msg.Key)
	}
	return v, nil
}

// verifyDealings checks every PVSS dealing and the sub-share id received from it,
// then recovers the key share of id if it belongs to the quorum.
func verifyDealings(s *round.Session, group cl.Group, received map[party.ID]*broadcast1, states map[party.ID]*state1, id party.ID, public *Public) (*view1, error) {
	const number protocol.RoundNumber = 1
	n, t := public.N, public.T
	v := &view1{key: group.Identity(), shares: make(map[party.ID]*cl.Element, t)}

	dealings := make([]*pvss.Dealing, 0, n)
	subShares := make([]*saferith.Int, 0, n)
	for _, j := range s.PartyIDs() {
		msg, ok := received[j]
		if !ok || msg == nil || msg.Dealing == nil {
			return nil, culprit(number, j, errMissingMessage)
		}
		if !msg.Dealing.Verify(group, s.HashForID(number, j), t, n) {
			return nil, culprit(number, j, fmt.Errorf("dealing: %w", protocol.ErrProofFailed))
		}
		share := states[j].subShares[id]
		if !pvss.VerifyShare(group, msg.Dealing, id, share, n) {
			return nil, culprit(number, j, fmt.Errorf("sub-share for %v: %w", id, pvss.ErrInvalidShare))
		}
		dealings = append(dealings, msg.Dealing)
		subShares = append(subShares, share)
		v.key = group.Compose(v.key, msg.Dealing.Commitments[0])
	}

	for _, q := range public.Quorum {
		p, err := pvss.PublicShare(group, dealings, q, public.Quorum, n)
		if err != nil {
			return nil, err
		}
		v.shares[q] = p
	}
	if public.Quorum.Contains(id) {
		d, err := pvss.Recover(subShares, id, public.Quorum, n)
		if err != nil {
			return nil, err
		}
		v.secret = d
	}
	return v, nil
}
