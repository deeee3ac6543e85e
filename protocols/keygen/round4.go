package keygen

import (
	"fmt"

	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	"github.com/taurusgroup/threshold-bbs/pkg/sharing/pvssg"
	zksch "github.com/taurusgroup/threshold-bbs/pkg/zk/sch"
)

type broadcast4 struct {
	// Share = kᵢ⋅g₁, for n-of-n.
	Share *curve.G1
	Proof *zksch.Proof
	// Dealing reshares kᵢ, for t-of-n.
	Dealing *pvssg.Dealing
}

type state4 struct {
	secret    *curve.Scalar
	subShares map[party.ID]*curve.Scalar
	msg       *broadcast4
}

type view4 struct {
	key    *curve.G1
	shares map[party.ID]*curve.G1
	secret *curve.Scalar
}

// elGamalKey runs round 4, for WMC24 only: the ElGamal key EK = k⋅g₁ used to encrypt γ⋅B.
func elGamalKey(s *round.Session, src *sample.Source, public *Public, secrets map[party.ID]*Secret) error {
	const number protocol.RoundNumber = 4
	t := public.T

	states, err := round.Compute(s, number, func(id party.ID) (*state4, error) {
		rand := partyRand(src, number, id).Scalars()
		k := sample.ScalarUnit(rand)
		h := s.HashForID(number, id)
		if t == 0 {
			p := zksch.Public{X: k.ActOnBase()}
			proof, err := zksch.NewProof(h, p, zksch.Private{X: k}, rand)
			if err != nil {
				return nil, err
			}
			return &state4{secret: k, msg: &broadcast4{Share: p.X, Proof: proof}}, nil
		}
		dealing, shares, err := pvssg.Deal(h, rand, k, t, s.PartyIDs())
		if err != nil {
			return nil, err
		}
		return &state4{secret: k, subShares: shares, msg: &broadcast4{Dealing: dealing}}, nil
	})
	if err != nil {
		return err
	}

	sent := make(map[party.ID]*broadcast4, len(states))
	for id, st := range states {
		sent[id] = st.msg
	}
	received, err := round.Broadcast(s, number, sent)
	if err != nil {
		return err
	}

	views, err := round.Compute(s, number, func(id party.ID) (*view4, error) {
		v := &view4{key: curve.NewG1()}
		if t == 0 {
			v.shares = make(map[party.ID]*curve.G1, len(received))
			for _, j := range s.PartyIDs() {
				msg, ok := received[j]
				if !ok || msg == nil {
					return nil, culprit(number, j, errMissingMessage)
				}
				if !msg.Proof.Verify(s.HashForID(number, j), zksch.Public{X: msg.Share}) {
					return nil, culprit(number, j, fmt.Errorf("ElGamal key share: %w", protocol.ErrProofFailed))
				}
				v.shares[j] = msg.Share
				v.key = v.key.Add(msg.Share)
			}
			v.secret = states[id].secret
			return v, nil
		}

		dealings := make([]*pvssg.Dealing, 0, len(received))
		sum := curve.NewScalar()
		for _, j := range s.PartyIDs() {
			msg, ok := received[j]
			if !ok || msg == nil || msg.Dealing == nil {
				return nil, culprit(number, j, errMissingMessage)
			}
			if !msg.Dealing.Verify(s.HashForID(number, j), t) {
				return nil, culprit(number, j, fmt.Errorf("ElGamal dealing: %w", protocol.ErrProofFailed))
			}
			share := states[j].subShares[id]
			if !pvssg.VerifyShare(msg.Dealing, id, share) {
				return nil, culprit(number, j, fmt.Errorf("sub-share for %v: %w", id, pvssg.ErrInvalidShare))
			}
			dealings = append(dealings, msg.Dealing)
			sum.Add(share)
			v.key = v.key.Add(msg.Dealing.Commitments[0])
		}
		shares, err := pvssg.PublicShares(dealings, public.Quorum)
		if err != nil {
			return nil, err
		}
		v.shares = shares
		if public.Quorum.Contains(id) {
			if v.secret, err = pvssg.Weighted(id, sum, public.Quorum); err != nil {
				return nil, err
			}
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	v, err := agree(number, views, s.PartyIDs(), func(v *view4) ([]byte, error) {
		data := []any{v.key}
		for _, id := range public.Quorum {
			data = append(data, v.shares[id])
		}
		return digest(data...)
	})
	if err != nil {
		return err
	}
	public.ElGamalKey = v.key
	public.ElGamalShares = v.shares
	for id, view := range views {
		secrets[id].ElGamal = view.secret
	}
	return nil
}
