package keygen

import (
	"fmt"

	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
	zksch "github.com/taurusgroup/threshold-bbs/pkg/zk/sch"
)

type broadcast2 struct {
	// SigningShare = xᵢ⋅g₂
	SigningShare *curve.G2
	Proof        *zksch.Proof
	// Generators are this party's contribution to each of the l+1 generators.
	Generators []*curve.G1
}

type state2 struct {
	secret *curve.Scalar
	msg    *broadcast2
}

type view2 struct {
	x          *curve.G2
	shares     map[party.ID]*curve.G2
	generators []*curve.G1
}

// signingKey runs round 2: additive shares of x, and the generators H summed slot by slot.
func signingKey(s *round.Session, src *sample.Source, public *Public, secrets map[party.ID]*Secret) error {
	const number protocol.RoundNumber = 2
	slots := public.L + 1

	states, err := round.Compute(s, number, func(id party.ID) (*state2, error) {
		rand := partyRand(src, number, id).Scalars()
		x := sample.ScalarUnit(rand)
		p := zksch.PublicG2{X: x.ActOnBaseG2()}
		proof, err := zksch.NewProofG2(s.HashForID(number, id), p, zksch.Private{X: x}, rand)
		if err != nil {
			return nil, err
		}
		generators := make([]*curve.G1, slots)
		for k := range generators {
			generators[k] = sample.ScalarUnit(rand).ActOnBase()
		}
		return &state2{secret: x, msg: &broadcast2{SigningShare: p.X, Proof: proof, Generators: generators}}, nil
	})
	if err != nil {
		return err
	}

	sent := make(map[party.ID]*broadcast2, len(states))
	for id, st := range states {
		sent[id] = st.msg
	}
	received, err := round.Broadcast(s, number, sent)
	if err != nil {
		return err
	}

	views, err := round.Compute(s, number, func(party.ID) (*view2, error) {
		v := &view2{
			x:          curve.NewG2(),
			shares:     make(map[party.ID]*curve.G2, len(received)),
			generators: make([]*curve.G1, slots),
		}
		for k := range v.generators {
			v.generators[k] = curve.NewG1()
		}
		for _, j := range s.PartyIDs() {
			msg, ok := received[j]
			if !ok || msg == nil {
				return nil, culprit(number, j, errMissingMessage)
			}
			if !msg.Proof.VerifyG2(s.HashForID(number, j), zksch.PublicG2{X: msg.SigningShare}) {
				return nil, culprit(number, j, fmt.Errorf("signing key share: %w", protocol.ErrProofFailed))
			}
			if len(msg.Generators) != slots {
				return nil, culprit(number, j, fmt.Errorf("%w: %d generators", protocol.ErrMalformedInput, len(msg.Generators)))
			}
			v.shares[j] = msg.SigningShare
			v.x = v.x.Add(msg.SigningShare)
			for k, g := range msg.Generators {
				if g == nil {
					return nil, culprit(number, j, fmt.Errorf("%w: nil generator", protocol.ErrMalformedInput))
				}
				v.generators[k] = v.generators[k].Add(g)
			}
		}
		for k, g := range v.generators {
			if g.IsIdentity() {
				return nil, fmt.Errorf("%w: generator %d is the identity", protocol.ErrInconsistentView, k)
			}
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	v, err := agree(number, views, s.PartyIDs(), func(v *view2) ([]byte, error) {
		data := []any{v.x}
		for _, id := range s.PartyIDs() {
			data = append(data, v.shares[id])
		}
		for _, g := range v.generators {
			data = append(data, g)
		}
		return digest(data...)
	})
	if err != nil {
		return err
	}
	public.X = v.x
	public.SigningShares = v.shares
	public.H = v.generators
	for id, st := range states {
		secrets[id].Signing = st.secret
	}
	return nil
}
