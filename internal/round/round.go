package round

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
)

type result[T any] struct {
	value T
	err   error
}

// Compute runs f once for every party of the session on the worker pool.
//
// No party's computation may depend on another's output of the same round, which is
// what lets them run concurrently; the call returns once all of them have finished.
// If some fail, the error of the smallest ID is returned as a protocol.Error.
func Compute[T any](s *Session, number protocol.RoundNumber, f func(id party.ID) (T, error)) (map[party.ID]T, error) {
	log := s.Logger(number)
	log.Debug().Msg("round start")

	ids := s.partyIDs
	results := pool.Map(s.pool, len(ids), func(i int) result[T] {
		v, err := f(ids[i])
		return result[T]{value: v, err: err}
	})

	out := make(map[party.ID]T, len(ids))
	for i, id := range ids {
		if err := results[i].err; err != nil {
			var protocolErr protocol.Error
			if !errors.As(err, &protocolErr) {
				err = protocol.Error{RoundNumber: number, Culprit: id, Err: err}
			}
			log.Error().Err(err).Str("party", id.String()).Msg("abort")
			return nil, err
		}
		out[id] = results[i].value
	}
	return out, nil
}

// Broadcast delivers the content sent by every party.
//
// Each message goes through the session rule, if any, and then through a cbor round trip,
// so that receivers only ever see what was actually serialized.
// The returned map is shared by all receivers and must not be modified.
func Broadcast[T any](s *Session, number protocol.RoundNumber, content map[party.ID]T) (map[party.ID]T, error) {
	out := make(map[party.ID]T, len(content))
	for _, id := range s.partyIDs {
		msg, ok := content[id]
		if !ok {
			continue
		}
		if s.rule != nil {
			s.rule.ModifyBroadcast(number, id, msg)
		}
		data, err := cbor.Marshal(msg)
		if err != nil {
			return nil, protocol.Error{RoundNumber: number, Culprit: id, Err: fmt.Errorf("marshal broadcast: %w", err)}
		}
		var received T
		if err = cbor.Unmarshal(data, &received); err != nil {
			return nil, protocol.Error{RoundNumber: number, Culprit: id, Err: fmt.Errorf("unmarshal broadcast: %w", err)}
		}
		out[id] = received
	}
	return out, nil
}

// Agree checks that every party reached the same digest of its view of the joint values.
func Agree(number protocol.RoundNumber, digests map[party.ID][]byte) error {
	var reference []byte
	for _, id := range party.NewIDSlice(keys(digests)) {
		d := digests[id]
		if reference == nil {
			reference = d
			continue
		}
		if !bytes.Equal(reference, d) {
			return protocol.Error{RoundNumber: number, Culprit: id, Err: protocol.ErrInconsistentView}
		}
	}
	return nil
}

func keys[T any](m map[party.ID]T) []party.ID {
	out := make([]party.ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
