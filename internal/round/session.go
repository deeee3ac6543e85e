package round

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
)

// Info is the static information about a protocol execution.
type Info struct {
	// ProtocolID is an identifier for this protocol
	ProtocolID string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber protocol.RoundNumber
	// PartyIDs is the set of participating parties in this protocol.
	PartyIDs []party.ID
	// Threshold is the number of parties needed to use the shared key, 0 when all of them are.
	Threshold int
}

// Session holds the state shared by all parties of a simulated execution:
// the transcript hash every proof is bound to, the worker pool running the
// per-party work, and the logger.
//
// Each party's secrets stay in the values returned by Compute, never in the Session.
type Session struct {
	info     Info
	partyIDs party.IDSlice
	pool     *pool.Pool
	rule     protocol.Rule
	log      zerolog.Logger

	// ssid the unique identifier for this protocol execution
	ssid []byte
	hash *hash.Hash
}

// NewSession creates a new *Session.
// `sessionID` is an optional byte slice that should be unique for each execution of the protocol.
// `auxInfo` is a variable list of objects which should be included in the session's hash state.
func NewSession(info Info, sessionID []byte, pl *pool.Pool, log zerolog.Logger, auxInfo ...hash.WriterToWithDomain) (*Session, error) {
	partyIDs := party.NewIDSlice(info.PartyIDs)
	if len(partyIDs) == 0 || !partyIDs.Valid() {
		return nil, errors.New("session: partyIDs invalid")
	}
	if info.Threshold < 0 || info.Threshold > len(partyIDs) {
		return nil, fmt.Errorf("session: threshold %d is invalid for number of parties %d", info.Threshold, len(partyIDs))
	}

	h := hash.New()
	if sessionID != nil {
		if err := h.WriteAny(&hash.BytesWithDomain{
			TheDomain: "Session ID",
			Bytes:     sessionID,
		}); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}
	if err := h.WriteAny(&hash.BytesWithDomain{
		TheDomain: "Protocol ID",
		Bytes:     []byte(info.ProtocolID),
	}); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := h.WriteAny(partyIDs, &hash.BytesWithDomain{
		TheDomain: "Threshold",
		Bytes:     []byte{byte(info.Threshold >> 8), byte(info.Threshold)},
	}); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	for _, a := range auxInfo {
		if a == nil {
			continue
		}
		if err := h.WriteAny(a); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	return &Session{
		info:     info,
		partyIDs: partyIDs,
		pool:     pl,
		log:      log.With().Str("protocol", info.ProtocolID).Logger(),
		ssid:     h.Clone().Sum(),
		hash:     h,
	}, nil
}

// WithRule installs a rule applied to every broadcast of the session.
func (s *Session) WithRule(rule protocol.Rule) *Session {
	s.rule = rule
	return s
}

// Hash returns copy of the hash function of this protocol execution.
func (s *Session) Hash() *hash.Hash {
	return s.hash.Clone()
}

// HashForID returns a clone of the session hash, bound to a round and to the party proving in it.
func (s *Session) HashForID(number protocol.RoundNumber, id party.ID) *hash.Hash {
	return s.hash.Fork(number, id)
}

// SSID the unique identifier for this protocol execution.
func (s *Session) SSID() []byte { return s.ssid }

// ProtocolID is an identifier for this protocol.
func (s *Session) ProtocolID() string { return s.info.ProtocolID }

// PartyIDs is the sorted slice of participating parties.
func (s *Session) PartyIDs() party.IDSlice { return s.partyIDs }

// Threshold is the number of parties needed to use the shared key, 0 when all of them are.
func (s *Session) Threshold() int { return s.info.Threshold }

// FinalRoundNumber is the number of rounds before the output round.
func (s *Session) FinalRoundNumber() protocol.RoundNumber { return s.info.FinalRoundNumber }

// Logger returns the session logger annotated with the round.
func (s *Session) Logger(number protocol.RoundNumber) zerolog.Logger {
	return s.log.With().Int("round", int(number)).Logger()
}

// PartyLogger returns the session logger annotated with the round and a party.
func (s *Session) PartyLogger(number protocol.RoundNumber, id party.ID) zerolog.Logger {
	return s.log.With().Int("round", int(number)).Str("party", id.String()).Logger()
}
