package protocol

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-bbs/pkg/party"
)

var (
	// ErrMalformedInput is returned before any cryptographic work when the parameters
	// of a call are inconsistent.
	ErrMalformedInput = errors.New("protocol: malformed input")
	// ErrProofFailed is returned when a proof fails at a step where every party must be accepted.
	ErrProofFailed = errors.New("protocol: proof verification failed")
	// ErrInconsistentView is returned when honest parties computed different joint values.
	ErrInconsistentView = errors.New("protocol: parties disagree on a joint value")
	// ErrSignatureInvalid is returned when the recombined signature does not verify.
	ErrSignatureInvalid = errors.New("protocol: signature does not verify")
	// ErrMessageCount is returned when the number of messages differs from the key's l.
	ErrMessageCount = errors.New("protocol: wrong number of messages")
	// ErrNotEnoughParties is returned when exclusions leave too few contributions.
	ErrNotEnoughParties = errors.New("protocol: no contribution left after exclusions")
)

// Error is a custom error for protocols which contains information about the responsible round in which it occurred,
// and the party responsible.
type Error struct {
	// RoundNumber where the error occurred
	RoundNumber RoundNumber
	// Culprit is 0 if the identity of the misbehaving party cannot be known
	Culprit party.ID
	// Err is the underlying error
	Err error
}

func (e Error) Error() string {
	if e.Culprit == 0 {
		return fmt.Sprintf("round %d: %s", e.RoundNumber, e.Err)
	}
	return fmt.Sprintf("round %d: party: %s: %s", e.RoundNumber, e.Culprit, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
