package protocol

import "github.com/taurusgroup/threshold-bbs/pkg/party"

// Rule describes a hook applied to every broadcast before it is delivered.
//
// It is used to simulate a misbehaving party: content is the pointer that
// party is about to send, and may be modified in place.
type Rule interface {
	ModifyBroadcast(number RoundNumber, from party.ID, content any)
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc func(number RoundNumber, from party.ID, content any)

// ModifyBroadcast implements Rule.
func (f RuleFunc) ModifyBroadcast(number RoundNumber, from party.ID, content any) {
	f(number, from, content)
}
