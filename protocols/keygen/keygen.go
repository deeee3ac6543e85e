// Package keygen generates the shared keys of the threshold BBS+ protocols.
//
// Every party of the simulated execution runs the same four steps, each
// followed by a check that all of them computed the same joint values:
//
//  1. encryption key: additive shares dᵢ of the decryption key, reshared with PVSS for t-of-n
//  2. signing key: additive shares xᵢ of x, and the message generators
//  3. encrypted signing key: Enc(x) = Σ Enc(xᵢ), each bound to xᵢ⋅g₂
//  4. ElGamal key (WMC24 only): additive shares kᵢ, reshared with PVSSG for t-of-n
//
// Any failing proof aborts the execution.
package keygen

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/internal/round"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/config"
	"github.com/taurusgroup/threshold-bbs/pkg/hash"
	"github.com/taurusgroup/threshold-bbs/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/protocol"
)

const protocolID = "threshold-bbs/keygen"

// ErrPlaintextRange is returned when the group cannot hold the plaintexts of the signing protocols.
var ErrPlaintextRange = cl.ErrPlaintextRange

// Variant selects the signing protocol the keys are generated for.
type Variant uint8

const (
	SetBBS Variant = iota + 1
	WMC24
)

func (v Variant) String() string {
	switch v {
	case SetBBS:
		return "SET-BBS+"
	case WMC24:
		return "WMC24"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// WriteTo implements io.WriterTo.
func (v Variant) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte{byte(v)})
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (Variant) Domain() string { return "keygen.Variant" }

// Scale returns the factor carried by threshold decryptions: 1 for n-of-n (t = 0), (n!)³ otherwise.
func Scale(n, t int) *big.Int {
	if t == 0 {
		return big.NewInt(1)
	}
	delta := polynomial.Factorial(n)
	return new(big.Int).Exp(delta, big.NewInt(3), nil)
}

// Quorum returns the parties taking part in signing.
func Quorum(n, t int) party.IDSlice {
	if t == 0 {
		return party.Range(n)
	}
	return party.Range(t)
}

// Validate checks the parameters of Generate before any cryptographic work.
func Validate(group cl.Group, n, t, l int, variant Variant) error {
	switch {
	case n < 1 || n > 1<<10:
		return fmt.Errorf("%w: %d parties", protocol.ErrMalformedInput, n)
	case t < 0 || t > n:
		return fmt.Errorf("%w: threshold %d for %d parties", protocol.ErrMalformedInput, t, n)
	case l < 1:
		return fmt.Errorf("%w: %d messages", protocol.ErrMalformedInput, l)
	case variant != SetBBS && variant != WMC24:
		return fmt.Errorf("%w: unknown %v", protocol.ErrMalformedInput, variant)
	case group == nil:
		return fmt.Errorf("%w: no group", protocol.ErrMalformedInput)
	}
	return cl.CheckMessageBits(group, n, Scale(n, t))
}

// Generate runs the key generation among the parties 1, …, n, for signing l messages at once.
//
// t = 0 gives an n-of-n key. Otherwise the parties 1, …, t form the signing quorum.
func Generate(cfg *config.Config, src *sample.Source, n, t, l int, variant Variant) (*KeyMaterial, error) {
	if cfg == nil || src == nil {
		return nil, fmt.Errorf("keygen: %w: missing configuration", protocol.ErrMalformedInput)
	}
	if err := Validate(cfg.Group, n, t, l, variant); err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}

	s, err := newSession(cfg, src, n, t, l, variant)
	if err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	return generate(s, cfg.Group, src, l, variant)
}

func newSession(cfg *config.Config, src *sample.Source, n, t, l int, variant Variant) (*round.Session, error) {
	ssid := make([]byte, 32)
	if _, err := io.ReadFull(src.Fork("keygen/ssid").Scalars(), ssid); err != nil {
		return nil, err
	}
	info := round.Info{
		ProtocolID:       protocolID,
		FinalRoundNumber: 4,
		PartyIDs:         party.Range(n),
		Threshold:        t,
	}
	return round.NewSession(info, ssid, cfg.Pool, cfg.Log, cfg.Group, variant, &hash.BytesWithDomain{
		TheDomain: "Messages",
		Bytes:     []byte{byte(l >> 8), byte(l)},
	})
}

func generate(s *round.Session, group cl.Group, src *sample.Source, l int, variant Variant) (*KeyMaterial, error) {
	n, t := len(s.PartyIDs()), s.Threshold()
	public := &Public{
		Variant: variant,
		N:       n,
		T:       t,
		L:       l,
		Quorum:  Quorum(n, t),
	}
	scale := Scale(n, t)
	public.Scale = new(saferith.Nat).SetBig(scale, scale.BitLen())

	secrets := make(map[party.ID]*Secret, n)
	for _, id := range s.PartyIDs() {
		secrets[id] = &Secret{ID: id}
	}

	if err := encryptionKey(s, group, src, public, secrets); err != nil {
		return nil, err
	}
	if err := signingKey(s, src, public, secrets); err != nil {
		return nil, err
	}
	if err := encryptedSigningKey(s, group, src, public, secrets); err != nil {
		return nil, err
	}
	if variant == WMC24 {
		if err := elGamalKey(s, src, public, secrets); err != nil {
			return nil, err
		}
	}

	log := s.Logger(s.FinalRoundNumber())
	log.Info().Str("variant", variant.String()).Int("n", n).Int("t", t).Int("l", l).Msg("key generated")
	return &KeyMaterial{Public: public, Secrets: secrets}, nil
}

// partyRand returns the randomness of one party in one round.
func partyRand(src *sample.Source, number protocol.RoundNumber, id party.ID) *sample.Source {
	return src.Fork(fmt.Sprintf("keygen/%d/%d", number, id))
}

// digest hashes the joint values computed by one party.
func digest(data ...any) ([]byte, error) {
	h := hash.New()
	if err := h.WriteAny(data...); err != nil {
		return nil, err
	}
	return h.Sum(), nil
}

// agree checks that every party computed the same digest, and returns the view of the first one.
func agree[V any](number protocol.RoundNumber, views map[party.ID]V, ids party.IDSlice, digestOf func(V) ([]byte, error)) (V, error) {
	var zero V
	digests := make(map[party.ID][]byte, len(views))
	for id, v := range views {
		d, err := digestOf(v)
		if err != nil {
			return zero, protocol.Error{RoundNumber: number, Culprit: id, Err: err}
		}
		digests[id] = d
	}
	if err := round.Agree(number, digests); err != nil {
		return zero, err
	}
	return views[ids[0]], nil
}

var errMissingMessage = errors.New("missing message")

// culprit wraps err as the fault of party id in the given round.
func culprit(number protocol.RoundNumber, id party.ID, err error) error {
	return protocol.Error{RoundNumber: number, Culprit: id, Err: err}
}
