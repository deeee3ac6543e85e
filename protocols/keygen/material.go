package keygen

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/math/curve"
	"github.com/taurusgroup/threshold-bbs/pkg/party"
	"github.com/taurusgroup/threshold-bbs/pkg/sharing/pvss"
	"github.com/taurusgroup/threshold-bbs/pkg/zk"
)

// Public is the part of the key material every signer and every combiner knows.
type Public struct {
	Variant Variant
	// N is the number of parties, T the threshold or 0 for n-of-n.
	N, T int
	// L is the number of messages signed at once.
	L int
	// Quorum is the set of parties taking part in signing.
	Quorum party.IDSlice
	// Scale is the factor carried by every threshold decryption: 1, or (n!)³ for t-of-n.
	Scale *saferith.Nat

	// EncryptionKey = hᵈ
	EncryptionKey *cl.Element
	// EncryptionShares[i] = h^{dᵢ} for the members of the quorum.
	EncryptionShares map[party.ID]*cl.Element

	// X = x⋅g₂
	X *curve.G2
	// SigningShares[i] = xᵢ⋅g₂
	SigningShares map[party.ID]*curve.G2
	// H are the l+1 message generators, the last one for the blinding s.
	H []*curve.G1
	// EncryptedX is an encryption of x under EncryptionKey.
	EncryptedX *cl.Ciphertext

	// ElGamalKey = k⋅g₁, only for WMC24.
	ElGamalKey *curve.G1
	// ElGamalShares[i] = kᵢ⋅g₁ for the members of the quorum, already Lagrange weighted.
	ElGamalShares map[party.ID]*curve.G1
}

// Secret holds the shares of a single party.
type Secret struct {
	ID party.ID
	// Decryption is dᵢ, set for the members of the quorum.
	Decryption *saferith.Int
	// Signing is xᵢ.
	Signing *curve.Scalar
	// ElGamal is kᵢ, set for the members of the quorum in WMC24.
	ElGamal *curve.Scalar
}

// KeyMaterial is the output of Generate. It is never modified afterwards.
type KeyMaterial struct {
	Public  *Public
	Secrets map[party.ID]*Secret
}

// Threshold is the number of parties needed to sign.
func (p *Public) Threshold() int {
	if p.T == 0 {
		return p.N
	}
	return p.T
}

// ScaleInt returns Scale as a big.Int.
func (p *Public) ScaleInt() *big.Int {
	return p.Scale.Big()
}

// DecryptionShareBits bounds the size of the dᵢ of the quorum.
func (p *Public) DecryptionShareBits(group cl.Group) int {
	if p.T == 0 {
		return zk.RandomnessBits(group)
	}
	return pvss.ShareBits(group, p.T, p.N)
}

// BBSPlus returns the joint key as a standard BBS+ public key.
func (p *Public) BBSPlus() *bbsplus.PublicKey {
	return &bbsplus.PublicKey{X: p.X, H: p.H}
}

// Validate checks that every field required by the signing protocols is present and consistent.
func (p *Public) Validate(group cl.Group) error {
	if p == nil {
		return fmt.Errorf("keygen: nil public key material")
	}
	if p.L < 1 || len(p.H) != p.L+1 || len(p.Quorum) != p.Threshold() || !p.Quorum.Valid() {
		return fmt.Errorf("keygen: inconsistent public key material")
	}
	if p.Scale == nil || !group.Valid(p.EncryptionKey) || !p.EncryptedX.Valid(group) || p.X == nil {
		return fmt.Errorf("keygen: incomplete public key material")
	}
	for _, id := range p.Quorum {
		if !group.Valid(p.EncryptionShares[id]) {
			return fmt.Errorf("keygen: missing encryption share of %v", id)
		}
		if p.Variant == WMC24 && p.ElGamalShares[id] == nil {
			return fmt.Errorf("keygen: missing ElGamal share of %v", id)
		}
	}
	if p.Variant == WMC24 && p.ElGamalKey == nil {
		return fmt.Errorf("keygen: missing ElGamal key")
	}
	return nil
}

var encMode, _ = cbor.CanonicalEncOptions().EncMode()

// WriteTo implements io.WriterTo, so that sessions using this key can be bound to it.
func (p *Public) WriteTo(w io.Writer) (int64, error) {
	data, err := encMode.Marshal(p)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Public) Domain() string { return "keygen.Public" }

// plainKeyMaterial has the fields of KeyMaterial without its marshalling methods.
type plainKeyMaterial KeyMaterial

// MarshalBinary encodes the key material with cbor.
func (k *KeyMaterial) MarshalBinary() ([]byte, error) {
	return encMode.Marshal((*plainKeyMaterial)(k))
}

// UnmarshalBinary decodes key material produced by MarshalBinary.
func (k *KeyMaterial) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, (*plainKeyMaterial)(k))
}
