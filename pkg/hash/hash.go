package hash

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of Sum.
const DigestLengthBytes = 64

// Hash is the hash function we use for Fiat-Shamir challenges and for deriving
// randomness from public data.
//
// Internally, this is a wrapper around blake3.Hasher, whose extendable output
// lets us read as many bytes as needed.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct where the internal hash function is initialized with "threshold-bbs".
func New() *Hash {
	hash := &Hash{h: blake3.New()}
	_ = hash.WriteAny(&BytesWithDomain{
		TheDomain: "Hash",
		Bytes:     []byte("threshold-bbs"),
	})
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - *big.Int
//   - *saferith.Nat
//   - *saferith.Int
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first four types.
// Integers are written in their minimal encoding, independent of announced lengths.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toBeWritten = &BytesWithDomain{"[]byte", t}
		case *big.Int:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *big.Int: nil")
			}
			bytes, _ := t.GobEncode()
			toBeWritten = &BytesWithDomain{"big.Int", bytes}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toBeWritten = &BytesWithDomain{"saferith.Nat", t.Big().Bytes()}
		case *saferith.Int:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Int: nil")
			}
			// The announced length of a saferith value is not part of its meaning,
			// so only the sign and the minimal magnitude are hashed.
			bytes := append([]byte{byte(t.IsNegative())}, t.Abs().Big().Bytes()...)
			toBeWritten = &BytesWithDomain{"saferith.Int", bytes}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", t)
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.Hash: write %T: %w", d, err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork returns a copy of the Hash, with the given data written to it.
//
// This is used to bind a proof to the protocol step and the sender it belongs to,
// without modifying the shared session hash.
func (hash *Hash) Fork(data ...interface{}) *Hash {
	h2 := hash.Clone()
	for _, d := range data {
		_ = h2.WriteAny(d)
	}
	return h2
}
