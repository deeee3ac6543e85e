package sample

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/taurusgroup/threshold-bbs/pkg/pool"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
)

const sourceContext = "threshold-bbs 2024 sample.Source stream derivation"

// Source holds the two randomness streams used by a protocol execution:
// one for curve scalars and one for integers of the unknown order group.
//
// A seeded Source is fully reproducible. Sources handed to concurrent workers
// should be obtained through Fork, so that every worker reads its own stream.
type Source struct {
	scalarSeed []byte
	intSeed    []byte

	scalars io.Reader
	ints    io.Reader
}

// NewSource returns a Source whose streams are determined by the two seeds.
func NewSource(scalarSeed, intSeed []byte) *Source {
	s := &Source{
		scalarSeed: append([]byte{}, scalarSeed...),
		intSeed:    append([]byte{}, intSeed...),
	}
	s.scalars = newStream(s.scalarSeed)
	s.ints = newStream(s.intSeed)
	return s
}

// Seeded derives both streams from a single integer seed.
func Seeded(seed uint64) *Source {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	return NewSource(derive(buf[:], "scalars"), derive(buf[:], "integers"))
}

// Random returns a Source reading crypto/rand.
func Random() *Source {
	r := pool.NewLockedReader(rand.Reader)
	return &Source{scalars: r, ints: r}
}

// Scalars is the stream to sample curve scalars from.
func (s *Source) Scalars() io.Reader { return s.scalars }

// Ints is the stream to sample group exponents and primes from.
func (s *Source) Ints() io.Reader { return s.ints }

// Seeded reports whether the Source is reproducible.
func (s *Source) Seeded() bool { return s.scalarSeed != nil }

// Fork returns an independent Source bound to label.
//
// Forking a seeded Source with the same label always gives the same streams,
// regardless of what has been read from the parent.
func (s *Source) Fork(label string) *Source {
	if !s.Seeded() {
		return &Source{scalars: s.scalars, ints: s.ints}
	}
	return NewSource(derive(s.scalarSeed, label), derive(s.intSeed, label))
}

func derive(seed []byte, label string) []byte {
	h := blake3.NewDeriveKey(sourceContext)
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(seed)))
	_, _ = h.Write(length[:])
	_, _ = h.Write(seed)
	_, _ = h.Write([]byte(label))
	return h.Sum(nil)
}

// stream is the ChaCha20 keystream keyed by a 32 byte seed.
type stream struct {
	cipher *chacha20.Cipher
}

func newStream(seed []byte) *stream {
	key := seed
	if len(key) != chacha20.KeySize {
		key = derive(seed, "key")
	}
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		panic(err)
	}
	return &stream{cipher: c}
}

func (s *stream) Read(p []byte) (int, error) {
	clear(p)
	s.cipher.XORKeyStream(p, p)
	return len(p), nil
}
