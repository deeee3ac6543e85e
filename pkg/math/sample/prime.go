package sample

import (
	"errors"
	"io"
	"math"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
)

// primes generates an array containing all the odd prime numbers < below
func primes(below uint32) []uint32 {
	sieve := make([]bool, below)
	for i := 2; i < len(sieve); i++ {
		sieve[i] = true
	}
	for p := 2; p*p < len(sieve); p++ {
		if !sieve[p] {
			continue
		}
		for i := p << 1; i < len(sieve); i += p {
			sieve[i] = false
		}
	}
	// It is believed that there are approximately N / log N primes below N, so this
	// bounds is a decent estimate of our output size
	nF := float64(below)
	out := make([]uint32, 0, int(nF/math.Log(nF)))
	for p := uint32(3); p < below; p++ {
		if sieve[p] {
			out = append(out, p)
		}
	}
	return out
}

// The number of numbers to check after our initial prime guess
const sieveSize = 1 << 16

// The upper bound on the prime numbers used for sieving
const primeBound = 1 << 16

// the number of iterations to use when checking primality
//
// 20 is the same number that Go uses internally.
const primalityIterations = 20

// minPrimeBits keeps every candidate above primeBound, so the sieve never removes the prime itself.
const minPrimeBits = 32

var ErrPrimeSize = errors.New("sample: prime size must be at least 32 bits")

var thePrimes []uint32
var initPrimes sync.Once

var sievePool = sync.Pool{
	New: func() any {
		sieve := make([]bool, sieveSize)
		return &sieve
	},
}

// tryPrime looks for a prime of exactly bits bits in a window after a random odd start,
// returning nil when the window holds none.
func tryPrime(rand io.Reader, bits int) *saferith.Nat {
	initPrimes.Do(func() {
		thePrimes = primes(primeBound)
	})

	bytes := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rand, bytes); err != nil {
		return nil
	}
	lastBits := uint(bits % 8)
	if lastBits == 0 {
		lastBits = 8
	}
	bytes[0] &= uint8(int(1<<lastBits) - 1)
	// Setting the top two bits makes the product of two such primes exactly 2⋅bits long.
	if lastBits >= 2 {
		bytes[0] |= 0b11 << (lastBits - 2)
	} else {
		bytes[0] |= 1
		bytes[1] |= 0b1000_0000
	}
	bytes[len(bytes)-1] |= 1
	base := new(big.Int).SetBytes(bytes)

	sievePtr := sievePool.Get().(*[]bool)
	sieve := *sievePtr
	defer sievePool.Put(sievePtr)
	// base is odd, so only even offsets remain candidates
	for i := 0; i < len(sieve); i++ {
		sieve[i] = i%2 == 0
	}
	remainder := new(big.Int)
	for _, prime := range thePrimes {
		remainder.SetUint64(uint64(prime))
		remainder.Mod(base, remainder)
		r := int(remainder.Uint64())
		primeInt := int(prime)
		firstMultiple := primeInt - r
		if r == 0 {
			firstMultiple = 0
		}
		for i := firstMultiple; i < len(sieve); i += primeInt {
			sieve[i] = false
		}
	}
	p := new(big.Int)
	for delta := 0; delta < len(sieve); delta++ {
		if !sieve[delta] {
			continue
		}
		p.SetUint64(uint64(delta))
		p.Add(p, base)
		if p.BitLen() > bits {
			return nil
		}
		if !p.ProbablyPrime(primalityIterations) {
			continue
		}
		return new(saferith.Nat).SetBig(p, bits)
	}
	return nil
}

// Prime returns a random prime of exactly bits bits, with its top two bits set.
func Prime(rand io.Reader, bits int) (*saferith.Nat, error) {
	if bits < minPrimeBits {
		return nil, ErrPrimeSize
	}
	for i := 0; i < maxIterations; i++ {
		if p := tryPrime(rand, bits); p != nil {
			return p, nil
		}
	}
	return nil, ErrMaxIterations
}

// Primes searches count primes of bits bits on the worker pool.
func Primes(rand io.Reader, bits, count int, pl *pool.Pool) ([]*saferith.Nat, error) {
	if bits < minPrimeBits {
		return nil, ErrPrimeSize
	}
	reader := pool.NewLockedReader(rand)
	out := pool.Search(pl, count, func() (*saferith.Nat, bool) {
		p := tryPrime(reader, bits)
		return p, p != nil
	})
	return out, nil
}
