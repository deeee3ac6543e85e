package test

import (
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/math/sample"
)

// Modulus is a 1024 bit RSA modulus whose factors were thrown away after generation.
const Modulus = "a09bae27e9ef3c97fefae6b0e7fa32656dc999000b18acf403e44a195d0210d9" +
	"2a890cffcc635ff1da82ced16c7acbb0bdcd20515e35459a688f816b6cfcfc77" +
	"ab5fac16568e63e58520898ee1731b6950263813613da2751b41cc1c2d57ef95" +
	"d85987e511c30431ad7375b4f619a55f02e4c99dfac686201902d714920841cf"

var (
	group     *cl.NSquare
	groupOnce sync.Once
)

// Group returns the group built on Modulus, shared by all tests.
func Group() *cl.NSquare {
	groupOnce.Do(func() {
		n, ok := new(big.Int).SetString(Modulus, 16)
		if !ok {
			panic("test: invalid modulus")
		}
		g, err := cl.New(new(saferith.Nat).SetBig(n, n.BitLen()))
		if err != nil {
			panic(err)
		}
		group = g
	})
	return group
}

// Source returns a reproducible randomness source.
func Source(seed uint64) *sample.Source {
	return sample.Seeded(seed)
}
