package curve

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// PairingEqual reports whether e(a, b) = e(c, d).
func PairingEqual(a *G1, b *G2, c *G1, d *G2) bool {
	negC := c.Negate()
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{a.affine(), negC.affine()},
		[]bls12381.G2Affine{b.affine(), d.affine()},
	)
	return err == nil && ok
}
