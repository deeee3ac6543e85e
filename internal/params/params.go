package params

const (
	// SecParam is the statistical security parameter λ.
	SecParam = 128
	SecBytes = SecParam / 8

	// BitsScalar is the bit length of the BLS12-381 scalar field order q.
	BitsScalar  = 255
	BytesScalar = 32

	// BitsChallenge bounds the Fiat-Shamir challenges, which are curve scalars.
	BitsChallenge = BitsScalar

	// BitsIntModN is the default size of the group modulus N.
	// The group itself lives in ℤ/N², with elements of twice that size.
	BitsIntModN  = 1024
	BytesIntModN = BitsIntModN / 8

	// BitsSecondModulus is the size of the fresh prime q' sampled for each
	// dual modulus proof.
	BitsSecondModulus = SecParam

	// BytesDigest is the amount of hash output read when deriving a challenge scalar,
	// which leaves a negligible bias after reduction mod q.
	BytesDigest = 2 * BytesScalar
)

// MaskBits returns the size of the random mask hiding e⋅w in a Sigma protocol response,
// where w has witnessBits bits.
func MaskBits(witnessBits int) int {
	return witnessBits + BitsChallenge + SecParam
}
