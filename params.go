package bloomgo

import "math"

// log2Squared is ln(2)^2, the denominator of the optimal bit-count formula.
const log2Squared = 0.480453013918201

// parameters holds the sizing derived from the estimated element count and
// the target false-positive probability. It is recomputed on import from the
// persisted scalars and never serialized itself.
type parameters struct {
	numberBits   uint64 // m
	numberHashes uint   // k
	byteLength   uint64 // ceil(m/8)
}

// deriveParameters computes the optimal m and k for n elements at target p.
//
//	m = ceil(-n * ln(p) / ln(2)^2)
//	k = round(ln(2) * m / n)
//
// p is the float32-rounded probability so that a filter recomputed from its
// persisted trailer reproduces identical sizing.
//
// The derivation does not clamp k: a sufficiently small p-to-n ratio can
// yield k == 0, which makes Add a no-op. Callers are warned through the
// configured logger rather than having the value silently adjusted, since
// persisted filters depend on the derivation being stable.
func deriveParameters(estimatedElements uint64, falsePositiveRate float32) parameters {
	n := float64(estimatedElements)
	p := float64(falsePositiveRate)

	m := uint64(math.Ceil(-n * math.Log(p) / log2Squared))
	k := uint(math.Round(math.Ln2 * float64(m) / n))

	return parameters{
		numberBits:   m,
		numberHashes: k,
		byteLength:   (m + 7) / 8,
	}
}

// validateParameters rejects out-of-range inputs before any allocation.
// Callers pass the float32-rounded rate: that is the value derivation and
// the persisted trailer use, and float32 conversion can push a rate that
// was inside (0, 1) as a float64 onto either boundary.
func validateParameters(estimatedElements uint64, falsePositiveRate float64) error {
	if estimatedElements == 0 {
		return &ErrInvalidEstimatedElements{EstimatedElements: estimatedElements}
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		return &ErrInvalidFalsePositiveRate{FalsePositiveRate: falsePositiveRate}
	}
	return nil
}
