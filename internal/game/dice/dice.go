// Package dice provides the randomness abstraction used to jitter sector
// angles, so idle combatants do not stack on exact centres, and exposed to
// scripts.
package dice

// Source is the randomness provider.
//
// Implementations used by a single group need not be safe for concurrent use;
// the crypto source is.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// Uniform returns a value uniformly distributed in [lo, hi).
//
// Precondition: src must be non-nil.
// Postcondition: lo <= result < hi when lo < hi; result == lo when lo == hi.
func Uniform(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}
