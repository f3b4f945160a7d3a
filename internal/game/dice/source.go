package dice

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a cryptographically secure value in [0, 1).
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	// 53 random bits give an exactly representable float in [0, 1).
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// seededSource is a deterministic Source for tests and replays.
type seededSource struct {
	r *mrand.Rand
}

// NewSeededSource returns a deterministic Source. Two sources built from the
// same seed produce the same sequence.
func NewSeededSource(seed int64) Source {
	return &seededSource{r: mrand.New(mrand.NewSource(seed))}
}

// Float64 returns the next value in [0, 1).
func (s *seededSource) Float64() float64 {
	return s.r.Float64()
}

// Fixed is a Source that always returns the same value. Values outside
// [0, 1) are clamped just inside the range.
type Fixed float64

// Float64 returns the fixed value.
func (f Fixed) Float64() float64 {
	switch {
	case f < 0:
		return 0
	case f >= 1:
		return 1 - 1e-12
	}
	return float64(f)
}
