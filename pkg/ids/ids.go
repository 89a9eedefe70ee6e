package ids

import (
	"math/rand/v2"
	"strings"

	petname "github.com/dustinkirkland/golang-petname"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MaxDigits is the widest decimal id that still fits in a uint64
const MaxDigits = 19

// NewToken returns a uniformly random alphanumeric string of exactly length
// characters. A non-positive length yields the empty string.
func NewToken(length int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return b.String()
}

// NewNumericID returns a random number with exactly digits decimal digits,
// uniform over [10^(digits-1), 10^digits - 1]. digits is clamped to 1..19.
func NewNumericID(digits int) uint64 {
	if digits < 1 {
		digits = 1
	}
	if digits > MaxDigits {
		digits = MaxDigits
	}
	lo := pow10(digits - 1)
	hi := pow10(digits) - 1
	return lo + rand.Uint64N(hi-lo+1)
}

// BatchName returns name without surrounding whitespace, or a generated
// two-word name when nothing is left.
func BatchName(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return petname.Generate(2, "-")
}

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
