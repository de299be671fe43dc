package bound

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Bound is an encoded upper bound on a clock difference.
type Bound int64

// Representable range for constructed magnitudes. Sums produced by closure
// may exceed it; they stay far below the infinity sentinel for any
// supported dimension.
const (
	MaxMagnitude int64 = math.MaxInt32
	MinMagnitude int64 = -MaxMagnitude
)

const (
	weakBit           = 1
	infinityMagnitude = math.MaxInt64 >> 2
)

// Well-known bounds.
const (
	// Infinity means "no constraint". It is strict, as in < ∞.
	Infinity Bound = Bound(infinityMagnitude << 1)

	// LEZero is ≤ 0, the diagonal value of every canonical matrix.
	LEZero Bound = weakBit

	// LSZero is < 0.
	LSZero Bound = 0
)

// ErrOverflow is returned when a magnitude falls outside
// [MinMagnitude, MaxMagnitude].
var ErrOverflow = errors.New("bound magnitude out of representable range")

// Make encodes magnitude and strictness. Magnitudes outside the
// representable range fail with an error wrapping ErrOverflow.
func Make(magnitude int64, strict bool) (Bound, error) {
	if magnitude < MinMagnitude || magnitude > MaxMagnitude {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrOverflow, magnitude, MinMagnitude, MaxMagnitude)
	}
	return encode(magnitude, strict), nil
}

// MustMake is like Make but panics on overflow.
// Use only in tests or with constant inputs.
func MustMake(magnitude int64, strict bool) Bound {
	b, err := Make(magnitude, strict)
	if err != nil {
		panic(err)
	}
	return b
}

// LE returns ≤ magnitude. Panics on overflow.
func LE(magnitude int64) Bound { return MustMake(magnitude, false) }

// LT returns < magnitude. Panics on overflow.
func LT(magnitude int64) Bound { return MustMake(magnitude, true) }

func encode(magnitude int64, strict bool) Bound {
	raw := magnitude << 1
	if !strict {
		raw |= weakBit
	}
	return Bound(raw)
}

// Add returns a + b. Magnitudes add; the result is strict if either
// operand is strict, and Infinity if either operand is Infinity.
func Add(a, b Bound) Bound {
	if a.IsInfinity() || b.IsInfinity() {
		return Infinity
	}
	// weak+weak keeps one weak bit; any strict operand clears it.
	return a + b - ((a | b) & weakBit)
}

// Min returns the tighter of a and b.
func Min(a, b Bound) Bound {
	if a < b {
		return a
	}
	return b
}

// Compare orders bounds as upper limits: -1 if a is tighter than b,
// +1 if looser, 0 if identical.
func Compare(a, b Bound) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether b is strictly tighter than other.
func (b Bound) Less(other Bound) bool { return b < other }

// IsStrict reports whether the bound is "<" rather than "≤".
// Infinity is strict.
func (b Bound) IsStrict() bool { return b&weakBit == 0 }

// IsInfinity reports whether b is the "no constraint" sentinel.
func (b Bound) IsInfinity() bool { return b >= Infinity }

// Magnitude returns the integer part of the bound.
// For Infinity it returns a very large positive value; check IsInfinity first.
func (b Bound) Magnitude() int64 { return int64(b) >> 1 }

// Negate returns the bound on the reversed difference that is exactly
// complementary to b: for ≤ c it is < -c, for < c it is ≤ -c.
// Infinity has no complement and is returned unchanged.
func (b Bound) Negate() Bound {
	if b.IsInfinity() {
		return b
	}
	return encode(-b.Magnitude(), !b.IsStrict())
}

// Satisfies reports whether a difference value v satisfies v ◁ b.
func (b Bound) Satisfies(v int64) bool {
	if b.IsInfinity() {
		return true
	}
	if b.IsStrict() {
		return v < b.Magnitude()
	}
	return v <= b.Magnitude()
}

// Op returns "<" or "<=".
func (b Bound) Op() string {
	if b.IsStrict() {
		return "<"
	}
	return "<="
}

// String renders the bound as "<=3", "<-2" or "<inf".
func (b Bound) String() string {
	if b.IsInfinity() {
		return "<inf"
	}
	return b.Op() + strconv.FormatInt(b.Magnitude(), 10)
}
