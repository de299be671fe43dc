package dbm

import (
	"fmt"

	"github.com/roach88/zones/internal/bound"
)

// Constraint is x_I - x_J ◁ Bound. It is built independently of any
// zone; the clock indices are checked against a zone's dimension when the
// constraint is applied.
type Constraint struct {
	I, J  int
	Bound bound.Bound
}

// NewConstraint builds x_i - x_j ◁ magnitude, with ◁ being "<" when
// strict and "≤" otherwise.
func NewConstraint(i, j int, magnitude int64, strict bool) (Constraint, error) {
	const op = "NewConstraint"
	if i < 0 || j < 0 {
		return Constraint{}, newError(CodeClockIndex, op, "negative clock index in (%d,%d)", i, j)
	}
	if i == j {
		return Constraint{}, newError(CodeClockIndex, op, "constraint relates clock %d to itself", i)
	}
	b, err := bound.Make(magnitude, strict)
	if err != nil {
		return Constraint{}, fmt.Errorf("dbm.%s: %w", op, err)
	}
	return Constraint{I: i, J: j, Bound: b}, nil
}

// MustConstraint is like NewConstraint but panics on error.
// Use only in tests or with constant inputs.
func MustConstraint(i, j int, magnitude int64, strict bool) Constraint {
	c, err := NewConstraint(i, j, magnitude, strict)
	if err != nil {
		panic(err)
	}
	return c
}

// UpperBound returns x_k ◁ magnitude.
func UpperBound(k int, magnitude int64, strict bool) (Constraint, error) {
	return NewConstraint(k, 0, magnitude, strict)
}

// LowerBound returns magnitude ◁ x_k, i.e. 0 - x_k ◁ -magnitude.
func LowerBound(k int, magnitude int64, strict bool) (Constraint, error) {
	return NewConstraint(0, k, -magnitude, strict)
}

// IsStrict reports whether the constraint uses "<".
func (c Constraint) IsStrict() bool { return c.Bound.IsStrict() }

// Value returns the constraint's integer bound.
func (c Constraint) Value() int64 { return c.Bound.Magnitude() }

// String renders the constraint with the default x<i> clock names.
func (c Constraint) String() string { return c.Format(DefaultNames) }

// Format renders the constraint with the given clock names, using the
// same conventions as Zone.Format for a single inequality.
func (c Constraint) Format(names ClockNamer) string {
	if names == nil {
		names = DefaultNames
	}
	return formatInequality(c.I, c.J, c.Bound, names)
}

func (c Constraint) validFor(op string, dim int) error {
	if c.I < 0 || c.I >= dim || c.J < 0 || c.J >= dim {
		return newError(CodeClockIndex, op, "constraint on (%d,%d) outside dimension %d", c.I, c.J, dim)
	}
	if c.I == c.J {
		return newError(CodeClockIndex, op, "constraint relates clock %d to itself", c.I)
	}
	if !c.Bound.IsInfinity() {
		if v := c.Bound.Magnitude(); v > maxDerivedMagnitude || v < -maxDerivedMagnitude {
			return newError(CodeInvalidValue, op, "constraint bound %d out of range", v)
		}
	}
	return nil
}

// maxDerivedMagnitude bounds any entry of a zone built from representable
// inputs: a shortest path crosses fewer than MaxDimension edges. Extracted
// constraints can be re-applied as long as they stay below it.
const maxDerivedMagnitude = bound.MaxMagnitude * MaxDimension
