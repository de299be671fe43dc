package dbm

import "github.com/roach88/zones/internal/bound"

// Zone is an immutable, canonical difference-bound matrix.
//
// dim counts the reference clock, so a zone over clocks x1..xn has
// dim n+1. A nil cells slice with dim > 0 is the empty zone.
// The zero Zone is invalid.
type Zone struct {
	dim   int
	cells []bound.Bound
}

// Zero returns the zone where every clock equals 0.
func Zero(dim int) (Zone, error) {
	if err := validDimension("Zero", dim); err != nil {
		return Zone{}, err
	}
	m := newMatrix(dim)
	m.fill(bound.LEZero)
	return m.freeze(), nil
}

// Universe returns the unconstrained zone: all clocks non-negative,
// nothing else known. Its minimal constraint set is empty.
func Universe(dim int) (Zone, error) {
	if err := validDimension("Universe", dim); err != nil {
		return Zone{}, err
	}
	m := newMatrix(dim)
	m.fillUniverse()
	return m.freeze(), nil
}

// Empty returns the canonical empty zone of the given dimension.
func Empty(dim int) (Zone, error) {
	if err := validDimension("Empty", dim); err != nil {
		return Zone{}, err
	}
	return Zone{dim: dim}, nil
}

// FromMatrix closes a raw square matrix into a zone. rows[i][j] bounds
// x_i - x_j; the diagonal must be exactly ≤ 0 and finite entries must be
// representable. Entries may be loose; the result is canonical, or empty
// when the constraints are unsatisfiable. Row 0 entries looser than
// x_j >= 0 are tightened to it.
func FromMatrix(rows [][]bound.Bound) (Zone, error) {
	const op = "FromMatrix"
	dim := len(rows)
	if err := validDimension(op, dim); err != nil {
		return Zone{}, err
	}
	m := newMatrix(dim)
	for i, row := range rows {
		if len(row) != dim {
			return Zone{}, newError(CodeInvalidMatrix, op, "row %d has %d entries, want %d", i, len(row), dim)
		}
		for j, b := range row {
			if i == j && b != bound.LEZero {
				return Zone{}, newError(CodeInvalidMatrix, op, "diagonal entry %d is %v, want <=0", i, b)
			}
			if b.IsInfinity() {
				b = bound.Infinity
			} else if _, err := bound.Make(b.Magnitude(), b.IsStrict()); err != nil {
				return Zone{}, newError(CodeInvalidMatrix, op, "entry (%d,%d): %v", i, j, err)
			}
			// Clocks are never negative.
			if i == 0 && j > 0 {
				b = bound.Min(b, bound.LEZero)
			}
			m.set(i, j, b)
		}
	}
	return closeAndFreeze(m), nil
}

// closeAndFreeze closes m and returns it as a zone, or the empty zone.
func closeAndFreeze(m *matrix) Zone {
	if !m.close() {
		return Zone{dim: m.dim}
	}
	return m.freeze()
}

// Dim returns the matrix dimension, i.e. the number of clocks plus one.
func (z Zone) Dim() int { return z.dim }

// Clocks returns the number of non-reference clocks.
func (z Zone) Clocks() int {
	if z.dim == 0 {
		return 0
	}
	return z.dim - 1
}

// IsValid reports whether z was produced by a constructor or operation
// (as opposed to the zero Zone).
func (z Zone) IsValid() bool { return z.dim > 0 }

// IsEmpty reports whether z accepts no valuation.
func (z Zone) IsEmpty() bool { return z.dim > 0 && z.cells == nil }

// At returns the canonical bound on x_i - x_j.
func (z Zone) At(i, j int) (bound.Bound, error) {
	const op = "At"
	if err := z.check(op); err != nil {
		return 0, err
	}
	if z.IsEmpty() {
		return 0, newError(CodeEmptyZone, op, "empty zone has no entries")
	}
	if i < 0 || i >= z.dim || j < 0 || j >= z.dim {
		return 0, newError(CodeClockIndex, op, "entry (%d,%d) outside %dx%d matrix", i, j, z.dim, z.dim)
	}
	return z.cells[i*z.dim+j], nil
}

// Matrix returns a copy of the canonical matrix, or nil for an empty or
// invalid zone.
func (z Zone) Matrix() [][]bound.Bound {
	if z.cells == nil {
		return nil
	}
	rows := make([][]bound.Bound, z.dim)
	for i := range rows {
		rows[i] = make([]bound.Bound, z.dim)
		copy(rows[i], z.cells[i*z.dim:(i+1)*z.dim])
	}
	return rows
}

func (z Zone) at(i, j int) bound.Bound { return z.cells[i*z.dim+j] }

// mutable returns a private copy of z's storage.
func (z Zone) mutable() *matrix { return copyMatrix(z.dim, z.cells) }

func (z Zone) check(op string) error {
	if z.dim <= 0 {
		return newError(CodeInvalidZone, op, "zero Zone value; construct zones with Zero, Universe or FromMatrix")
	}
	return nil
}

func (z Zone) checkClock(op string, k int) error {
	if k <= 0 || k >= z.dim {
		return errClockIndex(op, k, z.dim)
	}
	return nil
}

func (z Zone) checkPair(op string, o Zone) error {
	if err := z.check(op); err != nil {
		return err
	}
	if err := o.check(op); err != nil {
		return err
	}
	if z.dim != o.dim {
		return errDimensionMismatch(op, z.dim, o.dim)
	}
	return nil
}
