package dbm

import "github.com/roach88/zones/internal/bound"

// MaxDimension caps the matrix side. Closure sums of at most MaxDimension
// finite bounds stay well inside the int64 encoding.
const MaxDimension = 1 << 12

// matrix is the mutable row-major storage a zone is built in. It is owned
// by exactly one constructing function and frozen into a Zone on return.
type matrix struct {
	dim   int
	cells []bound.Bound
}

func newMatrix(dim int) *matrix {
	return &matrix{dim: dim, cells: make([]bound.Bound, dim*dim)}
}

// copyMatrix duplicates cells so the copy can be mutated freely.
func copyMatrix(dim int, cells []bound.Bound) *matrix {
	m := &matrix{dim: dim, cells: make([]bound.Bound, len(cells))}
	copy(m.cells, cells)
	return m
}

func (m *matrix) at(i, j int) bound.Bound { return m.cells[i*m.dim+j] }

func (m *matrix) set(i, j int, b bound.Bound) { m.cells[i*m.dim+j] = b }

// tighten lowers (i, j) to b if b is tighter. It reports whether it did.
func (m *matrix) tighten(i, j int, b bound.Bound) bool {
	idx := i*m.dim + j
	if b < m.cells[idx] {
		m.cells[idx] = b
		return true
	}
	return false
}

// fill sets every entry to b and the diagonal to ≤ 0.
func (m *matrix) fill(b bound.Bound) {
	for i := range m.cells {
		m.cells[i] = b
	}
	for i := 0; i < m.dim; i++ {
		m.set(i, i, bound.LEZero)
	}
}

// fillUniverse writes the unconstrained zone: every clock is ≥ 0 and
// nothing else is known.
func (m *matrix) fillUniverse() {
	m.fill(bound.Infinity)
	for j := 1; j < m.dim; j++ {
		m.set(0, j, bound.LEZero)
	}
}

// freeze hands the storage over to an immutable Zone.
func (m *matrix) freeze() Zone {
	return Zone{dim: m.dim, cells: m.cells}
}

func validDimension(op string, dim int) error {
	if dim < 1 || dim > MaxDimension {
		return newError(CodeInvalidDimension, op, "dimension %d not in [1, %d]", dim, MaxDimension)
	}
	return nil
}
