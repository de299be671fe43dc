package dbm

import "github.com/roach88/zones/internal/bound"

// Intersect returns the zone of valuations in both z and o. The result can
// be empty even when neither operand is.
func (z Zone) Intersect(o Zone) (Zone, error) {
	if err := z.checkPair("Intersect", o); err != nil {
		return Zone{}, err
	}
	return z.intersect(o), nil
}

func (z Zone) intersect(o Zone) Zone {
	if z.IsEmpty() || o.IsEmpty() {
		return Zone{dim: z.dim}
	}
	m := z.mutable()
	changed := false
	for idx, b := range o.cells {
		if b < m.cells[idx] {
			m.cells[idx] = b
			changed = true
		}
	}
	if !changed {
		return z
	}
	return closeAndFreeze(m)
}

// HaveIntersection reports whether z and o share at least one valuation.
func (z Zone) HaveIntersection(o Zone) (bool, error) {
	if err := z.checkPair("HaveIntersection", o); err != nil {
		return false, err
	}
	if z.IsEmpty() || o.IsEmpty() {
		return false, nil
	}
	// Two closed zones are disjoint iff some pair of opposite entries
	// forms a negative cycle.
	for i := 0; i < z.dim; i++ {
		for j := 0; j < z.dim; j++ {
			if i == j {
				continue
			}
			if bound.Add(z.at(i, j), o.at(j, i)) < bound.LEZero {
				return false, nil
			}
		}
	}
	return !z.intersect(o).IsEmpty(), nil
}

// Constrain intersects z with each constraint in turn. All constraints are
// checked against z's dimension before any is applied.
func (z Zone) Constrain(cs ...Constraint) (Zone, error) {
	const op = "Constrain"
	if err := z.check(op); err != nil {
		return Zone{}, err
	}
	for _, c := range cs {
		if err := c.validFor(op, z.dim); err != nil {
			return Zone{}, err
		}
	}
	if z.IsEmpty() || len(cs) == 0 {
		return z, nil
	}
	m := z.mutable()
	for _, c := range cs {
		if !m.constrain(c.I, c.J, c.Bound) {
			return Zone{dim: z.dim}, nil
		}
	}
	return m.freeze(), nil
}

// Up lets time elapse: every upper bound x_i - x_0 is removed while all
// differences between clocks are kept.
func (z Zone) Up() (Zone, error) {
	if err := z.check("Up"); err != nil {
		return Zone{}, err
	}
	if z.IsEmpty() {
		return z, nil
	}
	m := z.mutable()
	for i := 1; i < m.dim; i++ {
		m.set(i, 0, bound.Infinity)
	}
	return closeAndFreeze(m), nil
}

// Free projects clock k out: x_k becomes any non-negative value,
// unrelated to the other clocks.
func (z Zone) Free(k int) (Zone, error) {
	const op = "Free"
	if err := z.check(op); err != nil {
		return Zone{}, err
	}
	if err := z.checkClock(op, k); err != nil {
		return Zone{}, err
	}
	if z.IsEmpty() {
		return z, nil
	}
	m := z.mutable()
	m.free(k)
	return closeAndFreeze(m), nil
}

// free removes every constraint on clock k except x_k ≥ 0.
// x_i - x_k is then bounded by x_i - x_0, since x_k may be 0.
func (m *matrix) free(k int) {
	for i := 0; i < m.dim; i++ {
		if i == k {
			continue
		}
		m.set(k, i, bound.Infinity)
		m.set(i, k, m.at(i, 0))
	}
	m.set(0, k, bound.LEZero)
}

// UpdateValue resets clock k to value: whatever z said about x_k is
// dropped and x_k = value is imposed, the other clocks unchanged.
func (z Zone) UpdateValue(k int, value int64) (Zone, error) {
	const op = "UpdateValue"
	if err := z.check(op); err != nil {
		return Zone{}, err
	}
	if err := z.checkClock(op, k); err != nil {
		return Zone{}, err
	}
	if value < 0 {
		return Zone{}, newError(CodeInvalidValue, op, "clock value %d is negative", value)
	}
	upper, err := bound.Make(value, false)
	if err != nil {
		return Zone{}, newError(CodeInvalidValue, op, "clock value: %v", err)
	}
	if z.IsEmpty() {
		return z, nil
	}
	m := z.mutable()
	m.free(k)
	m.set(k, 0, upper)
	m.set(0, k, bound.LE(-value))
	return closeAndFreeze(m), nil
}
