package dbm

// IncludesPoint reports whether the valuation point lies in z. point[i]
// is the value of clock i; point[0] is the reference clock and must be 0.
func (z Zone) IncludesPoint(point []int64) (bool, error) {
	const op = "IncludesPoint"
	if err := z.check(op); err != nil {
		return false, err
	}
	if len(point) != z.dim {
		return false, newError(CodeInvalidPoint, op, "point has %d coordinates, want %d", len(point), z.dim)
	}
	if point[0] != 0 {
		return false, newError(CodeInvalidPoint, op, "reference coordinate is %d, want 0", point[0])
	}
	if z.IsEmpty() {
		return false, nil
	}
	for i := 0; i < z.dim; i++ {
		for j := 0; j < z.dim; j++ {
			if i != j && !z.at(i, j).Satisfies(point[i]-point[j]) {
				return false, nil
			}
		}
	}
	return true, nil
}

// IncludesZero reports whether the valuation with every clock at 0 lies in z.
func (z Zone) IncludesZero() (bool, error) {
	if err := z.check("IncludesZero"); err != nil {
		return false, err
	}
	return z.IncludesPoint(make([]int64, z.dim))
}
