package dbm

// MinimalConstraints returns the non-redundant constraints of z in
// row-major order. Applying them to Universe(z.Dim()) yields z again.
// The universal zone has none.
func (z Zone) MinimalConstraints() ([]Constraint, error) {
	g, err := z.MinimalGraph()
	if err != nil {
		return nil, err
	}
	cs := make([]Constraint, 0, g.Len())
	g.Each(func(i, j int) {
		cs = append(cs, Constraint{I: i, J: j, Bound: z.at(i, j)})
	})
	return cs, nil
}

// Constraints returns every finite off-diagonal entry of z in row-major
// order.
func (z Zone) Constraints() ([]Constraint, error) {
	const op = "Constraints"
	if err := z.check(op); err != nil {
		return nil, err
	}
	if z.IsEmpty() {
		return nil, newError(CodeEmptyZone, op, "empty zone has no constraints")
	}
	var cs []Constraint
	for i := 0; i < z.dim; i++ {
		for j := 0; j < z.dim; j++ {
			if i == j {
				continue
			}
			if b := z.at(i, j); !b.IsInfinity() {
				cs = append(cs, Constraint{I: i, J: j, Bound: b})
			}
		}
	}
	return cs, nil
}
