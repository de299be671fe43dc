package compiler

import (
	"fmt"

	"github.com/roach88/zones/internal/dbm"
	"github.com/roach88/zones/internal/ir"
)

// Lower translates the constraints of a validated spec into DBM
// constraints. Clock i of spec.Clocks is DBM index i+1; an empty or "0"
// right-hand side is the reference clock.
//
// ">=" and ">" are flipped into upper bounds on the reverse difference,
// and "==" yields both directions.
func Lower(spec *ir.ZoneSpec) ([]dbm.Constraint, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, fmt.Errorf("zone %s: %w", spec.Name, errs[0])
	}

	out := make([]dbm.Constraint, 0, len(spec.Constraints))
	for i, c := range spec.Constraints {
		left, _ := spec.ClockIndex(c.Left)
		right := 0
		if c.Right != "" && c.Right != ReferenceClock {
			right, _ = spec.ClockIndex(c.Right)
		}

		var lowered []dbm.Constraint
		var err error
		switch c.Op {
		case ir.OpLT:
			lowered, err = lowerOne(lowered, left, right, c.Bound, true)
		case ir.OpLE:
			lowered, err = lowerOne(lowered, left, right, c.Bound, false)
		case ir.OpGT:
			lowered, err = lowerOne(lowered, right, left, -c.Bound, true)
		case ir.OpGE:
			lowered, err = lowerOne(lowered, right, left, -c.Bound, false)
		case ir.OpEQ:
			lowered, err = lowerOne(lowered, left, right, c.Bound, false)
			if err == nil {
				lowered, err = lowerOne(lowered, right, left, -c.Bound, false)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("zone %s: constraints[%d]: %w", spec.Name, i, err)
		}
		out = append(out, lowered...)
	}
	return out, nil
}

func lowerOne(dst []dbm.Constraint, i, j int, magnitude int64, strict bool) ([]dbm.Constraint, error) {
	c, err := dbm.NewConstraint(i, j, magnitude, strict)
	if err != nil {
		return dst, err
	}
	return append(dst, c), nil
}

// Build constructs the zone a spec describes: the init zone, intersected
// with every constraint, then delayed if Elapse is set.
func Build(spec *ir.ZoneSpec) (dbm.Zone, error) {
	constraints, err := Lower(spec)
	if err != nil {
		return dbm.Zone{}, err
	}

	var z dbm.Zone
	switch spec.Init {
	case ir.InitZero:
		z, err = dbm.Zero(spec.Dim())
	default:
		z, err = dbm.Universe(spec.Dim())
	}
	if err != nil {
		return dbm.Zone{}, fmt.Errorf("zone %s: %w", spec.Name, err)
	}

	if z, err = z.Constrain(constraints...); err != nil {
		return dbm.Zone{}, fmt.Errorf("zone %s: %w", spec.Name, err)
	}
	if spec.Elapse {
		if z, err = z.Up(); err != nil {
			return dbm.Zone{}, fmt.Errorf("zone %s: %w", spec.Name, err)
		}
	}
	return z, nil
}

// Names returns the clock namer for a spec's zones.
func Names(spec *ir.ZoneSpec) dbm.ClockNamer {
	return dbm.NamesFrom(spec.Clocks)
}
