package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/zones/internal/ir"
)

// CompileZone parses a CUE value into a ZoneSpec.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The CUE value should be the zone struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`zone: Door: { clocks: ["x"], constraints: ["x <= 5"] }`)
//	spec, err := CompileZone(v.LookupPath(cue.ParsePath("zone.Door")))
//
// CompileZone checks structure only; use Validate for semantic checks.
func CompileZone(v cue.Value) (*ir.ZoneSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ZoneSpec{Init: ir.InitUniverse}

	// Zone name comes from the struct label (the last path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	clocksVal := v.LookupPath(cue.ParsePath("clocks"))
	if !clocksVal.Exists() {
		return nil, &CompileError{
			Field:   "clocks",
			Message: "clocks is required",
			Pos:     v.Pos(),
		}
	}
	clocks, err := parseClocks(clocksVal)
	if err != nil {
		return nil, err
	}
	spec.Clocks = clocks

	if initVal := v.LookupPath(cue.ParsePath("init")); initVal.Exists() {
		start, err := initVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Init = start
	}

	if elapseVal := v.LookupPath(cue.ParsePath("elapse")); elapseVal.Exists() {
		elapse, err := elapseVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Elapse = elapse
	}

	// constraints is optional; a spec without any is its init zone.
	spec.Constraints = []ir.ConstraintSpec{}
	if consVal := v.LookupPath(cue.ParsePath("constraints")); consVal.Exists() {
		spec.Constraints, err = parseConstraints(consVal)
		if err != nil {
			return nil, err
		}
	}

	return spec, nil
}

// CompileZones compiles every zone declared under the top-level "zone"
// field of v, in declaration order.
func CompileZones(v cue.Value) ([]*ir.ZoneSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	zonesVal := v.LookupPath(cue.ParsePath("zone"))
	if !zonesVal.Exists() {
		return nil, nil
	}
	iter, err := zonesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*ir.ZoneSpec
	for iter.Next() {
		spec, err := CompileZone(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", iter.Selector(), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseClocks reads the clock name list. Names are NFC-normalised so that
// visually identical names compare equal.
func parseClocks(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	clocks := []string{}
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "clocks",
				Message: "clock names must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		clocks = append(clocks, norm.NFC.String(name))
	}
	return clocks, nil
}

// parseConstraints reads the constraint list. Each entry is either a
// string in the constraint syntax or a struct with left, right, op and
// bound fields.
func parseConstraints(v cue.Value) ([]ir.ConstraintSpec, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	constraints := []ir.ConstraintSpec{}
	for i := 0; iter.Next(); i++ {
		c, err := parseConstraint(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}
	return constraints, nil
}

func parseConstraint(v cue.Value, index int) (ir.ConstraintSpec, error) {
	field := fmt.Sprintf("constraints[%d]", index)

	if v.IncompleteKind() == cue.StringKind {
		text, err := v.String()
		if err != nil {
			return ir.ConstraintSpec{}, formatCUEError(err)
		}
		c, err := ParseConstraint(text)
		if err != nil {
			return ir.ConstraintSpec{}, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return c, nil
	}

	if v.IncompleteKind() != cue.StructKind {
		return ir.ConstraintSpec{}, &CompileError{
			Field:   field,
			Message: "must be a string or a struct with left, op and bound",
			Pos:     v.Pos(),
		}
	}

	var c ir.ConstraintSpec
	for _, f := range []struct {
		name     string
		dst      *string
		required bool
	}{
		{"left", &c.Left, true},
		{"right", &c.Right, false},
		{"op", &c.Op, true},
	} {
		fv := v.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			if f.required {
				return ir.ConstraintSpec{}, &CompileError{
					Field:   field + "." + f.name,
					Message: f.name + " is required",
					Pos:     v.Pos(),
				}
			}
			continue
		}
		s, err := fv.String()
		if err != nil {
			return ir.ConstraintSpec{}, formatCUEError(err)
		}
		*f.dst = s
	}
	c.Left = norm.NFC.String(c.Left)
	c.Right = norm.NFC.String(c.Right)

	boundVal := v.LookupPath(cue.ParsePath("bound"))
	if !boundVal.Exists() {
		return ir.ConstraintSpec{}, &CompileError{
			Field:   field + ".bound",
			Message: "bound is required",
			Pos:     v.Pos(),
		}
	}
	b, err := boundVal.Int64()
	if err != nil {
		return ir.ConstraintSpec{}, &CompileError{
			Field:   field + ".bound",
			Message: "bound must be an integer",
			Pos:     boundVal.Pos(),
		}
	}
	c.Bound = b
	return c, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
