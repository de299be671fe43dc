package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/zones/internal/bound"
	"github.com/roach88/zones/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// ZoneSpec errors (E101-E109)
	ErrDuplicateClock    = "E101" // clock declared twice
	ErrUnknownClock      = "E102" // constraint names an undeclared clock
	ErrInvalidOp         = "E103" // operator not one of < <= == >= >
	ErrBoundOutOfRange   = "E104" // bound not representable
	ErrNoClocks          = "E105" // at least one clock required
	ErrInvalidInit       = "E106" // init not universe or zero
	ErrReservedClockName = "E107" // "0" names the reference clock
	ErrSameClock         = "E108" // constraint relates a clock to itself
)

// ReferenceClock is the reserved name of clock 0. It may appear on the
// right of a constraint but cannot be declared.
const ReferenceClock = "0"

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled ZoneSpec.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.ZoneSpec:
		return validateZoneSpec(spec)
	case ir.ZoneSpec:
		return validateZoneSpec(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateZoneSpec(spec *ir.ZoneSpec) []ValidationError {
	var errs []ValidationError

	// E105: at least one clock
	if len(spec.Clocks) == 0 {
		errs = append(errs, ValidationError{
			Field:   "clocks",
			Message: "at least one clock is required",
			Code:    ErrNoClocks,
		})
	}

	declared := make(map[string]bool, len(spec.Clocks))
	for i, name := range spec.Clocks {
		field := fmt.Sprintf("clocks[%d]", i)
		switch {
		case name == ReferenceClock:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("clock name %q is reserved for the reference clock", name),
				Code:    ErrReservedClockName,
			})
		case strings.TrimSpace(name) == "":
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "clock name must be non-empty",
				Code:    ErrUnknownClock,
			})
		case declared[name]:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate clock name: %q", name),
				Code:    ErrDuplicateClock,
			})
		}
		declared[name] = true
	}

	// E106: init must be universe or zero
	if !ir.ValidInits[spec.Init] {
		errs = append(errs, ValidationError{
			Field:   "init",
			Message: fmt.Sprintf("init must be one of %s, got %q", sortedKeys(ir.ValidInits), spec.Init),
			Code:    ErrInvalidInit,
		})
	}

	for i, c := range spec.Constraints {
		errs = append(errs, validateConstraint(c, fmt.Sprintf("constraints[%d]", i), declared)...)
	}

	return errs
}

func validateConstraint(c ir.ConstraintSpec, field string, declared map[string]bool) []ValidationError {
	var errs []ValidationError

	// E102: both sides must name declared clocks
	if !declared[c.Left] || c.Left == ReferenceClock {
		errs = append(errs, ValidationError{
			Field:   field + ".left",
			Message: fmt.Sprintf("unknown clock %q", c.Left),
			Code:    ErrUnknownClock,
		})
	}
	if c.Right != "" && c.Right != ReferenceClock && !declared[c.Right] {
		errs = append(errs, ValidationError{
			Field:   field + ".right",
			Message: fmt.Sprintf("unknown clock %q", c.Right),
			Code:    ErrUnknownClock,
		})
	}

	// E108: a clock minus itself is always 0
	if c.Right != "" && c.Left == c.Right {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("constraint relates clock %q to itself", c.Left),
			Code:    ErrSameClock,
		})
	}

	// E103: operator
	if !ir.ValidOps[c.Op] {
		errs = append(errs, ValidationError{
			Field:   field + ".op",
			Message: fmt.Sprintf("invalid operator %q, must be one of < <= == >= >", c.Op),
			Code:    ErrInvalidOp,
		})
	}

	// E104: bound must be representable
	if _, err := bound.Make(c.Bound, false); err != nil {
		errs = append(errs, ValidationError{
			Field:   field + ".bound",
			Message: fmt.Sprintf("bound %d not in [%d, %d]", c.Bound, bound.MinMagnitude, bound.MaxMagnitude),
			Code:    ErrBoundOutOfRange,
		})
	}

	return errs
}

func sortedKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
