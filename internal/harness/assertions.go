package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/zones/internal/dbm"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s -> %s\n", event.Seq, event.Op, event.Display)
		}
	}

	return buf.String()
}

// AssertionContext provides what assertions need beyond the result.
type AssertionContext struct {
	// Names renders clock names in displays.
	Names dbm.ClockNamer

	// Resolve builds a spec zone by name (used by equals_zone).
	Resolve func(name string) (dbm.Zone, error)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	names := dbm.DefaultNames
	if actx != nil && actx.Names != nil {
		names = actx.Names
	}

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalDisplay:
			err = assertFinalDisplay(result, assertion, names)
		case AssertFinalEmpty:
			err = assertFinalEmpty(result, assertion)
		case AssertEqualsZone:
			if actx == nil || actx.Resolve == nil {
				err = fmt.Errorf("assertion[%d]: equals_zone requires spec zones", i)
			} else {
				err = assertEqualsZone(result, assertion, actx.Resolve, names)
			}
		case AssertVisitedCount:
			err = assertVisitedCount(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertFinalDisplay(result *Result, assertion Assertion, names dbm.ClockNamer) error {
	got := result.Final.Format(names)
	if got != assertion.Display {
		return &AssertionError{
			Type:     AssertFinalDisplay,
			Expected: assertion.Display,
			Actual:   got,
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalEmpty(result *Result, assertion Assertion) error {
	if assertion.Empty == nil {
		return fmt.Errorf("final_empty assertion requires empty")
	}
	if got := result.Final.IsEmpty(); got != *assertion.Empty {
		return &AssertionError{
			Type:     AssertFinalEmpty,
			Expected: fmt.Sprintf("empty=%t", *assertion.Empty),
			Actual:   fmt.Sprintf("empty=%t", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertEqualsZone(result *Result, assertion Assertion, resolve func(string) (dbm.Zone, error), names dbm.ClockNamer) error {
	want, err := resolve(assertion.Zone)
	if err != nil {
		return &AssertionError{
			Type:     AssertEqualsZone,
			Expected: fmt.Sprintf("zone %s", assertion.Zone),
			Actual:   fmt.Sprintf("cannot build zone: %v", err),
		}
	}
	eq, err := result.Final.Equal(want)
	if err != nil {
		return &AssertionError{
			Type:     AssertEqualsZone,
			Expected: fmt.Sprintf("zone %s", assertion.Zone),
			Actual:   fmt.Sprintf("cannot compare: %v", err),
		}
	}
	if !eq {
		return &AssertionError{
			Type:     AssertEqualsZone,
			Expected: fmt.Sprintf("zone %s = %s", assertion.Zone, want.Format(names)),
			Actual:   result.Final.Format(names),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertVisitedCount(result *Result, assertion Assertion) error {
	if result.Visited != assertion.Count {
		return &AssertionError{
			Type:     AssertVisitedCount,
			Expected: fmt.Sprintf("%d distinct zones", assertion.Count),
			Actual:   fmt.Sprintf("%d distinct zones", result.Visited),
			Trace:    result.Trace,
		}
	}
	return nil
}
