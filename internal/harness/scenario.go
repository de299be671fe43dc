package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/zones/internal/ir"
)

// Scenario defines a zone scenario: a start zone, a sequence of zone
// operations with optional expectations, and assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Specs lists paths to CUE spec files to compile and load.
	// Paths are relative to the base path given at load time.
	Specs []string `yaml:"specs,omitempty"`

	// Clocks names the clocks, clock 1 first. Optional when Start names a
	// spec zone, whose clocks are then used.
	Clocks []string `yaml:"clocks,omitempty"`

	// Start is "universe", "zero" or the name of a spec zone.
	// Defaults to "universe".
	Start string `yaml:"start,omitempty"`

	// Steps are applied in order, each to the zone the previous one
	// produced.
	Steps []Step `yaml:"steps"`

	// Assertions validate the outcome of the whole run.
	// Supported types: final_display, final_empty, equals_zone, visited_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one zone operation.
type Step struct {
	// Op is one of constrain, up, free, reset, intersect, zero, universe.
	Op string `yaml:"op"`

	// Constraints are constraint strings, e.g. "x - y < 2"
	// (used by constrain, and by intersect when Zone is empty).
	Constraints []string `yaml:"constraints,omitempty"`

	// Clock is the clock name (used by free and reset).
	Clock string `yaml:"clock,omitempty"`

	// Value is the new clock value (used by reset).
	Value int64 `yaml:"value,omitempty"`

	// Zone is the spec zone to intersect with (used by intersect).
	Zone string `yaml:"zone,omitempty"`

	// Expect checks the zone this step produced.
	// If nil, no check is performed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected zone after a step. Only the
// fields that are set are checked.
type ExpectClause struct {
	// Empty is the expected emptiness.
	Empty *bool `yaml:"empty,omitempty"`

	// Display is the expected rendering, e.g. "(x<=3 && y-x<1)".
	Display string `yaml:"display,omitempty"`

	// Includes lists valuations that must lie in the zone.
	Includes []Point `yaml:"includes,omitempty"`

	// Excludes lists valuations that must not lie in the zone.
	Excludes []Point `yaml:"excludes,omitempty"`
}

// Point is a clock valuation by clock name. Every clock must be given.
type Point map[string]int64

// Assertion validates the outcome of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_display": the final zone renders as Display
	// - "final_empty": the final zone's emptiness is Empty
	// - "equals_zone": the final zone equals spec zone Zone
	// - "visited_count": the run produced Count distinct zones
	Type string `yaml:"type"`

	// Display is the expected rendering (used by final_display).
	Display string `yaml:"display,omitempty"`

	// Empty is the expected emptiness (used by final_empty).
	Empty *bool `yaml:"empty,omitempty"`

	// Zone is a spec zone name (used by equals_zone).
	Zone string `yaml:"zone,omitempty"`

	// Count is the expected number of distinct zones (used by visited_count).
	Count int `yaml:"count,omitempty"`
}

// Step operation constants.
const (
	OpConstrain = "constrain"
	OpUp        = "up"
	OpFree      = "free"
	OpReset     = "reset"
	OpIntersect = "intersect"
	OpZero      = "zero"
	OpUniverse  = "universe"

	// OpStart labels the first trace event, the start zone.
	OpStart = "start"
)

// Assertion type constants.
const (
	AssertFinalDisplay = "final_display"
	AssertFinalEmpty   = "final_empty"
	AssertEqualsZone   = "equals_zone"
	AssertVisitedCount = "visited_count"
)

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve spec paths BEFORE validation so existence checks see real paths
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Clock and zone names are checked when the scenario runs, after specs
// are compiled.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	start := s.startName()
	if start != ir.InitUniverse && start != ir.InitZero && len(s.Specs) == 0 {
		return fmt.Errorf("start zone %q requires specs", start)
	}
	if len(s.Clocks) == 0 && (start == ir.InitUniverse || start == ir.InitZero) {
		return fmt.Errorf("clocks is required unless start names a spec zone")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step, len(s.Specs) > 0); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scenario) startName() string {
	if s.Start == "" {
		return ir.InitUniverse
	}
	return s.Start
}

// validateStep checks the arguments a step's op needs.
func validateStep(index int, step *Step, haveSpecs bool) error {
	switch step.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpConstrain:
		if len(step.Constraints) == 0 {
			return fmt.Errorf("steps[%d]: constraints are required for constrain", index)
		}
	case OpFree:
		if step.Clock == "" {
			return fmt.Errorf("steps[%d]: clock is required for free", index)
		}
	case OpReset:
		if step.Clock == "" {
			return fmt.Errorf("steps[%d]: clock is required for reset", index)
		}
		if step.Value < 0 {
			return fmt.Errorf("steps[%d]: value must be non-negative for reset", index)
		}
	case OpIntersect:
		if (step.Zone == "") == (len(step.Constraints) == 0) {
			return fmt.Errorf("steps[%d]: intersect needs exactly one of zone or constraints", index)
		}
		if step.Zone != "" && !haveSpecs {
			return fmt.Errorf("steps[%d]: intersect with zone %q requires specs", index, step.Zone)
		}
	case OpUp, OpZero, OpUniverse:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalDisplay:
		if a.Display == "" {
			return fmt.Errorf("assertions[%d]: display is required for final_display", index)
		}
	case AssertFinalEmpty:
		if a.Empty == nil {
			return fmt.Errorf("assertions[%d]: empty is required for final_empty", index)
		}
	case AssertEqualsZone:
		if a.Zone == "" {
			return fmt.Errorf("assertions[%d]: zone is required for equals_zone", index)
		}
	case AssertVisitedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for visited_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
