package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/zones/internal/compiler"
	"github.com/roach88/zones/internal/dbm"
	"github.com/roach88/zones/internal/ir"
	"github.com/roach88/zones/internal/store"
	"github.com/roach88/zones/internal/testutil"
	"github.com/roach88/zones/internal/zoneset"
)

// Option configures a scenario run.
type Option func(*config)

type config struct {
	ctx    context.Context
	logger *slog.Logger
	store  *store.Store
	runIDs store.RunIDGenerator
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithStore records the run and its steps in st.
func WithStore(st *store.Store) Option {
	return func(c *config) { c.store = st }
}

// WithRunIDGenerator sets how run IDs are produced. The default is
// store.UUIDv7Generator.
func WithRunIDGenerator(gen store.RunIDGenerator) Option {
	return func(c *config) { c.runIDs = gen }
}

// WithContext sets the context for store writes.
func WithContext(ctx context.Context) Option {
	return func(c *config) { c.ctx = ctx }
}

// Harness executes one scenario. Zones are values: every step derives a
// new zone from the previous one, which stays unchanged.
type Harness struct {
	name    string
	specs   map[string]*ir.ZoneSpec
	built   map[string]dbm.Zone
	clocks  []string
	names   dbm.ClockNamer
	clock   *testutil.DeterministicClock
	visited *zoneset.Set
	steps   []store.Step
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Compile the scenario's spec files
// 2. Build the start zone
// 3. Apply each step, checking its expect clause
// 4. Evaluate assertions on the final zone
// 5. Record the run in the store, if one is attached
//
// Expectation and assertion failures are reported in Result.Errors. An
// error is returned only when the scenario cannot be executed at all,
// e.g. a spec fails to compile or a step names an unknown clock.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{
		ctx:    context.Background(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs: store.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h, loaded, err := newHarness(scenario, cfg.logger)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	if result.SpecHash, err = ir.SpecSetHash(loaded); err != nil {
		return nil, err
	}

	start := scenario.startName()
	z, err := h.startZone(start)
	if err != nil {
		return nil, fmt.Errorf("start zone: %w", err)
	}
	if err := h.record(result, OpStart, map[string]any{"zone": start}, z); err != nil {
		return nil, err
	}

	for i, step := range scenario.Steps {
		next, args, err := h.apply(z, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		z = next
		if err := h.record(result, step.Op, args, z); err != nil {
			return nil, err
		}

		if step.Expect != nil {
			msgs, err := h.checkExpect(i, step, z)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
			}
			for _, msg := range msgs {
				result.AddError(msg)
			}
		}

		h.logger.Debug("step applied",
			"scenario", h.name,
			"step", i,
			"op", step.Op,
			"display", z.Format(h.names),
			"empty", z.IsEmpty(),
		)
	}

	result.Final = z
	result.Visited = h.visited.Len()

	actx := &AssertionContext{Names: h.names, Resolve: h.buildZone}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	if cfg.store != nil {
		if err := h.persist(cfg.ctx, cfg.store, cfg.runIDs.Generate(), result); err != nil {
			return nil, err
		}
	}

	h.logger.Info("scenario completed",
		"scenario", h.name,
		"pass", result.Pass,
		"steps", len(scenario.Steps),
		"visited", result.Visited,
	)

	return result, nil
}

// newHarness compiles the scenario's specs and fixes its clocks.
func newHarness(scenario *Scenario, logger *slog.Logger) (*Harness, []*ir.ZoneSpec, error) {
	h := &Harness{
		name:    scenario.Name,
		specs:   make(map[string]*ir.ZoneSpec),
		built:   make(map[string]dbm.Zone),
		clock:   testutil.NewDeterministicClock(),
		visited: zoneset.New(),
		logger:  logger,
	}

	var loaded []*ir.ZoneSpec
	for _, path := range scenario.Specs {
		specs, err := compiler.CompileFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load spec %s: %w", path, err)
		}
		for _, spec := range specs {
			if _, dup := h.specs[spec.Name]; dup {
				return nil, nil, fmt.Errorf("load spec %s: zone %s already declared", path, spec.Name)
			}
			h.specs[spec.Name] = spec
			loaded = append(loaded, spec)
		}
		logger.Debug("spec loaded", "path", path, "zones", len(specs))
	}

	for _, c := range scenario.Clocks {
		h.clocks = append(h.clocks, norm.NFC.String(c))
	}
	if len(h.clocks) == 0 {
		spec, ok := h.specs[scenario.startName()]
		if !ok {
			return nil, nil, fmt.Errorf("start zone %q not declared in specs", scenario.startName())
		}
		h.clocks = slices.Clone(spec.Clocks)
	}
	if errs := compiler.Validate(&ir.ZoneSpec{Name: scenario.Name, Clocks: h.clocks, Init: ir.InitUniverse}); len(errs) > 0 {
		return nil, nil, fmt.Errorf("clocks: %w", errs[0])
	}
	h.names = dbm.NamesFrom(h.clocks)

	return h, loaded, nil
}

func (h *Harness) dim() int { return len(h.clocks) + 1 }

func (h *Harness) startZone(start string) (dbm.Zone, error) {
	switch start {
	case ir.InitUniverse:
		return dbm.Universe(h.dim())
	case ir.InitZero:
		return dbm.Zero(h.dim())
	default:
		return h.buildZone(start)
	}
}

// buildZone builds a spec zone by name. The spec must use the same clocks,
// in the same order, as the scenario.
func (h *Harness) buildZone(name string) (dbm.Zone, error) {
	if z, ok := h.built[name]; ok {
		return z, nil
	}
	spec, ok := h.specs[name]
	if !ok {
		return dbm.Zone{}, fmt.Errorf("unknown spec zone %q", name)
	}
	if !slices.Equal(spec.Clocks, h.clocks) {
		return dbm.Zone{}, fmt.Errorf("zone %s has clocks %v, scenario uses %v", name, spec.Clocks, h.clocks)
	}
	z, err := compiler.Build(spec)
	if err != nil {
		return dbm.Zone{}, err
	}
	h.built[name] = z
	return z, nil
}

// apply performs one step on z and returns the new zone with the step's
// trace arguments.
func (h *Harness) apply(z dbm.Zone, step Step) (dbm.Zone, map[string]any, error) {
	switch step.Op {
	case OpConstrain:
		cs, err := h.lower(step.Constraints)
		if err != nil {
			return dbm.Zone{}, nil, err
		}
		next, err := z.Constrain(cs...)
		return next, map[string]any{"constraints": step.Constraints}, err

	case OpUp:
		next, err := z.Up()
		return next, nil, err

	case OpFree:
		k, err := h.clockIndex(step.Clock)
		if err != nil {
			return dbm.Zone{}, nil, err
		}
		next, err := z.Free(k)
		return next, map[string]any{"clock": step.Clock}, err

	case OpReset:
		k, err := h.clockIndex(step.Clock)
		if err != nil {
			return dbm.Zone{}, nil, err
		}
		next, err := z.UpdateValue(k, step.Value)
		return next, map[string]any{"clock": step.Clock, "value": step.Value}, err

	case OpIntersect:
		var other dbm.Zone
		var args map[string]any
		if step.Zone != "" {
			var err error
			if other, err = h.buildZone(step.Zone); err != nil {
				return dbm.Zone{}, nil, err
			}
			args = map[string]any{"zone": step.Zone}
		} else {
			cs, err := h.lower(step.Constraints)
			if err != nil {
				return dbm.Zone{}, nil, err
			}
			u, err := dbm.Universe(h.dim())
			if err != nil {
				return dbm.Zone{}, nil, err
			}
			if other, err = u.Constrain(cs...); err != nil {
				return dbm.Zone{}, nil, err
			}
			args = map[string]any{"constraints": step.Constraints}
		}
		next, err := z.Intersect(other)
		return next, args, err

	case OpZero:
		next, err := dbm.Zero(h.dim())
		return next, nil, err

	case OpUniverse:
		next, err := dbm.Universe(h.dim())
		return next, nil, err
	}
	return dbm.Zone{}, nil, fmt.Errorf("unknown op %q", step.Op)
}

// lower parses constraint strings and lowers them against the scenario's
// clocks.
func (h *Harness) lower(texts []string) ([]dbm.Constraint, error) {
	spec := &ir.ZoneSpec{Name: h.name, Clocks: h.clocks, Init: ir.InitUniverse}
	for _, text := range texts {
		c, err := compiler.ParseConstraint(text)
		if err != nil {
			return nil, err
		}
		spec.Constraints = append(spec.Constraints, c)
	}
	return compiler.Lower(spec)
}

func (h *Harness) clockIndex(name string) (int, error) {
	name = norm.NFC.String(name)
	for i, c := range h.clocks {
		if c == name {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unknown clock %q", name)
}

// record stamps z with the next seq, adds it to the trace and to the set
// of visited zones.
func (h *Harness) record(result *Result, op string, args map[string]any, z dbm.Zone) error {
	seq := h.clock.Next()
	result.AddTrace(seq, op, args, z, h.names)

	if _, err := h.visited.Add(z); err != nil {
		return err
	}

	argsJSON := []byte("{}")
	if len(args) > 0 {
		var err error
		if argsJSON, err = ir.MarshalCanonical(args); err != nil {
			return fmt.Errorf("marshal %s args: %w", op, err)
		}
	}
	h.steps = append(h.steps, store.Step{
		Seq:      seq,
		Op:       op,
		Args:     string(argsJSON),
		Display:  z.Format(h.names),
		Empty:    z.IsEmpty(),
		ZoneHash: z.Hash().String(),
	})
	return nil
}

// checkExpect compares z with the step's expect clause. Mismatches are
// returned as messages; a malformed point is an error.
func (h *Harness) checkExpect(index int, step Step, z dbm.Zone) ([]string, error) {
	exp := step.Expect
	prefix := fmt.Sprintf("step %d (%s)", index, step.Op)
	var msgs []string

	if exp.Empty != nil && *exp.Empty != z.IsEmpty() {
		msgs = append(msgs, fmt.Sprintf("%s: expected empty=%t, got %t", prefix, *exp.Empty, z.IsEmpty()))
	}
	if exp.Display != "" {
		if got := z.Format(h.names); got != exp.Display {
			msgs = append(msgs, fmt.Sprintf("%s: expected display %q, got %q", prefix, exp.Display, got))
		}
	}

	for _, check := range []struct {
		points []Point
		want   bool
		verb   string
	}{
		{exp.Includes, true, "include"},
		{exp.Excludes, false, "exclude"},
	} {
		for _, p := range check.points {
			coords, err := h.point(p)
			if err != nil {
				return nil, err
			}
			in, err := z.IncludesPoint(coords)
			if err != nil {
				return nil, err
			}
			if in != check.want {
				msgs = append(msgs, fmt.Sprintf("%s: expected zone %s to %s point %s",
					prefix, z.Format(h.names), check.verb, h.formatPoint(coords)))
			}
		}
	}
	return msgs, nil
}

// point converts a named valuation into zone coordinates.
func (h *Harness) point(p Point) ([]int64, error) {
	coords := make([]int64, h.dim())
	seen := 0
	for name, v := range p {
		k, err := h.clockIndex(name)
		if err != nil {
			return nil, fmt.Errorf("point: %w", err)
		}
		coords[k] = v
		seen++
	}
	if seen != len(h.clocks) {
		return nil, fmt.Errorf("point gives %d of %d clocks", seen, len(h.clocks))
	}
	return coords, nil
}

func (h *Harness) formatPoint(coords []int64) string {
	var b []byte
	b = append(b, '{')
	for i := 1; i < len(coords); i++ {
		if i > 1 {
			b = append(b, ", "...)
		}
		b = fmt.Appendf(b, "%s: %d", h.names(i), coords[i])
	}
	return string(append(b, '}'))
}

// persist writes the run and its steps in one transaction.
func (h *Harness) persist(ctx context.Context, st *store.Store, runID string, result *Result) error {
	run := store.Run{
		ID:            runID,
		Scenario:      h.name,
		SpecHash:      result.SpecHash,
		Pass:          result.Pass,
		StartedSeq:    h.steps[0].Seq,
		Errors:        result.Errors,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if err := st.WriteRunWithSteps(ctx, run, h.steps); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	result.RunID = runID
	return nil
}
