package harness

import "github.com/roach88/zones/internal/dbm"

// TraceEvent records one executed step and the zone it produced.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Op      string         `json:"op"`
	Args    map[string]any `json:"args,omitempty"`
	Display string         `json:"display"`
	Empty   bool           `json:"empty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID identifies the run in the store, if one was attached.
	RunID string `json:"run_id,omitempty"`

	// SpecHash identifies the set of specs the scenario loaded.
	SpecHash string `json:"spec_hash,omitempty"`

	// Trace contains one event per step, the start zone first.
	Trace []TraceEvent `json:"trace"`

	// Visited is the number of distinct zones the run produced.
	Visited int `json:"visited"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the zone after the last step.
	Final dbm.Zone `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace event for zone z.
func (r *Result) AddTrace(seq int64, op string, args map[string]any, z dbm.Zone, names dbm.ClockNamer) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     seq,
		Op:      op,
		Args:    args,
		Display: z.Format(names),
		Empty:   z.IsEmpty(),
	})
}
