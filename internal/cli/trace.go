package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/zones/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run's steps
	Scenario string // optional - restrict the run list
}

// TraceEvent is one recorded step in a run's timeline.
type TraceEvent struct {
	Seq      int64          `json:"seq"`
	Op       string         `json:"op"`
	Args     map[string]any `json:"args,omitempty"`
	Display  string         `json:"display"`
	Empty    bool           `json:"empty"`
	ZoneHash string         `json:"zone_hash"`
}

// TraceResult holds one run and its timeline.
type TraceResult struct {
	Run      store.Run    `json:"run"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for a run.
type TraceStats struct {
	Steps         int `json:"steps"`
	DistinctZones int `json:"distinct_zones"`
	EmptySteps    int `json:"empty_steps"`
}

// RunList holds the recorded runs.
type RunList struct {
	Runs []store.Run `json:"runs"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded scenario runs",
		Long: `Show scenario runs recorded with "zones test --db".

Without --run, lists the recorded runs. With --run, prints the run's
timeline: every step with the zone it produced and the zone's hash.

Examples:
  zones trace --db runs.db
  zones trace --db runs.db --scenario reset_and_free
  zones trace --db runs.db --run 0190a2b4-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "list only runs of this scenario")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx, opts.Scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if formatter.IsJSON() {
			return formatter.Success(RunList{Runs: runs})
		}
		outputRunListText(formatter.Writer, runs)
		return nil
	}

	result, err := buildTrace(ctx, st, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	outputTraceText(formatter.Writer, result, opts.Verbose)
	return nil
}

// buildTrace reads a run and its steps from the store.
func buildTrace(ctx context.Context, st *store.Store, runID string) (TraceResult, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return TraceResult{}, err
	}
	steps, err := st.ReadSteps(ctx, runID)
	if err != nil {
		return TraceResult{}, err
	}

	result := TraceResult{Run: run, Timeline: make([]TraceEvent, 0, len(steps))}
	hashes := make(map[string]bool)
	for _, step := range steps {
		event := TraceEvent{
			Seq:      step.Seq,
			Op:       step.Op,
			Display:  step.Display,
			Empty:    step.Empty,
			ZoneHash: step.ZoneHash,
		}
		if step.Args != "" && step.Args != "{}" {
			if err := json.Unmarshal([]byte(step.Args), &event.Args); err != nil {
				return TraceResult{}, fmt.Errorf("step %d args: %w", step.Seq, err)
			}
		}
		result.Timeline = append(result.Timeline, event)

		hashes[step.ZoneHash] = true
		if step.Empty {
			result.Stats.EmptySteps++
		}
	}
	result.Stats.Steps = len(steps)
	result.Stats.DistinctZones = len(hashes)
	return result, nil
}

func outputRunListText(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %-6s %s\n", run.ID, passStatus(run.Pass), run.Scenario)
	}
}

// outputTraceText outputs a run's timeline as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Run: %s\n", result.Run.ID)
	fmt.Fprintf(w, "Scenario: %s\n", result.Run.Scenario)
	fmt.Fprintf(w, "Status: %s\n", passStatus(result.Run.Pass))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no steps)")
	}
	for _, event := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %s%s -> %s\n", event.Seq, event.Op, formatArgs(event.Args), event.Display)
		if verbose {
			fmt.Fprintf(w, "       hash: %s\n", truncateID(event.ZoneHash))
		}
	}
	fmt.Fprintln(w)

	if len(result.Run.Errors) > 0 {
		fmt.Fprintln(w, "=== Errors ===")
		for _, e := range result.Run.Errors {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n  "))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Steps:          %d\n", result.Stats.Steps)
	fmt.Fprintf(w, "  Distinct zones: %d\n", result.Stats.DistinctZones)
	fmt.Fprintf(w, "  Empty steps:    %d\n", result.Stats.EmptySteps)
}

// formatArgs formats step args for display, keys sorted.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(args[k])))
	}
	return " {" + strings.Join(parts, ", ") + "}"
}

// formatValue formats a single decoded JSON value.
func formatValue(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncateID truncates a long ID or hash for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

func passStatus(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
