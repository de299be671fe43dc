package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/zones/internal/ir"
)

// Run is one recorded scenario execution.
type Run struct {
	ID            string   `json:"id"`
	Scenario      string   `json:"scenario"`
	SpecHash      string   `json:"spec_hash"`
	Pass          bool     `json:"pass"`
	StartedSeq    int64    `json:"started_seq"`
	Errors        []string `json:"errors"`
	EngineVersion string   `json:"engine_version"`
	IRVersion     string   `json:"ir_version"`
}

// Step is one executed harness step and the zone it produced.
type Step struct {
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"`
	Op       string `json:"op"`
	Args     string `json:"args"` // canonical JSON object
	Display  string `json:"display"`
	Empty    bool   `json:"empty"`
	ZoneHash string `json:"zone_hash"`
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
//
// Errors are serialized to canonical JSON so identical runs produce
// identical rows.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	return writeRun(ctx, s.db, run)
}

// WriteStep inserts a step record.
// The run referenced by RunID must exist (foreign key constraint).
// A second write for the same (run_id, seq) is silently ignored.
func (s *Store) WriteStep(ctx context.Context, step Step) error {
	return writeStep(ctx, s.db, step)
}

// WriteRunWithSteps records a run and all of its steps in one
// transaction. Each step's RunID is set to run.ID.
func (s *Store) WriteRunWithSteps(ctx context.Context, run Run, steps []Step) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeRun(ctx, tx, run); err != nil {
		return err
	}
	for _, step := range steps {
		step.RunID = run.ID
		if err := writeStep(ctx, tx, step); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func writeRun(ctx context.Context, ex execer, run Run) error {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	errsJSON, err := ir.MarshalCanonical(errs)
	if err != nil {
		return fmt.Errorf("write run: marshal errors: %w", err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, spec_hash, pass, started_seq, errors, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.SpecHash,
		run.Pass,
		run.StartedSeq,
		string(errsJSON),
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

func writeStep(ctx context.Context, ex execer, step Step) error {
	args := step.Args
	if args == "" {
		args = "{}"
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, seq, op, args, display, empty, zone_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		step.RunID,
		step.Seq,
		step.Op,
		args,
		step.Display,
		step.Empty,
		step.ZoneHash,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}
