// Package exec runs a sequence of SQL statements against a MySQL database,
// one connection, strictly in order. A failing statement is recorded and the
// batch continues; later statements may depend on earlier schema effects but
// never on a failed one being retried. The batch as a whole never aborts.
package exec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Options configures a Runner.
type Options struct {
	DSN string
	// DryRun logs each statement without connecting or executing.
	DryRun bool
	// StatementTimeout bounds each individual statement; zero means no
	// per-statement bound beyond the caller's context.
	StatementTimeout time.Duration
	Logger           zerolog.Logger
}

// Outcome is the per-statement execution record. Outcomes are appended in
// statement order; Err is nil on success.
type Outcome struct {
	Index     int           `json:"index"`
	Statement string        `json:"statement"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// Failed reports whether the statement errored.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Runner executes statement batches.
type Runner struct {
	db      *sql.DB
	options Options
	log     zerolog.Logger
}

// NewRunner returns a Runner with the given options. Call Connect before Run
// unless DryRun is set.
func NewRunner(options Options) *Runner {
	return &Runner{
		options: options,
		log:     options.Logger,
	}
}

// Connect opens the database connection and pings it so a bad DSN fails here
// rather than on the first statement.
func (r *Runner) Connect(ctx context.Context) error {
	db, err := sql.Open("mysql", r.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return fmt.Errorf("failed to ping database: %v; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return fmt.Errorf("failed to ping database: %w", pingErr)
	}

	r.db = db
	return nil
}

// Close releases the connection. Safe to call without Connect.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Run executes the statements in order and returns one Outcome per
// statement. Execution is serialized on a single connection because later
// statements may depend on the schema effects of earlier ones. A statement
// failure is logged, recorded, and skipped past; only a canceled parent
// context stops the batch early, and even then every remaining statement
// gets an Outcome carrying the context error.
func (r *Runner) Run(ctx context.Context, statements []string) []Outcome {
	outcomes := make([]Outcome, 0, len(statements))

	if r.options.DryRun {
		for i, stmt := range statements {
			r.log.Info().
				Int("statement_index", i+1).
				Int("statement_count", len(statements)).
				Str("statement_preview", preview(stmt)).
				Msg("dry run: statement parsed")
			outcomes = append(outcomes, Outcome{Index: i, Statement: stmt})
		}
		return outcomes
	}

	for i, stmt := range statements {
		outcome := r.execute(ctx, i, len(statements), stmt)
		outcomes = append(outcomes, outcome)
	}

	succeeded, failed := Summary(outcomes)
	r.log.Info().
		Int("success_count", succeeded).
		Int("error_count", failed).
		Int("statement_count", len(statements)).
		Msg("batch execution finished")

	return outcomes
}

func (r *Runner) execute(ctx context.Context, index, total int, stmt string) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Index: index, Statement: stmt, Err: err}
	}

	stmtCtx := ctx
	if r.options.StatementTimeout > 0 {
		var cancel context.CancelFunc
		stmtCtx, cancel = context.WithTimeout(ctx, r.options.StatementTimeout)
		defer cancel()
	}

	r.log.Info().
		Int("statement_index", index+1).
		Int("statement_count", total).
		Str("statement_preview", preview(stmt)).
		Msg("executing statement")

	start := time.Now()
	_, err := r.db.ExecContext(stmtCtx, stmt)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("statement timed out after %s: %w", r.options.StatementTimeout, err)
		}
		r.log.Error().
			Int("statement_index", index+1).
			Str("statement_preview", preview(stmt)).
			Str("error_message", err.Error()).
			Dur("execution_time", elapsed).
			Msg("statement failed")
		return Outcome{Index: index, Statement: stmt, Duration: elapsed, Err: err}
	}

	r.log.Info().
		Int("statement_index", index+1).
		Dur("execution_time", elapsed).
		Msg("statement succeeded")
	return Outcome{Index: index, Statement: stmt, Duration: elapsed}
}

// Summary tallies the outcome list.
func Summary(outcomes []Outcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

func preview(stmt string) string {
	const max = 80
	if len(stmt) <= max {
		return stmt
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(stmt[cut]) {
		cut--
	}
	return stmt[:cut] + "..."
}
