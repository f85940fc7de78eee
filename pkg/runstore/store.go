// Package runstore persists finished runs to a local SQLite database so
// outcomes and their turn logs can be inspected after the fact.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harun/maestro/pkg/conversation"
	"github.com/harun/maestro/pkg/graph"
)

// ErrRunNotFound is returned when no stored run matches the given ID.
var ErrRunNotFound = errors.New("run not found")

// Config configures a Store.
type Config struct {
	// DBPath is the SQLite database file; it is created when absent.
	DBPath string
	Logger *zerolog.Logger
}

// Store is a SQLite-backed run archive. It implements graph.RunStore.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunSummary describes one stored run without its turn log.
type RunSummary struct {
	RunID         string  `json:"run_id"`
	Task          string  `json:"task"`
	FinalAnswer   *string `json:"final_answer,omitempty"`
	IsVerified    bool    `json:"is_verified"`
	PlanIteration int     `json:"plan_iteration"`
	Steps         int     `json:"steps"`
	CreatedAt     int64   `json:"created_at"`
}

// New opens (or creates) the run database.
func New(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// go-sqlite3 ships with foreign keys off; the turns table relies on
	// ON DELETE CASCADE
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			task TEXT NOT NULL,
			final_answer TEXT,
			is_verified INTEGER NOT NULL,
			plan_iteration INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

		CREATE TABLE IF NOT EXISTS turns (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_id TEXT,
			invocation_id TEXT,
			success INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a finished run and its turn log in one transaction.
// Saving the same run ID again replaces the previous record.
func (s *Store) SaveRun(ctx context.Context, task string, outcome *graph.Outcome) error {
	if outcome == nil {
		return errors.New("outcome is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (run_id, task, final_answer, is_verified, plan_iteration, steps)
		VALUES (?, ?, ?, ?, ?, ?)`,
		outcome.RunID, task, outcome.FinalAnswer, outcome.IsVerified, outcome.PlanIteration, outcome.Steps,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM turns WHERE run_id = ?", outcome.RunID); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO turns (run_id, seq, role, content, tool_id, invocation_id, success)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare turn insert: %w", err)
	}
	defer stmt.Close()

	for seq, turn := range outcome.Turns {
		_, err := stmt.ExecContext(ctx, outcome.RunID, seq, string(turn.Role), turn.Content, turn.ToolID, turn.InvocationID, turn.Success)
		if err != nil {
			return fmt.Errorf("failed to insert turn %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug().Str("run_id", outcome.RunID).Int("turns", len(outcome.Turns)).Msg("Run saved")
	return nil
}

// GetRun loads a stored run summary by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, task, final_answer, is_verified, plan_iteration, steps, created_at
		FROM runs WHERE run_id = ?`, runID)

	var summary RunSummary
	err := row.Scan(&summary.RunID, &summary.Task, &summary.FinalAnswer,
		&summary.IsVerified, &summary.PlanIteration, &summary.Steps, &summary.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &summary, nil
}

// GetTurns loads the stored turn log for a run in original order.
func (s *Store) GetTurns(ctx context.Context, runID string) ([]conversation.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, tool_id, invocation_id, success
		FROM turns WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	defer rows.Close()

	var turns []conversation.Turn
	for rows.Next() {
		var t conversation.Turn
		var role string
		var toolID, invocationID sql.NullString
		if err := rows.Scan(&role, &t.Content, &toolID, &invocationID, &t.Success); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = conversation.Role(role)
		t.ToolID = toolID.String
		t.InvocationID = invocationID.String
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ListRuns returns stored run summaries, most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, task, final_answer, is_verified, plan_iteration, steps, created_at
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		err := rows.Scan(&summary.RunID, &summary.Task, &summary.FinalAnswer,
			&summary.IsVerified, &summary.PlanIteration, &summary.Steps, &summary.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteRun removes a stored run; its turns go with it via the cascade.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
