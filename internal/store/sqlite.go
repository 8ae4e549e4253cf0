package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seantiz/jsengine/internal/model"

	_ "modernc.org/sqlite"
)

const createEvaluationsTable = `
CREATE TABLE IF NOT EXISTS evaluations (
    id            TEXT PRIMARY KEY,
    engine        TEXT NOT NULL,
    status        TEXT NOT NULL,
    script        TEXT NOT NULL,
    output        TEXT NOT NULL,
    error         TEXT NOT NULL DEFAULT '',
    mismatch      INTEGER NOT NULL DEFAULT 0,
    cross_results TEXT,
    duration_ms   INTEGER NOT NULL,
    created_at    DATETIME NOT NULL
)`

const createEvaluationsIndex = `
CREATE INDEX IF NOT EXISTS evaluations_created_at ON evaluations (created_at DESC)`

const selectEvaluation = `SELECT id, engine, status, script, output, error,
	mismatch, cross_results, duration_ms, created_at FROM evaluations`

// ErrNotFound is returned when an evaluation is not found.
var ErrNotFound = errors.New("evaluation not found")

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" opens a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	for _, stmt := range []string{createEvaluationsTable, createEvaluationsIndex} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate evaluations: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEvaluation inserts a new evaluation record.
func (s *SQLiteStore) CreateEvaluation(ctx context.Context, e *model.Evaluation) error {
	var cross []byte
	if len(e.CrossResults) > 0 {
		var err error
		if cross, err = json.Marshal(e.CrossResults); err != nil {
			return fmt.Errorf("encode cross results: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluations (
			id, engine, status, script, output, error,
			mismatch, cross_results, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Engine, e.Status, e.Script, e.Output, e.Error,
		e.Mismatch, nullString(cross), e.DurationMS, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// GetEvaluation retrieves an evaluation by ID.
func (s *SQLiteStore) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	e, err := scanEvaluation(s.db.QueryRowContext(ctx, selectEvaluation+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	return e, nil
}

// ListEvaluations returns a page of evaluations, newest first, along with the
// total count of all evaluations.
func (s *SQLiteStore) ListEvaluations(ctx context.Context, limit, offset int) ([]*model.Evaluation, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM evaluations").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		selectEvaluation+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var evals []*model.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan evaluation: %w", err)
		}
		evals = append(evals, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate evaluations: %w", err)
	}

	return evals, total, nil
}

// GetEvaluationStats aggregates every stored evaluation.
func (s *SQLiteStore) GetEvaluationStats(ctx context.Context) (*model.EvaluationStats, error) {
	stats := &model.EvaluationStats{
		CountByEngine: make(map[string]int),
		CountByStatus: make(map[string]int),
	}

	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(mismatch), 0), AVG(duration_ms) FROM evaluations",
	).Scan(&stats.Total, &stats.Mismatches, &avg)
	if err != nil {
		return nil, fmt.Errorf("aggregate evaluations: %w", err)
	}
	if avg.Valid {
		stats.AvgDurationMS = avg.Float64
	}

	if err := s.countBy(ctx, "engine", stats.CountByEngine); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "status", stats.CountByStatus); err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy fills into with evaluation counts grouped by column, which must be
// a trusted column name.
func (s *SQLiteStore) countBy(ctx context.Context, column string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM evaluations GROUP BY "+column)
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		into[key] = n
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (*model.Evaluation, error) {
	e := &model.Evaluation{}
	var cross sql.NullString
	if err := row.Scan(
		&e.ID, &e.Engine, &e.Status, &e.Script, &e.Output, &e.Error,
		&e.Mismatch, &cross, &e.DurationMS, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	if cross.Valid && cross.String != "" {
		if err := json.Unmarshal([]byte(cross.String), &e.CrossResults); err != nil {
			return nil, fmt.Errorf("decode cross results: %w", err)
		}
	}
	return e, nil
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
