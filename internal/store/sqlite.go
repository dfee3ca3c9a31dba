package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/credit-engine/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS score_results (
	id            TEXT PRIMARY KEY,
	applicant_id  TEXT NOT NULL,
	method        TEXT NOT NULL,
	credit_score  INTEGER NOT NULL,
	loan_approved INTEGER NOT NULL,
	result        TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_score_results_applicant ON score_results(applicant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_score_results_method ON score_results(method);
CREATE INDEX IF NOT EXISTS idx_score_results_created_at ON score_results(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveResult(ctx context.Context, applicantID string, result *model.ScoreResult) (*model.StoredResult, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO score_results (id, applicant_id, method, credit_score, loan_approved, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, applicantID, string(result.Method), result.CreditScore, boolInt(result.LoanApproved), string(resultJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert result")
	}

	return &model.StoredResult{
		ID:          id,
		ApplicantID: applicantID,
		Result:      *result,
		CreatedAt:   now,
	}, nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*model.StoredResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, applicant_id, result, created_at FROM score_results WHERE id = ?`,
		id,
	)
	return scanStoredResult(row)
}

func (s *SQLiteStore) LatestResult(ctx context.Context, applicantID string) (*model.StoredResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, applicant_id, result, created_at FROM score_results
		 WHERE applicant_id = ? ORDER BY created_at DESC LIMIT 1`,
		applicantID,
	)
	return scanStoredResult(row)
}

func (s *SQLiteStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.StoredResult, error) {
	query := `SELECT id, applicant_id, result, created_at FROM score_results WHERE 1=1`
	var args []any

	if filter.ApplicantID != "" {
		query += ` AND applicant_id = ?`
		args = append(args, filter.ApplicantID)
	}
	if filter.Method != "" {
		query += ` AND method = ?`
		args = append(args, string(filter.Method))
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var results []model.StoredResult
	for rows.Next() {
		sr, err := scanStoredResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *sr)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate results")
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanStoredResult(row scannable) (*model.StoredResult, error) {
	var (
		sr         model.StoredResult
		resultJSON string
	)
	if err := row.Scan(&sr.ID, &sr.ApplicantID, &resultJSON, &sr.CreatedAt); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "sqlite: scan result")
	}
	if err := json.Unmarshal([]byte(resultJSON), &sr.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &sr, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
