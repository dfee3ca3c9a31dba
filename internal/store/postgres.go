package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-engine/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS score_results (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	applicant_id  TEXT NOT NULL,
	method        TEXT NOT NULL,
	credit_score  INTEGER NOT NULL,
	loan_approved BOOLEAN NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_score_results_applicant ON score_results(applicant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_score_results_method ON score_results(method);
CREATE INDEX IF NOT EXISTS idx_score_results_created_at ON score_results(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, applicantID string, result *model.ScoreResult) (*model.StoredResult, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO score_results (id, applicant_id, method, credit_score, loan_approved, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, applicantID, string(result.Method), result.CreditScore, result.LoanApproved, resultJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert result")
	}

	return &model.StoredResult{
		ID:          id,
		ApplicantID: applicantID,
		Result:      *result,
		CreatedAt:   now,
	}, nil
}

func (s *PostgresStore) GetResult(ctx context.Context, id string) (*model.StoredResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, applicant_id, result, created_at FROM score_results WHERE id = $1`,
		id,
	)
	return scanPgStoredResult(row)
}

func (s *PostgresStore) LatestResult(ctx context.Context, applicantID string) (*model.StoredResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, applicant_id, result, created_at FROM score_results
		 WHERE applicant_id = $1 ORDER BY created_at DESC LIMIT 1`,
		applicantID,
	)
	return scanPgStoredResult(row)
}

func (s *PostgresStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.StoredResult, error) {
	query := `SELECT id, applicant_id, result, created_at FROM score_results WHERE 1=1`
	var args []any

	if filter.ApplicantID != "" {
		args = append(args, filter.ApplicantID)
		query += ` AND applicant_id = $` + itoa(len(args))
	}
	if filter.Method != "" {
		args = append(args, string(filter.Method))
		query += ` AND method = $` + itoa(len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since.UTC())
		query += ` AND created_at >= $` + itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var results []model.StoredResult
	for rows.Next() {
		sr, err := scanPgStoredResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *sr)
	}
	return results, eris.Wrap(rows.Err(), "postgres: iterate results")
}

func scanPgStoredResult(row pgx.Row) (*model.StoredResult, error) {
	var (
		sr         model.StoredResult
		resultJSON []byte
	)
	if err := row.Scan(&sr.ID, &sr.ApplicantID, &resultJSON, &sr.CreatedAt); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "postgres: scan result")
	}
	if err := json.Unmarshal(resultJSON, &sr.Result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal result")
	}
	return &sr, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
