package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credit-engine/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS score_results`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	res := sampleResult(720, model.MethodTrainedModel)
	mock.ExpectExec(`INSERT INTO score_results`).
		WithArgs(pgxmock.AnyArg(), "a-1", "trained_model", 720, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := s.SaveResult(context.Background(), "a-1", res)
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "a-1", saved.ApplicantID)
	assert.Equal(t, *res, saved.Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	res := sampleResult(680, model.MethodRuleBased)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, applicant_id, result, created_at FROM score_results WHERE id = \$1`).
		WithArgs("r-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "applicant_id", "result", "created_at"}).
			AddRow("r-1", "a-1", mustJSON(t, res), now))

	got, err := s.GetResult(context.Background(), "r-1")
	require.NoError(t, err)

	assert.Equal(t, "r-1", got.ID)
	assert.Equal(t, 680, got.Result.CreditScore)
	assert.Equal(t, model.MethodRuleBased, got.Result.Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetResultNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, applicant_id, result, created_at FROM score_results WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLatestResultNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT 1`).
		WithArgs("a-9").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.LatestResult(context.Background(), "a-9")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListResultsFilters(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	res := sampleResult(700, model.MethodTrainedModel)
	now := time.Now().UTC()
	mock.ExpectQuery(`AND applicant_id = \$1 AND method = \$2.*LIMIT \$3`).
		WithArgs("a-1", "trained_model", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "applicant_id", "result", "created_at"}).
			AddRow("r-1", "a-1", mustJSON(t, res), now).
			AddRow("r-2", "a-1", mustJSON(t, res), now.Add(-time.Minute)))

	got, err := s.ListResults(context.Background(), ResultFilter{
		ApplicantID: "a-1",
		Method:      model.MethodTrainedModel,
		Limit:       10,
	})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, "r-1", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListResultsDefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "applicant_id", "result", "created_at"}))

	got, err := s.ListResults(context.Background(), ResultFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
