package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credit-engine/internal/engine"
	"github.com/sells-group/credit-engine/internal/feature"
	"github.com/sells-group/credit-engine/internal/model"
	"github.com/sells-group/credit-engine/internal/predictor"
	"github.com/sells-group/credit-engine/internal/rules"
	"github.com/sells-group/credit-engine/internal/store"
	"github.com/sells-group/credit-engine/internal/treemodel"
)

type testEnv struct {
	server *httptest.Server
	store  store.Store
}

// newTestEnv spins up the full route stack with an in-memory store and a
// demo model artifact.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, treemodel.Demo(feature.Names).Save(path))
	gateway := predictor.New(path)

	st, err := store.Open(context.Background(), store.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	eng := engine.New(engine.Config{UseTrainedModel: true}, gateway, rules.NewScorer(rules.DefaultWeights()))

	srv := httptest.NewServer(NewServer(eng, gateway, st).Routes())
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, store: st}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func (e *testEnv) post(t *testing.T, path, body string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Post(e.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

// reencode unmarshals an envelope's data payload into out.
func reencode(t *testing.T, data any, out any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
}

func TestScore(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/api/score", `{
		"employment_income": {"annual_income": 85000},
		"housing": {"savings": 25000},
		"credit_behavior": {"credit_history_length": 8}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)

	var payload scoreResponse
	reencode(t, body.Data, &payload)

	assert.Equal(t, 755, payload.Result.CreditScore)
	assert.True(t, payload.Result.LoanApproved)
	assert.Equal(t, string(model.MethodTrainedModel), string(payload.Result.Method))
	assert.Equal(t, "Excellent", payload.ScoreRange)
	assert.Empty(t, payload.ResultID)
	assert.NotEmpty(t, payload.Result.Insights)
}

func TestScoreEmptyObjectUsesDefaults(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/api/score", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload scoreResponse
	reencode(t, body.Data, &payload)
	assert.GreaterOrEqual(t, payload.Result.CreditScore, model.MinScore)
	assert.LessOrEqual(t, payload.Result.CreditScore, model.MaxScore)
}

func TestScoreInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "[1,2]", `"nope"`, "{broken"} {
		resp, env2 := env.post(t, "/api/score", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
		assert.False(t, env2.Success)
		assert.NotEmpty(t, env2.Error)
	}
}

func TestScorePersistsWithApplicantID(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/api/score?applicant_id=a-42", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload scoreResponse
	reencode(t, body.Data, &payload)
	require.NotEmpty(t, payload.ResultID)

	// The stored result is retrievable by id and as the applicant's latest.
	resp, body = env.get(t, "/api/results/"+payload.ResultID)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.StoredResult
	reencode(t, body.Data, &stored)
	assert.Equal(t, "a-42", stored.ApplicantID)
	assert.Equal(t, payload.Result.CreditScore, stored.Result.CreditScore)

	resp, body = env.get(t, "/api/applicants/a-42/latest")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reencode(t, body.Data, &stored)
	assert.Equal(t, payload.ResultID, stored.ID)
}

func TestGetResultNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/results/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestListResults(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		resp, _ := env.post(t, "/api/score?applicant_id=a-1", `{}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.get(t, "/api/results?applicant_id=a-1&limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []model.StoredResult
	reencode(t, body.Data, &results)
	assert.Len(t, results, 2)
}

func TestModelInfoAndInvalidate(t *testing.T) {
	env := newTestEnv(t)

	// Loaded becomes true only after the first prediction.
	resp, body := env.get(t, "/api/model")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info predictor.Info
	reencode(t, body.Data, &info)
	assert.True(t, info.Exists)
	assert.False(t, info.Loaded)

	env.post(t, "/api/score", `{}`)

	_, body = env.get(t, "/api/model")
	reencode(t, body.Data, &info)
	assert.True(t, info.Loaded)
	assert.Equal(t, "demo_gbrt_v1", info.Version)

	resp, _ = env.post(t, "/api/model/invalidate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.get(t, "/api/model")
	reencode(t, body.Data, &info)
	assert.False(t, info.Loaded)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	env.post(t, "/api/score?applicant_id=a-1", `{"employment_income": {"annual_income": 85000}, "housing": {"savings": 25000}, "credit_behavior": {"credit_history_length": 8}}`)
	env.post(t, "/api/score?applicant_id=a-2", `{}`)

	resp, body := env.get(t, "/api/metrics?lookback_hours=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap struct {
		Total        int `json:"total"`
		TrainedModel int `json:"trained_model"`
		Approved     int `json:"approved"`
	}
	reencode(t, body.Data, &snap)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 2, snap.TrainedModel)
	assert.Equal(t, 1, snap.Approved)
}

func TestNilDependenciesAnswer404(t *testing.T) {
	eng := engine.New(engine.Config{}, nil, rules.NewScorer(rules.DefaultWeights()))
	srv := httptest.NewServer(NewServer(eng, nil, nil).Routes())
	defer srv.Close()

	for _, path := range []string{"/api/results/x", "/api/results", "/api/applicants/x/latest", "/api/model", "/api/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	// Scoring still works without a store or model.
	resp, err := http.Post(srv.URL+"/api/score", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
