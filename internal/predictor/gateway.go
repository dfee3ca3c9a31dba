// Package predictor owns the trained-model scoring path: the cached
// in-memory model instance, feature preparation per the canonical
// contract, and output clamping. The cache is loaded lazily at most once
// per process lifetime unless explicitly invalidated.
package predictor

import (
	"context"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/credit-engine/internal/feature"
	"github.com/sells-group/credit-engine/internal/model"
	"github.com/sells-group/credit-engine/internal/resilience"
	"github.com/sells-group/credit-engine/internal/rules"
	"github.com/sells-group/credit-engine/internal/treemodel"
	"github.com/sells-group/credit-engine/pkg/modelserve"
)

// ErrModelUnavailable indicates the backing model could not be loaded or
// reached. The orchestrator recovers by falling back to rule-based scoring.
var ErrModelUnavailable = eris.New("predictor: model unavailable")

// BestScoreMargin is the margin added to a trained prediction to form the
// best achievable score. It is deliberately smaller than the rule-based
// margin: trained predictions are treated as more confident.
const BestScoreMargin = 100

// cached is the immutable snapshot swapped atomically on load and clear,
// so fast-path readers never observe a half-cleared state.
type cached struct {
	ensemble *treemodel.Ensemble
	loadedAt time.Time
}

// Gateway is the long-lived trained-predictor service. Construct once at
// process start and inject into callers.
type Gateway struct {
	path   string
	remote modelserve.Client
	retry  resilience.RetryConfig

	mu    sync.Mutex
	cache atomic.Pointer[cached]
}

// Option configures the gateway.
type Option func(*Gateway)

// WithRemote routes predictions to an external model-serving endpoint
// instead of the local artifact.
func WithRemote(client modelserve.Client) Option {
	return func(g *Gateway) {
		g.remote = client
	}
}

// WithRetry overrides the retry policy for remote predictions.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(g *Gateway) {
		g.retry = cfg
	}
}

// New creates a gateway backed by the model artifact at path.
func New(path string, opts ...Option) *Gateway {
	g := &Gateway{
		path:  path,
		retry: resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: 200 * time.Millisecond},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Predict scores a profile with the trained model. It fails with
// ErrModelUnavailable when the model cannot be loaded or reached, and with
// feature.ErrFeaturePreparation when the profile cannot be coerced into a
// valid vector. It never partially succeeds.
func (g *Gateway) Predict(ctx context.Context, p *model.FinancialProfile) (*model.ScoreResult, error) {
	vec, err := feature.Vectorize(p)
	if err != nil {
		return nil, err
	}

	var raw float64
	var version string
	if g.remote != nil {
		raw, version, err = g.predictRemote(ctx, vec)
	} else {
		raw, version, err = g.predictLocal(vec)
	}
	if err != nil {
		return nil, err
	}

	score := model.ClampScore(int(math.Round(raw)))
	best := score + BestScoreMargin
	if best > model.MaxScore {
		best = model.MaxScore
	}

	return &model.ScoreResult{
		CreditScore:         score,
		LoanApproved:        rules.Approved(score, p),
		BestAchievableScore: best,
		ScoreFactors:        trainedFactors(p),
		ModelVersion:        version,
		Method:              model.MethodTrainedModel,
	}, nil
}

func (g *Gateway) predictLocal(vec []float64) (float64, string, error) {
	ens, err := g.load()
	if err != nil {
		return 0, "", err
	}
	if err := feature.CheckShape(vec, ens.NumFeatures()); err != nil {
		return 0, "", err
	}
	return ens.Predict(vec), ens.Version, nil
}

func (g *Gateway) predictRemote(ctx context.Context, vec []float64) (float64, string, error) {
	req := modelserve.PredictRequest{Features: vec, FeatureNames: feature.Names}

	cfg := g.retry
	cfg.OnRetry = resilience.RetryLogger("modelserve", "predict")
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*modelserve.PredictResponse, error) {
		return g.remote.Predict(ctx, req)
	})
	if err != nil {
		// Transient serving failures are treated identically to a missing
		// local artifact.
		return 0, "", eris.Wrap(ErrModelUnavailable, err.Error())
	}
	return resp.Score, resp.ModelVersion, nil
}

// load returns the cached ensemble, loading it under the mutex on first
// use. The atomic fast path avoids per-call locking once loaded.
func (g *Gateway) load() (*treemodel.Ensemble, error) {
	if c := g.cache.Load(); c != nil {
		return c.ensemble, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Re-check under the lock: another caller may have loaded meanwhile.
	if c := g.cache.Load(); c != nil {
		return c.ensemble, nil
	}

	ens, err := treemodel.Load(g.path)
	if err != nil {
		if eris.Is(err, treemodel.ErrNotFound) {
			return nil, eris.Wrapf(ErrModelUnavailable, "artifact missing at %s", g.path)
		}
		return nil, eris.Wrap(ErrModelUnavailable, err.Error())
	}

	g.cache.Store(&cached{ensemble: ens, loadedAt: time.Now().UTC()})
	zap.L().Info("predictor: model loaded",
		zap.String("path", g.path),
		zap.String("version", ens.Version),
		zap.Int("features", ens.NumFeatures()),
	)
	return ens, nil
}

// Invalidate clears the cached model so the next prediction reloads it.
// It takes the same lock as loading so the cache and its metadata reset
// atomically.
func (g *Gateway) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Store(nil)
	zap.L().Info("predictor: model cache cleared", zap.String("path", g.path))
}

// Info is the read-only diagnostic surface for operational tooling. It is
// never consulted by the scoring path.
type Info struct {
	Path         string    `json:"path"`
	Exists       bool      `json:"exists"`
	Loaded       bool      `json:"loaded"`
	Remote       bool      `json:"remote"`
	Version      string    `json:"version,omitempty"`
	LoadedAt     time.Time `json:"loaded_at,omitzero"`
	FeatureCount int       `json:"feature_count"`
	FeatureNames []string  `json:"feature_names"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	ModifiedAt   time.Time `json:"modified_at,omitzero"`
}

// ModelInfo reports artifact and cache state.
func (g *Gateway) ModelInfo() Info {
	info := Info{
		Path:         g.path,
		Remote:       g.remote != nil,
		FeatureCount: feature.Count(),
		FeatureNames: feature.Names,
	}

	if st, err := os.Stat(g.path); err == nil {
		info.Exists = true
		info.SizeBytes = st.Size()
		info.ModifiedAt = st.ModTime().UTC()
	}

	if c := g.cache.Load(); c != nil {
		info.Loaded = true
		info.Version = c.ensemble.Version
		info.LoadedAt = c.loadedAt
	}

	return info
}
