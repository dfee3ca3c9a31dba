package main

import (
	"context"
	"time"

	"github.com/sells-group/credit-engine/internal/engine"
	"github.com/sells-group/credit-engine/internal/predictor"
	"github.com/sells-group/credit-engine/internal/rules"
	"github.com/sells-group/credit-engine/internal/store"
	"github.com/sells-group/credit-engine/pkg/modelserve"
)

// newGateway builds the trained-predictor gateway from config, or nil
// when the trained path is disabled.
func newGateway() *predictor.Gateway {
	if !cfg.Model.Enabled {
		return nil
	}

	var opts []predictor.Option
	if cfg.Model.ServeURL != "" {
		msOpts := []modelserve.Option{
			modelserve.WithTimeout(time.Duration(cfg.Model.TimeoutSecs) * time.Second),
		}
		if cfg.Model.RateLimitRPS > 0 {
			msOpts = append(msOpts, modelserve.WithRateLimit(cfg.Model.RateLimitRPS))
		}
		opts = append(opts, predictor.WithRemote(modelserve.NewClient(cfg.Model.ServeURL, msOpts...)))
	}

	return predictor.New(cfg.Model.Path, opts...)
}

// newEngine wires the scoring engine from config. The returned gateway is
// nil when no trained model is configured.
func newEngine() (*engine.Engine, *predictor.Gateway, error) {
	weights := rules.DefaultWeights()
	if cfg.Rules.WeightsFile != "" {
		w, err := rules.LoadWeights(cfg.Rules.WeightsFile)
		if err != nil {
			return nil, nil, err
		}
		weights = w
	}

	gateway := newGateway()

	// A typed nil must not become a non-nil interface value.
	var trained engine.TrainedPredictor
	if gateway != nil {
		trained = gateway
	}

	eng := engine.New(engine.Config{UseTrainedModel: gateway != nil}, trained, rules.NewScorer(weights))
	return eng, gateway, nil
}

// openStore opens the configured result store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}
