// Package engine is the single scoring entry point. It selects a strategy,
// enforces the trained -> rule-based -> hard-fallback chain, and assembles
// the final result. The one behavioral contract that matters most: the
// caller always receives a well-formed ScoreResult, never an error,
// regardless of model availability or malformed profile data.
package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/credit-engine/internal/insight"
	"github.com/sells-group/credit-engine/internal/model"
	"github.com/sells-group/credit-engine/internal/rules"
)

// Version tag reported on hard-fallback results.
const fallbackVersion = "fallback_v1.0"

// TrainedPredictor is the trained scoring strategy. Predict fails with
// predictor.ErrModelUnavailable or feature.ErrFeaturePreparation; the
// engine converts any failure into a fallback transition.
type TrainedPredictor interface {
	Predict(ctx context.Context, p *model.FinancialProfile) (*model.ScoreResult, error)
}

// Config selects the scoring strategy.
type Config struct {
	// UseTrainedModel starts the chain at the trained path. When false the
	// chain starts directly at rule-based scoring.
	UseTrainedModel bool
}

// Engine orchestrates the scoring strategies.
type Engine struct {
	cfg     Config
	trained TrainedPredictor
	rules   *rules.Scorer
}

// New creates a scoring engine. trained may be nil when no model is
// configured; the chain then starts at the rule-based step.
func New(cfg Config, trained TrainedPredictor, ruleScorer *rules.Scorer) *Engine {
	if trained == nil {
		cfg.UseTrainedModel = false
	}
	return &Engine{cfg: cfg, trained: trained, rules: ruleScorer}
}

// ComputeScore scores a profile, trying each strategy in order until one
// yields a result. It never returns an error: trained-path failures,
// panics included, fall through to the rule-based scorer, and a deferred
// recover around the rule-based step converts even a panic there into the
// hard-fallback sentinel.
func (e *Engine) ComputeScore(ctx context.Context, p *model.FinancialProfile) (result *model.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("engine: scoring panicked, using hard fallback", zap.Any("panic", r))
			result = HardFallback()
		}
	}()

	if p == nil {
		p = model.DefaultProfile()
	}

	if e.cfg.UseTrainedModel {
		res, err := e.tryTrained(ctx, p)
		if err == nil {
			res.Insights = insight.Generate(p, res.CreditScore)
			return res
		}
		// Failure cause is logged but never propagated to the caller.
		zap.L().Warn("engine: trained prediction failed, falling back to rules", zap.Error(err))
	}

	res := e.rules.Score(p)
	res.Insights = insight.Generate(p, res.CreditScore)
	return res
}

// tryTrained runs the trained predictor with its own recover so that a
// panicking predictor degrades to the rule-based step rather than straight
// to the hard-fallback sentinel.
func (e *Engine) tryTrained(ctx context.Context, p *model.FinancialProfile) (res *model.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = eris.Errorf("engine: trained predictor panicked: %v", r)
		}
	}()
	return e.trained.Predict(ctx, p)
}

// HardFallback returns the fixed sentinel result used when every scoring
// strategy has failed. Clearly labeled so downstream consumers can flag
// degraded confidence.
func HardFallback() *model.ScoreResult {
	return &model.ScoreResult{
		CreditScore:         650,
		LoanApproved:        false,
		BestAchievableScore: 750,
		ScoreFactors:        []model.ScoreFactor{},
		Insights: []model.Insight{{
			Category: model.InsightInfo,
			Title:    "Score Calculation",
			Message:  "Using fallback scoring method. Please try again later for accurate results.",
			Impact:   model.ImpactLow,
		}},
		ModelVersion: fallbackVersion,
		Method:       model.MethodHardFallback,
	}
}
