package model

import "time"

// Credit score bounds.
const (
	MinScore = 300
	MaxScore = 850
)

// Method identifies which scoring strategy produced a result.
type Method string

const (
	MethodTrainedModel Method = "trained_model"
	MethodRuleBased    Method = "rule_based"
	MethodHardFallback Method = "hard_fallback"
)

// FactorStatus is the qualitative rating of a score factor.
type FactorStatus string

const (
	StatusGood FactorStatus = "good"
	StatusFair FactorStatus = "fair"
	StatusPoor FactorStatus = "poor"
)

// Insight categories.
const (
	InsightPositive = "positive"
	InsightWarning  = "warning"
	InsightTip      = "tip"
	InsightInfo     = "info"
)

// Impact levels for factors and insights.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// ScoreFactor is one named, weighted component of the score shown to the
// user for explainability. The five factor weights sum to 100.
type ScoreFactor struct {
	Name        string       `json:"name"`
	Weight      int          `json:"weight"`
	Status      FactorStatus `json:"status"`
	Impact      string       `json:"impact"`
	Description string       `json:"description,omitempty"`
}

// Insight is a generated, human-readable observation tied to profile values.
type Insight struct {
	Category string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Impact   string `json:"impact"`
}

// ScoreResult is the output of a scoring call. It is constructed fresh per
// request and never mutated after construction. Invariant:
// MinScore <= CreditScore <= BestAchievableScore <= MaxScore.
type ScoreResult struct {
	CreditScore         int           `json:"credit_score"`
	LoanApproved        bool          `json:"loan_approved"`
	BestAchievableScore int           `json:"best_achievable_score"`
	ScoreFactors        []ScoreFactor `json:"score_factors"`
	Insights            []Insight     `json:"insights"`
	ModelVersion        string        `json:"model_version"`
	Method              Method        `json:"prediction_method"`
}

// StoredResult wraps a ScoreResult with persistence metadata.
type StoredResult struct {
	ID          string      `json:"id"`
	ApplicantID string      `json:"applicant_id"`
	Result      ScoreResult `json:"result"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ClampScore bounds a raw score into the valid credit score range.
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ScoreRange returns the conventional label for a credit score band.
func ScoreRange(score int) string {
	switch {
	case score >= 800:
		return "Exceptional"
	case score >= 750:
		return "Excellent"
	case score >= 700:
		return "Good"
	case score >= 650:
		return "Fair"
	case score >= 600:
		return "Poor"
	default:
		return "Very Poor"
	}
}
