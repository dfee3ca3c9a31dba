// Package rules implements the deterministic rule-based credit scorer.
// It is both the default scoring strategy and the fallback when the
// trained model is unavailable, so it must never fail: every input has
// already been defaulted by the profile parser and every adjustment is
// plain arithmetic.
package rules

import (
	"github.com/sells-group/credit-engine/internal/model"
)

// Version tag reported on rule-based results.
const Version = "rule_based_v1.0"

// Approval thresholds shared with the trained path.
const (
	ApprovalMinScore        = 650
	ApprovalMinIncome       = 25000
	ApprovalMaxLatePayments = 2
)

// Scorer computes credit scores from additive heuristics.
type Scorer struct {
	weights Weights
}

// NewScorer creates a rule-based scorer with the given weight table.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score maps a profile to a complete rule-based ScoreResult. Pure and
// deterministic; identical profiles yield identical results.
func (s *Scorer) Score(p *model.FinancialProfile) *model.ScoreResult {
	if p == nil {
		p = model.DefaultProfile()
	}

	score := s.rawScore(p)
	clamped := model.ClampScore(score)

	best := clamped + s.weights.BestScoreMargin
	if best > model.MaxScore {
		best = model.MaxScore
	}

	return &model.ScoreResult{
		CreditScore:         clamped,
		LoanApproved:        Approved(clamped, p),
		BestAchievableScore: best,
		ScoreFactors:        s.factors(p),
		ModelVersion:        Version,
		Method:              model.MethodRuleBased,
	}
}

// rawScore applies the additive adjustments before clamping.
func (s *Scorer) rawScore(p *model.FinancialProfile) int {
	score := s.weights.BaseScore

	// Age bracket.
	age := p.Personal.Age
	switch {
	case age >= 25 && age <= 45:
		score += 50
	case age >= 65 || age < 21:
		score -= 30
	}

	// Income bracket.
	income := p.Employment.AnnualIncome
	switch {
	case income >= 100000:
		score += 100
	case income >= 50000:
		score += 70
	case income >= 30000:
		score += 40
	case income < 15000:
		score -= 50
	}

	// Debt-to-income ratio. Skipped entirely at zero income.
	if income > 0 {
		monthlyIncome := income / 12
		ratio := (p.Housing.MonthlyCost + p.MonthlyLoanPayments()) / monthlyIncome
		switch {
		case ratio < 0.3:
			score += 80
		case ratio < 0.5:
			score += 40
		case ratio > 0.8:
			score -= 100
		}
	}

	// Savings bracket.
	savings := p.Housing.Savings
	switch {
	case savings >= 50000:
		score += 60
	case savings >= 20000:
		score += 30
	case savings < 5000:
		score -= 20
	}

	// Each late payment costs LatePaymentPenalty points.
	score -= p.Behavior.LatePayments * s.weights.LatePaymentPenalty

	// Credit history length bracket.
	history := p.Behavior.CreditHistoryLength
	switch {
	case history >= 5:
		score += 70
	case history >= 2:
		score += 40
	case history == 0:
		score -= 60
	}

	// Dependents: flat penalty, no upper cap before the final clamp.
	score -= p.Family.Dependents * s.weights.DependentPenalty

	return score
}

// Approved evaluates the loan approval conjunction against a score and
// profile. The trained path reuses the same rule against its own score.
func Approved(score int, p *model.FinancialProfile) bool {
	return score >= ApprovalMinScore &&
		p.Employment.AnnualIncome > ApprovalMinIncome &&
		p.Behavior.LatePayments <= ApprovalMaxLatePayments
}

// factors builds the five-category explainability breakdown with the
// coarse two-tier statuses used by the rule-based path.
func (s *Scorer) factors(p *model.FinancialProfile) []model.ScoreFactor {
	payment := model.StatusGood
	if p.Behavior.LatePayments > 1 {
		payment = model.StatusPoor
	}

	history := model.StatusFair
	if p.Behavior.CreditHistoryLength >= 3 {
		history = model.StatusGood
	}

	return []model.ScoreFactor{
		{Name: "Payment History", Weight: s.weights.PaymentHistoryWeight, Status: payment, Impact: model.ImpactHigh},
		{Name: "Credit Utilization", Weight: s.weights.CreditUtilizationWeight, Status: model.StatusGood, Impact: model.ImpactHigh},
		{Name: "Length of Credit History", Weight: s.weights.HistoryLengthWeight, Status: history, Impact: model.ImpactMedium},
		{Name: "Credit Mix", Weight: s.weights.CreditMixWeight, Status: model.StatusFair, Impact: model.ImpactLow},
		{Name: "New Credit", Weight: s.weights.NewCreditWeight, Status: model.StatusGood, Impact: model.ImpactLow},
	}
}
