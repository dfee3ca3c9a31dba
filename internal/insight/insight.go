// Package insight derives human-readable observations from a financial
// profile and its computed credit score. Generation is a pure function:
// every rule is evaluated independently and none suppress others, so a
// profile can legitimately produce anywhere from one to six insights.
package insight

import (
	"fmt"

	"github.com/sells-group/credit-engine/internal/model"
)

// Housing cost ratio thresholds. Between the two the rule stays silent.
const (
	housingRatioWarn = 0.4
	housingRatioGood = 0.25
)

// Savings runway thresholds, in months of income covered.
const (
	runwayShortMonths  = 3
	runwayStrongMonths = 6
)

// Generate returns insights for a profile and score, most score-significant
// first. Deterministic given identical inputs.
func Generate(p *model.FinancialProfile, score int) []model.Insight {
	if p == nil {
		p = model.DefaultProfile()
	}

	insights := []model.Insight{scoreBand(score)}

	if in, ok := latePayments(p); ok {
		insights = append(insights, in)
	}
	if in, ok := housingRatio(p); ok {
		insights = append(insights, in)
	}
	if in, ok := savingsRunway(p); ok {
		insights = append(insights, in)
	}
	if in, ok := historyLength(p); ok {
		insights = append(insights, in)
	}
	if in, ok := cardCount(p); ok {
		insights = append(insights, in)
	}

	return insights
}

// scoreBand is the one insight that is always present.
func scoreBand(score int) model.Insight {
	switch {
	case score >= 750:
		return model.Insight{
			Category: model.InsightPositive,
			Title:    "Excellent Credit",
			Message:  "Your credit score qualifies you for the best interest rates available.",
			Impact:   model.ImpactHigh,
		}
	case score >= 700:
		return model.Insight{
			Category: model.InsightPositive,
			Title:    "Strong Credit",
			Message:  "You qualify for most loans at competitive rates. Reaching 750+ unlocks the best offers.",
			Impact:   model.ImpactMedium,
		}
	case score >= 650:
		return model.Insight{
			Category: model.InsightTip,
			Title:    "Good Credit",
			Message:  "You qualify for many loans. Consistent on-time payments will push your score higher.",
			Impact:   model.ImpactMedium,
		}
	default:
		return model.Insight{
			Category: model.InsightWarning,
			Title:    "Credit Improvement Needed",
			Message:  "Focus on payment history and reducing debt to improve your score.",
			Impact:   model.ImpactHigh,
		}
	}
}

func latePayments(p *model.FinancialProfile) (model.Insight, bool) {
	late := p.Behavior.LatePayments
	if late <= 0 {
		return model.Insight{}, false
	}
	if late > 2 {
		return model.Insight{
			Category: model.InsightWarning,
			Title:    "Payment History",
			Message:  "Multiple recent late payments are weighing heavily on your score. Eliminating them could recover 50-100 points.",
			Impact:   model.ImpactHigh,
		}, true
	}
	return model.Insight{
		Category: model.InsightWarning,
		Title:    "Payment History",
		Message:  "A recent late payment is holding your score back. Set up automatic payments to avoid repeats.",
		Impact:   model.ImpactMedium,
	}, true
}

// housingRatio compares monthly housing cost against monthly income.
// Emitted only when both values are positive.
func housingRatio(p *model.FinancialProfile) (model.Insight, bool) {
	income := p.Employment.AnnualIncome
	cost := p.Housing.MonthlyCost
	if income <= 0 || cost <= 0 {
		return model.Insight{}, false
	}

	ratio := cost / (income / 12)
	switch {
	case ratio > housingRatioWarn:
		return model.Insight{
			Category: model.InsightWarning,
			Title:    "Housing Costs",
			Message:  fmt.Sprintf("Housing takes %.0f%% of your monthly income. Keeping it under 40%% improves lending terms.", ratio*100),
			Impact:   model.ImpactMedium,
		}, true
	case ratio < housingRatioGood:
		return model.Insight{
			Category: model.InsightPositive,
			Title:    "Housing Costs",
			Message:  "Your housing costs are well within a healthy share of income.",
			Impact:   model.ImpactLow,
		}, true
	default:
		return model.Insight{}, false
	}
}

// savingsRunway expresses savings as months of income covered.
func savingsRunway(p *model.FinancialProfile) (model.Insight, bool) {
	income := p.Employment.AnnualIncome
	if income <= 0 {
		return model.Insight{}, false
	}

	months := p.Housing.Savings / (income / 12)
	switch {
	case months < runwayShortMonths:
		return model.Insight{
			Category: model.InsightTip,
			Title:    "Emergency Fund",
			Message:  "Your savings cover less than 3 months of income. Build toward a 3-6 month cushion.",
			Impact:   model.ImpactMedium,
		}, true
	case months >= runwayStrongMonths:
		return model.Insight{
			Category: model.InsightPositive,
			Title:    "Emergency Fund",
			Message:  fmt.Sprintf("Your savings cover %.0f months of income, a strong financial cushion.", months),
			Impact:   model.ImpactLow,
		}, true
	default:
		return model.Insight{}, false
	}
}

func historyLength(p *model.FinancialProfile) (model.Insight, bool) {
	if p.Behavior.CreditHistoryLength >= 2 {
		return model.Insight{}, false
	}
	return model.Insight{
		Category: model.InsightTip,
		Title:    "Credit History",
		Message:  "A short credit history limits your score. Keep your oldest accounts open and active.",
		Impact:   model.ImpactMedium,
	}, true
}

func cardCount(p *model.FinancialProfile) (model.Insight, bool) {
	cards := p.Credit.NumCreditCards
	switch {
	case cards == 0:
		return model.Insight{
			Category: model.InsightTip,
			Title:    "Credit Mix",
			Message:  "Opening a credit card and paying it in full each month builds payment history.",
			Impact:   model.ImpactLow,
		}, true
	case cards > 5:
		return model.Insight{
			Category: model.InsightWarning,
			Title:    "Credit Mix",
			Message:  "A large number of open cards can signal risk. Consider consolidating unused accounts.",
			Impact:   model.ImpactLow,
		}, true
	default:
		return model.Insight{}, false
	}
}
