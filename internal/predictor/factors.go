package predictor

import (
	"github.com/sells-group/credit-engine/internal/model"
)

// trainedFactors builds the explainability breakdown for trained
// predictions. Weights match the rule-based path; statuses use finer
// three-tier bands and carry descriptive text. Factors are derived from
// the same profile fields the model consumes, not from model internals.
func trainedFactors(p *model.FinancialProfile) []model.ScoreFactor {
	return []model.ScoreFactor{
		paymentHistoryFactor(p),
		utilizationFactor(p),
		historyLengthFactor(p),
		creditMixFactor(p),
		newCreditFactor(p),
	}
}

func paymentHistoryFactor(p *model.FinancialProfile) model.ScoreFactor {
	late := p.Behavior.LatePayments
	f := model.ScoreFactor{Name: "Payment History", Weight: 35, Impact: model.ImpactHigh}
	switch {
	case late == 0:
		f.Status = model.StatusGood
		f.Description = "No late payments on record."
	case late <= 2:
		f.Status = model.StatusFair
		f.Description = "A few late payments are reducing your score."
	default:
		f.Status = model.StatusPoor
		f.Description = "Frequent late payments are significantly reducing your score."
	}
	return f
}

func utilizationFactor(p *model.FinancialProfile) model.ScoreFactor {
	f := model.ScoreFactor{Name: "Credit Utilization", Weight: 30, Impact: model.ImpactHigh}
	debt := p.Housing.MonthlyCost + p.MonthlyLoanPayments()
	income := p.Employment.AnnualIncome
	switch {
	case income <= 0 || debt <= 0:
		f.Status = model.StatusGood
		f.Description = "No recurring debt obligations reported."
	case debt/(income/12) < 0.3:
		f.Status = model.StatusGood
		f.Description = "Debt obligations are a small share of income."
	case debt/(income/12) < 0.5:
		f.Status = model.StatusFair
		f.Description = "Debt obligations take a moderate share of income."
	default:
		f.Status = model.StatusPoor
		f.Description = "Debt obligations take a large share of income."
	}
	return f
}

func historyLengthFactor(p *model.FinancialProfile) model.ScoreFactor {
	years := p.Behavior.CreditHistoryLength
	f := model.ScoreFactor{Name: "Length of Credit History", Weight: 15, Impact: model.ImpactMedium}
	switch {
	case years >= 5:
		f.Status = model.StatusGood
		f.Description = "A long credit history strengthens your profile."
	case years >= 2:
		f.Status = model.StatusFair
		f.Description = "A moderate credit history; it strengthens with time."
	default:
		f.Status = model.StatusPoor
		f.Description = "A short credit history limits your score."
	}
	return f
}

func creditMixFactor(p *model.FinancialProfile) model.ScoreFactor {
	f := model.ScoreFactor{Name: "Credit Mix", Weight: 10, Impact: model.ImpactLow}
	kinds := 0
	if p.Credit.NumCreditCards > 0 {
		kinds++
	}
	if p.Credit.HasStudentLoan {
		kinds++
	}
	if p.Credit.HasCarLoan {
		kinds++
	}
	if p.Housing.HasMortgage {
		kinds++
	}
	switch {
	case kinds >= 3:
		f.Status = model.StatusGood
		f.Description = "A diverse mix of credit products."
	case kinds >= 1:
		f.Status = model.StatusFair
		f.Description = "A limited mix of credit products."
	default:
		f.Status = model.StatusPoor
		f.Description = "No active credit products to demonstrate history."
	}
	return f
}

func newCreditFactor(p *model.FinancialProfile) model.ScoreFactor {
	inquiries := p.Behavior.RecentInquiries
	f := model.ScoreFactor{Name: "New Credit", Weight: 10, Impact: model.ImpactLow}
	switch {
	case inquiries <= 1:
		f.Status = model.StatusGood
		f.Description = "Few recent credit inquiries."
	case inquiries <= 3:
		f.Status = model.StatusFair
		f.Description = "Several recent inquiries; space out new applications."
	default:
		f.Status = model.StatusPoor
		f.Description = "Many recent inquiries are flagging credit-seeking behavior."
	}
	return f
}
