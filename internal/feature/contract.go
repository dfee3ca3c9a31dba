// Package feature defines the canonical feature contract between financial
// profiles and the trained credit score model: the ordered feature list,
// categorical encodings, and the profile-to-vector conversion.
package feature

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-engine/internal/model"
)

// Errors surfaced by feature preparation.
var (
	// ErrFeaturePreparation indicates a profile could not be coerced into a
	// valid numeric vector.
	ErrFeaturePreparation = eris.New("feature: preparation failed")

	// ErrFeatureMismatch indicates the prepared vector does not match the
	// shape the trained model was fit on. This is a hard error, never a
	// silent truncation.
	ErrFeatureMismatch = eris.New("feature: vector shape mismatch")
)

// Names is the canonical ordered feature list the trained model expects.
// The vector layout is: twelve numeric fields, three categorical codes,
// four booleans encoded as 0/1. Order here must match the artifact the
// model was trained against.
var Names = []string{
	"age",
	"annual_income",
	"monthly_housing_cost",
	"savings",
	"monthly_savings",
	"num_dependents",
	"num_credit_cards",
	"student_loan_payment",
	"car_loan_payment",
	"late_payments",
	"credit_history_length",
	"recent_credit_inquiries",
	"state_code",
	"education_code",
	"employment_code",
	"has_student_loan",
	"has_car_loan",
	"has_mortgage",
	"bankruptcy_history",
}

// Count is the fixed feature vector length.
func Count() int { return len(Names) }

// Vectorize converts a defaulted profile into the fixed-order numeric
// vector defined by Names. Unrecognized categorical values encode as 0;
// a non-finite numeric value is the only failure mode.
func Vectorize(p *model.FinancialProfile) ([]float64, error) {
	if p == nil {
		p = model.DefaultProfile()
	}

	vec := []float64{
		float64(p.Personal.Age),
		p.Employment.AnnualIncome,
		p.Housing.MonthlyCost,
		p.Housing.Savings,
		p.Housing.MonthlySavings,
		float64(p.Family.Dependents),
		float64(p.Credit.NumCreditCards),
		p.Credit.StudentLoanPayment,
		p.Credit.CarLoanPayment,
		float64(p.Behavior.LatePayments),
		float64(p.Behavior.CreditHistoryLength),
		float64(p.Behavior.RecentInquiries),
		float64(ParseState(p.Personal.State)),
		float64(ParseEducation(p.Personal.EducationLevel)),
		float64(ParseEmployment(p.Employment.EmploymentType)),
		boolFeature(p.Credit.HasStudentLoan),
		boolFeature(p.Credit.HasCarLoan),
		boolFeature(p.Housing.HasMortgage),
		boolFeature(p.Behavior.BankruptcyHistory),
	}

	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, eris.Wrapf(ErrFeaturePreparation, "feature: non-finite value in %s", Names[i])
		}
	}

	return vec, nil
}

// CheckShape verifies a prepared vector against the feature count a loaded
// model was fit on.
func CheckShape(vec []float64, modelFeatures int) error {
	if len(vec) != modelFeatures {
		return eris.Wrapf(ErrFeatureMismatch, "feature: have %d features, model expects %d", len(vec), modelFeatures)
	}
	return nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
