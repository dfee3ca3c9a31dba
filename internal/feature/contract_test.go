package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credit-engine/internal/model"
)

func TestVectorizeLengthAndOrder(t *testing.T) {
	p := model.DefaultProfile()
	p.Personal.Age = 35
	p.Personal.State = "CA"
	p.Personal.EducationLevel = "bachelors"
	p.Employment.AnnualIncome = 85000
	p.Employment.EmploymentType = "full_time"
	p.Housing.MonthlyCost = 1800
	p.Housing.Savings = 25000
	p.Housing.MonthlySavings = 500
	p.Housing.HasMortgage = true
	p.Family.Dependents = 2
	p.Credit.NumCreditCards = 3
	p.Credit.StudentLoanPayment = 250
	p.Credit.CarLoanPayment = 300
	p.Credit.HasStudentLoan = true
	p.Behavior.LatePayments = 1
	p.Behavior.CreditHistoryLength = 8
	p.Behavior.RecentInquiries = 2

	vec, err := Vectorize(p)
	require.NoError(t, err)
	require.Len(t, vec, Count())

	want := []float64{
		35, 85000, 1800, 25000, 500, 2, 3, 250, 300, 1, 8, 2, // numerics
		2, 3, 1, // state CA, education bachelors, employment full_time
		1, 0, 1, 0, // has_student_loan, has_car_loan, has_mortgage, bankruptcy
	}
	assert.Equal(t, want, vec)
}

func TestVectorizeNilProfileUsesDefaults(t *testing.T) {
	vec, err := Vectorize(nil)
	require.NoError(t, err)
	require.Len(t, vec, Count())

	assert.Equal(t, float64(model.DefaultAge), vec[0])
	assert.Equal(t, float64(model.DefaultAnnualIncome), vec[1])
}

func TestVectorizeUnknownCategoricalsEncodeZero(t *testing.T) {
	p := model.DefaultProfile()
	p.Personal.State = "XX"
	p.Personal.EducationLevel = "unknown"
	p.Employment.EmploymentType = "gig"

	vec, err := Vectorize(p)
	require.NoError(t, err)

	assert.Zero(t, vec[12])
	assert.Zero(t, vec[13])
	assert.Zero(t, vec[14])
}

func TestVectorizeRejectsNonFinite(t *testing.T) {
	p := model.DefaultProfile()
	p.Housing.Savings = math.NaN()

	_, err := Vectorize(p)
	assert.ErrorIs(t, err, ErrFeaturePreparation)
}

func TestCheckShape(t *testing.T) {
	vec := make([]float64, Count())

	assert.NoError(t, CheckShape(vec, Count()))
	assert.ErrorIs(t, CheckShape(vec, Count()-1), ErrFeatureMismatch)
	assert.ErrorIs(t, CheckShape(vec[:5], Count()), ErrFeatureMismatch)
}
