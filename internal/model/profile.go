package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ErrInvalidProfile indicates the request body is not a JSON object at all.
// This is the only profile error that surfaces to the API caller; anything
// less malformed is repaired by defaulting.
var ErrInvalidProfile = eris.New("model: invalid financial profile")

// Documented defaults substituted for absent profile fields.
const (
	DefaultAge          = 30
	DefaultAnnualIncome = 50000
)

// FinancialProfile is the fully-defaulted scoring input. Construct it via
// ParseProfile or ApplyDefaults; all fields are plain values by the time
// any scoring strategy sees them.
type FinancialProfile struct {
	Personal   PersonalInfo     `json:"personal_info"`
	Employment EmploymentIncome `json:"employment_income"`
	Housing    Housing          `json:"housing"`
	Family     Family           `json:"family"`
	Credit     CreditLoans      `json:"credit_loans"`
	Behavior   CreditBehavior   `json:"credit_behavior"`
}

// PersonalInfo holds demographic fields.
type PersonalInfo struct {
	Age            int    `json:"age"`
	State          string `json:"state"`
	EducationLevel string `json:"education_level"`
}

// EmploymentIncome holds employment and income fields.
type EmploymentIncome struct {
	AnnualIncome    float64 `json:"annual_income"`
	EmploymentType  string  `json:"employment_type"`
	YearsCurrentJob float64 `json:"years_current_job"`
}

// Housing holds housing cost and savings fields.
type Housing struct {
	MonthlyCost    float64 `json:"monthly_cost"`
	Savings        float64 `json:"savings"`
	MonthlySavings float64 `json:"monthly_savings"`
	HasMortgage    bool    `json:"has_mortgage"`
}

// Family holds household fields.
type Family struct {
	Dependents int `json:"dependents"`
}

// CreditLoans holds existing credit product fields.
type CreditLoans struct {
	NumCreditCards     int     `json:"num_credit_cards"`
	StudentLoanPayment float64 `json:"student_loan_payment"`
	CarLoanPayment     float64 `json:"car_loan_payment"`
	HasStudentLoan     bool    `json:"has_student_loan"`
	HasCarLoan         bool    `json:"has_car_loan"`
}

// CreditBehavior holds repayment history fields.
type CreditBehavior struct {
	LatePayments        int  `json:"late_payments"`
	CreditHistoryLength int  `json:"credit_history_length"`
	RecentInquiries     int  `json:"recent_credit_inquiries"`
	BankruptcyHistory   bool `json:"bankruptcy_history"`
}

// MonthlyLoanPayments returns the combined monthly student and car loan
// payments used by the debt-to-income calculation.
func (p *FinancialProfile) MonthlyLoanPayments() float64 {
	return p.Credit.StudentLoanPayment + p.Credit.CarLoanPayment
}

// wireProfile mirrors FinancialProfile with pointer fields so that absent
// and explicitly-zero values are distinguishable during decoding. Missing
// sections and missing fields both fall through to defaults.
type wireProfile struct {
	Personal *struct {
		Age            *int    `json:"age"`
		State          *string `json:"state"`
		EducationLevel *string `json:"education_level"`
	} `json:"personal_info"`
	Employment *struct {
		AnnualIncome    *float64 `json:"annual_income"`
		EmploymentType  *string  `json:"employment_type"`
		YearsCurrentJob *float64 `json:"years_current_job"`
	} `json:"employment_income"`
	Housing *struct {
		MonthlyCost    *float64 `json:"monthly_cost"`
		Savings        *float64 `json:"savings"`
		MonthlySavings *float64 `json:"monthly_savings"`
		HasMortgage    *bool    `json:"has_mortgage"`
	} `json:"housing"`
	Family *struct {
		Dependents *int `json:"dependents"`
	} `json:"family"`
	Credit *struct {
		NumCreditCards     *int     `json:"num_credit_cards"`
		StudentLoanPayment *float64 `json:"student_loan_payment"`
		CarLoanPayment     *float64 `json:"car_loan_payment"`
		HasStudentLoan     *bool    `json:"has_student_loan"`
		HasCarLoan         *bool    `json:"has_car_loan"`
	} `json:"credit_loans"`
	Behavior *struct {
		LatePayments        *int  `json:"late_payments"`
		CreditHistoryLength *int  `json:"credit_history_length"`
		RecentInquiries     *int  `json:"recent_credit_inquiries"`
		BankruptcyHistory   *bool `json:"bankruptcy_history"`
	} `json:"credit_behavior"`
}

// ParseProfile decodes a JSON request body into a fully-defaulted
// FinancialProfile. Missing sections and fields are silently substituted
// with documented defaults; only a body that is not a JSON object returns
// ErrInvalidProfile.
func ParseProfile(data []byte) (*FinancialProfile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, eris.Wrap(ErrInvalidProfile, "model: body is not a JSON object")
	}

	var w wireProfile
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, eris.Wrap(ErrInvalidProfile, err.Error())
	}

	return w.withDefaults(), nil
}

// DefaultProfile returns a profile with every field set to its documented
// default, as produced by parsing an empty JSON object.
func DefaultProfile() *FinancialProfile {
	var w wireProfile
	return w.withDefaults()
}

func (w *wireProfile) withDefaults() *FinancialProfile {
	p := &FinancialProfile{
		Personal:   PersonalInfo{Age: DefaultAge},
		Employment: EmploymentIncome{AnnualIncome: DefaultAnnualIncome},
	}

	if s := w.Personal; s != nil {
		setInt(&p.Personal.Age, s.Age)
		setString(&p.Personal.State, s.State)
		setString(&p.Personal.EducationLevel, s.EducationLevel)
	}
	if s := w.Employment; s != nil {
		setFloat(&p.Employment.AnnualIncome, s.AnnualIncome)
		setString(&p.Employment.EmploymentType, s.EmploymentType)
		setFloat(&p.Employment.YearsCurrentJob, s.YearsCurrentJob)
	}
	if s := w.Housing; s != nil {
		setFloat(&p.Housing.MonthlyCost, s.MonthlyCost)
		setFloat(&p.Housing.Savings, s.Savings)
		setFloat(&p.Housing.MonthlySavings, s.MonthlySavings)
		setBool(&p.Housing.HasMortgage, s.HasMortgage)
	}
	if s := w.Family; s != nil {
		setInt(&p.Family.Dependents, s.Dependents)
	}
	if s := w.Credit; s != nil {
		setInt(&p.Credit.NumCreditCards, s.NumCreditCards)
		setFloat(&p.Credit.StudentLoanPayment, s.StudentLoanPayment)
		setFloat(&p.Credit.CarLoanPayment, s.CarLoanPayment)
		setBool(&p.Credit.HasStudentLoan, s.HasStudentLoan)
		setBool(&p.Credit.HasCarLoan, s.HasCarLoan)
	}
	if s := w.Behavior; s != nil {
		setInt(&p.Behavior.LatePayments, s.LatePayments)
		setInt(&p.Behavior.CreditHistoryLength, s.CreditHistoryLength)
		setInt(&p.Behavior.RecentInquiries, s.RecentInquiries)
		setBool(&p.Behavior.BankruptcyHistory, s.BankruptcyHistory)
	}

	return p
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
