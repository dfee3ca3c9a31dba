package rules

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights holds the tunable constants of the rule-based scorer. The factor
// weights must sum to 100; adjustment points are free-form business tuning.
type Weights struct {
	BaseScore int `yaml:"base_score"`

	// Factor weights shown in the explainability breakdown.
	PaymentHistoryWeight    int `yaml:"payment_history_weight"`
	CreditUtilizationWeight int `yaml:"credit_utilization_weight"`
	HistoryLengthWeight     int `yaml:"history_length_weight"`
	CreditMixWeight         int `yaml:"credit_mix_weight"`
	NewCreditWeight         int `yaml:"new_credit_weight"`

	// Per-event penalties.
	LatePaymentPenalty int `yaml:"late_payment_penalty"`
	DependentPenalty   int `yaml:"dependent_penalty"`

	// Margin added to the computed score to form the best achievable score.
	BestScoreMargin int `yaml:"best_score_margin"`
}

// DefaultWeights returns the reference rule weights.
func DefaultWeights() Weights {
	return Weights{
		BaseScore:               500,
		PaymentHistoryWeight:    35,
		CreditUtilizationWeight: 30,
		HistoryLengthWeight:     15,
		CreditMixWeight:         10,
		NewCreditWeight:         10,
		LatePaymentPenalty:      25,
		DependentPenalty:        10,
		BestScoreMargin:         150,
	}
}

// LoadWeights reads rule weights from a YAML file, filling absent fields
// from defaults, and validates the result.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return w, eris.Wrapf(err, "rules: read weights %s", path)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, eris.Wrapf(err, "rules: parse weights %s", path)
	}
	if err := ValidateWeights(w); err != nil {
		return w, err
	}
	return w, nil
}

// ValidateWeights checks structural constraints on a weight table,
// collecting all violations into a single error.
func ValidateWeights(w Weights) error {
	var problems []string

	factorSum := w.PaymentHistoryWeight + w.CreditUtilizationWeight +
		w.HistoryLengthWeight + w.CreditMixWeight + w.NewCreditWeight
	if factorSum != 100 {
		problems = append(problems, eris.Errorf("factor weights sum to %d, want 100", factorSum).Error())
	}
	if w.BaseScore < 300 || w.BaseScore > 850 {
		problems = append(problems, eris.Errorf("base_score %d outside [300,850]", w.BaseScore).Error())
	}
	if w.LatePaymentPenalty < 0 {
		problems = append(problems, "late_payment_penalty must be >= 0")
	}
	if w.DependentPenalty < 0 {
		problems = append(problems, "dependent_penalty must be >= 0")
	}
	if w.BestScoreMargin < 0 {
		problems = append(problems, "best_score_margin must be >= 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("rules: invalid weights: %s", strings.Join(problems, "; "))
	}
	return nil
}
