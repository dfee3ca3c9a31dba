// Package batch scores many profiles from a CSV file concurrently and
// writes a summary report. Row order is preserved in the output
// regardless of scoring order.
package batch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/credit-engine/internal/engine"
	"github.com/sells-group/credit-engine/internal/model"
)

// Row is one scored input row.
type Row struct {
	ApplicantID string
	Profile     *model.FinancialProfile
	Result      *model.ScoreResult
}

// Runner scores CSV rows through the engine.
type Runner struct {
	engine      *engine.Engine
	concurrency int
}

// NewRunner creates a batch runner. Concurrency below 1 is raised to 1.
func NewRunner(eng *engine.Engine, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{engine: eng, concurrency: concurrency}
}

// Run reads profiles from CSV and scores them all. It only fails on
// unreadable input; individual rows can always be scored because the
// engine never errors.
func (r *Runner) Run(ctx context.Context, input io.Reader) ([]Row, error) {
	rows, err := readProfiles(input)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range rows {
		g.Go(func() error {
			rows[i].Result = r.engine.ComputeScore(gctx, rows[i].Profile)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch: score rows")
	}

	zap.L().Info("batch: scoring complete",
		zap.Int("rows", len(rows)),
		zap.Int("concurrency", r.concurrency),
	)
	return rows, nil
}

// column maps a CSV header to its profile section and field, with the
// value kind used for JSON coercion.
type column struct {
	section string
	field   string
	kind    byte // 'i' int, 'f' float, 's' string, 'b' bool
}

var columns = map[string]column{
	"age":                     {"personal_info", "age", 'i'},
	"state":                   {"personal_info", "state", 's'},
	"education_level":         {"personal_info", "education_level", 's'},
	"annual_income":           {"employment_income", "annual_income", 'f'},
	"employment_type":         {"employment_income", "employment_type", 's'},
	"years_current_job":       {"employment_income", "years_current_job", 'f'},
	"monthly_cost":            {"housing", "monthly_cost", 'f'},
	"savings":                 {"housing", "savings", 'f'},
	"monthly_savings":         {"housing", "monthly_savings", 'f'},
	"has_mortgage":            {"housing", "has_mortgage", 'b'},
	"dependents":              {"family", "dependents", 'i'},
	"num_credit_cards":        {"credit_loans", "num_credit_cards", 'i'},
	"student_loan_payment":    {"credit_loans", "student_loan_payment", 'f'},
	"car_loan_payment":        {"credit_loans", "car_loan_payment", 'f'},
	"has_student_loan":        {"credit_loans", "has_student_loan", 'b'},
	"has_car_loan":            {"credit_loans", "has_car_loan", 'b'},
	"late_payments":           {"credit_behavior", "late_payments", 'i'},
	"credit_history_length":   {"credit_behavior", "credit_history_length", 'i'},
	"recent_credit_inquiries": {"credit_behavior", "recent_credit_inquiries", 'i'},
	"bankruptcy_history":      {"credit_behavior", "bankruptcy_history", 'b'},
}

// readProfiles parses a headered CSV into defaulted profiles. Unknown
// columns are ignored; empty cells fall through to profile defaults.
func readProfiles(input io.Reader) ([]Row, error) {
	reader := csv.NewReader(input)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "batch: read CSV header")
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "batch: read CSV line %d", line+1)
		}
		line++

		row, err := parseRow(header, record)
		if err != nil {
			return nil, eris.Wrapf(err, "batch: line %d", line)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, eris.New("batch: input has no data rows")
	}
	return rows, nil
}

func parseRow(header, record []string) (Row, error) {
	sections := map[string]map[string]any{}
	var applicantID string

	for i, name := range header {
		if i >= len(record) {
			break
		}
		val := strings.TrimSpace(record[i])
		if val == "" {
			continue
		}
		if name == "applicant_id" {
			applicantID = val
			continue
		}

		col, ok := columns[name]
		if !ok {
			continue
		}

		typed, err := coerce(val, col.kind)
		if err != nil {
			return Row{}, eris.Wrapf(err, "column %s", name)
		}

		if sections[col.section] == nil {
			sections[col.section] = map[string]any{}
		}
		sections[col.section][col.field] = typed
	}

	// Round-trip through the profile parser so CSV rows and API bodies
	// share one defaulting path.
	body, err := json.Marshal(sections)
	if err != nil {
		return Row{}, eris.Wrap(err, "marshal sections")
	}
	profile, err := model.ParseProfile(body)
	if err != nil {
		return Row{}, err
	}

	return Row{ApplicantID: applicantID, Profile: profile}, nil
}

func coerce(val string, kind byte) (any, error) {
	switch kind {
	case 'i':
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, eris.Wrapf(err, "parse int %q", val)
		}
		return n, nil
	case 'f':
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "parse number %q", val)
		}
		return f, nil
	case 'b':
		switch strings.ToLower(val) {
		case "true", "yes", "1", "y":
			return true, nil
		case "false", "no", "0", "n":
			return false, nil
		}
		return nil, eris.Errorf("parse bool %q", val)
	default:
		return val, nil
	}
}

// OpenInput opens a CSV path, with "-" meaning stdin.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	return f, nil
}
