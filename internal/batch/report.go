package batch

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/credit-engine/internal/model"
)

var reportHeader = []string{
	"applicant_id",
	"credit_score",
	"score_range",
	"loan_approved",
	"best_achievable_score",
	"prediction_method",
	"model_version",
	"insight_count",
}

// WriteCSV writes scored rows as a CSV report.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return eris.Wrap(err, "batch: write CSV header")
	}
	for i := range rows {
		if err := cw.Write(reportRecord(&rows[i])); err != nil {
			return eris.Wrapf(err, "batch: write CSV row %d", i+1)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "batch: flush CSV")
}

// WriteXLSX writes scored rows as an XLSX workbook at path.
func WriteXLSX(path string, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "batch: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range reportHeader {
		hr.AddCell().Value = h
	}

	for i := range rows {
		xr := sheet.AddRow()
		for _, v := range reportRecord(&rows[i]) {
			xr.AddCell().Value = v
		}
	}

	return eris.Wrapf(f.Save(path), "batch: save %s", path)
}

func reportRecord(row *Row) []string {
	res := row.Result
	return []string{
		row.ApplicantID,
		strconv.Itoa(res.CreditScore),
		model.ScoreRange(res.CreditScore),
		strconv.FormatBool(res.LoanApproved),
		strconv.Itoa(res.BestAchievableScore),
		string(res.Method),
		res.ModelVersion,
		strconv.Itoa(len(res.Insights)),
	}
}
