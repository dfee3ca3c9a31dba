package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-engine/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <profiles.csv>",
	Short: "Score a CSV of financial profiles",
	Long: `Score every row of a CSV file concurrently and write a report.

The input CSV has one applicant per row. The first column is applicant_id;
the remaining columns use the flat profile field names (age, annual_income,
state, late_payments, ...). Missing columns fall back to the profile
defaults. Use "-" to read from stdin.

The output format is inferred from the --output extension (.csv or .xlsx);
without --output a CSV report is written to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.String("output", "", "report file (.csv or .xlsx, default stdout CSV)")
	f.Int("concurrency", 0, "concurrent scoring workers (default from config)")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	output, _ := cmd.Flags().GetString("output")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}

	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	input, err := batch.OpenInput(args[0])
	if err != nil {
		return err
	}
	defer input.Close()

	runner := batch.NewRunner(eng, concurrency)
	rows, err := runner.Run(ctx, input)
	if err != nil {
		return eris.Wrap(err, "batch: score profiles")
	}

	zap.L().Info("batch: scoring complete",
		zap.Int("rows", len(rows)),
		zap.Int("concurrency", concurrency),
	)

	switch {
	case output == "":
		return batch.WriteCSV(os.Stdout, rows)
	case strings.HasSuffix(output, ".xlsx"):
		return batch.WriteXLSX(output, rows)
	case strings.HasSuffix(output, ".csv"):
		out, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "batch: create %s", output)
		}
		defer out.Close()
		return batch.WriteCSV(out, rows)
	default:
		return eris.Errorf("batch: unsupported output extension in %q (want .csv or .xlsx)", output)
	}
}
