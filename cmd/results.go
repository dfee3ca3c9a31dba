package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/credit-engine/internal/model"
	"github.com/sells-group/credit-engine/internal/monitoring"
	"github.com/sells-group/credit-engine/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored score results",
	RunE:  runResults,
}

func init() {
	f := resultsCmd.Flags()
	f.String("applicant", "", "filter by applicant id")
	f.String("method", "", "filter by prediction method")
	f.Int("limit", 20, "maximum rows to list")
	f.Bool("metrics", false, "print aggregate metrics instead of rows")
	f.Int("lookback-hours", 24, "metrics lookback window")

	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	metrics, _ := cmd.Flags().GetBool("metrics")
	if metrics {
		lookback, _ := cmd.Flags().GetInt("lookback-hours")
		snap, err := monitoring.NewCollector(st).Collect(ctx, lookback)
		if err != nil {
			return eris.Wrap(err, "results: collect metrics")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(snap), "results: encode metrics")
	}

	applicant, _ := cmd.Flags().GetString("applicant")
	method, _ := cmd.Flags().GetString("method")
	limit, _ := cmd.Flags().GetInt("limit")

	rows, err := st.ListResults(ctx, store.ResultFilter{
		ApplicantID: applicant,
		Method:      model.Method(method),
		Limit:       limit,
	})
	if err != nil {
		return eris.Wrap(err, "results: list")
	}

	if len(rows) == 0 {
		fmt.Println("no results")
		return nil
	}

	fmt.Printf("%-36s  %-16s  %5s  %-8s  %-13s  %s\n",
		"ID", "APPLICANT", "SCORE", "APPROVED", "METHOD", "CREATED")
	for i := range rows {
		r := &rows[i]
		fmt.Printf("%-36s  %-16s  %5d  %-8t  %-13s  %s\n",
			r.ID, r.ApplicantID, r.Result.CreditScore, r.Result.LoanApproved,
			r.Result.Method, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
