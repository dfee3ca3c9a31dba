package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-engine/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score [profile.json]",
	Short: "Score a single financial profile",
	Long: `Score a financial profile from a JSON file (or stdin with "-").

The profile is a nested JSON object with personal_info, employment_income,
housing, family, credit_loans, and credit_behavior sections. Missing fields
are substituted with documented defaults, so a partial profile always
scores.

Examples:
  # Score a profile file
  credit-engine score applicant.json

  # Score from stdin and print raw JSON
  cat applicant.json | credit-engine score - --format json

  # Score and persist under an applicant id
  credit-engine score applicant.json --save --applicant a-1042`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("format", "table", "output format: table or json")
	f.Bool("save", false, "persist the result to the store")
	f.String("applicant", "", "applicant id used when saving")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")
	applicant, _ := cmd.Flags().GetString("applicant")

	if format != "table" && format != "json" {
		return eris.Errorf("score: --format must be table or json (got %q)", format)
	}
	if save && applicant == "" {
		return eris.New("score: --save requires --applicant")
	}

	body, err := readProfileArg(args)
	if err != nil {
		return err
	}

	profile, err := model.ParseProfile(body)
	if err != nil {
		return eris.Wrap(err, "score: parse profile")
	}

	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	result := eng.ComputeScore(ctx, profile)

	if save {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		stored, err := st.SaveResult(ctx, applicant, result)
		if err != nil {
			return eris.Wrap(err, "score: save result")
		}
		zap.L().Info("score: result saved",
			zap.String("id", stored.ID),
			zap.String("applicant", applicant),
		)
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "score: encode result")
	}

	printResult(result)
	return nil
}

func readProfileArg(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		body, err := io.ReadAll(os.Stdin)
		return body, eris.Wrap(err, "score: read stdin")
	}
	body, err := os.ReadFile(args[0])
	return body, eris.Wrapf(err, "score: read %s", args[0])
}

func printResult(res *model.ScoreResult) {
	fmt.Printf("Credit Score:    %d (%s)\n", res.CreditScore, model.ScoreRange(res.CreditScore))
	fmt.Printf("Loan Approved:   %t\n", res.LoanApproved)
	fmt.Printf("Best Achievable: %d\n", res.BestAchievableScore)
	fmt.Printf("Method:          %s (%s)\n", res.Method, res.ModelVersion)

	if len(res.ScoreFactors) > 0 {
		fmt.Println("\nScore Factors:")
		for _, f := range res.ScoreFactors {
			fmt.Printf("  %-26s %3d%%  %s", f.Name, f.Weight, f.Status)
			if f.Description != "" {
				fmt.Printf("  %s", f.Description)
			}
			fmt.Println()
		}
	}

	if len(res.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, in := range res.Insights {
			fmt.Printf("  [%s] %s: %s\n", in.Category, in.Title, in.Message)
		}
	}
}
