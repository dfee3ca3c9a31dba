package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-engine/internal/feature"
	"github.com/sells-group/credit-engine/internal/treemodel"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect and manage the trained model artifact",
}

var modelInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show trained model status",
	RunE: func(cmd *cobra.Command, args []string) error {
		gateway := newGateway()
		if gateway == nil {
			return eris.New("model: trained model is disabled (set CREDIT_MODEL_ENABLED=true)")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(gateway.ModelInfo()), "model: encode info")
	},
}

var modelExportDemoCmd = &cobra.Command{
	Use:   "export-demo [path]",
	Short: "Write a small deterministic demo ensemble artifact",
	Long: `Write a demo gradient-boosted ensemble to the given path (default: the
configured model path). The demo model is deterministic and only useful
for local development and smoke tests.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Model.Path
		if len(args) > 0 {
			path = args[0]
		}

		ens := treemodel.Demo(feature.Names)
		if err := ens.Save(path); err != nil {
			return eris.Wrapf(err, "model: write demo artifact to %s", path)
		}

		zap.L().Info("model: demo artifact written",
			zap.String("path", path),
			zap.String("version", ens.Version),
			zap.Int("trees", len(ens.Trees)),
		)
		return nil
	},
}

func init() {
	modelCmd.AddCommand(modelInfoCmd)
	modelCmd.AddCommand(modelExportDemoCmd)
	rootCmd.AddCommand(modelCmd)
}
