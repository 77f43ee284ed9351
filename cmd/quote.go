package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/app"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/config"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/pkg/export"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/qa/scenarios"
)

var (
	quoteScenario string
	quoteFormat   string
	quoteOut      string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute a one-shot quote from a scenario file",
	RunE:  runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteScenario, "scenario", "s", "", "scenario file (yaml)")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "csv", "output format: csv or json")
	quoteCmd.Flags().StringVarP(&quoteOut, "out", "o", "", "output file (default stdout)")
	_ = quoteCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	providers, err := app.Providers(cfg.Catalog)
	if err != nil {
		return err
	}

	sc, err := scenarios.Load(quoteScenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	if sc.Location == "" {
		sc.Location = cfg.Location
	}
	sess, err := sc.Apply(cmd.Context(), providers)
	if err != nil {
		return err
	}

	out := os.Stdout
	if quoteOut != "" {
		f, err := os.Create(quoteOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	lines := export.FromSession(sess)
	switch quoteFormat {
	case "csv":
		return export.WriteCSV(out, lines)
	case "json":
		return export.WriteJSON(out, lines)
	default:
		return fmt.Errorf("unknown format %q", quoteFormat)
	}
}
