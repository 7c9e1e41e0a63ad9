package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/featforge/featforge/internal/config"
	"github.com/featforge/featforge/internal/scanner"
	"github.com/featforge/featforge/internal/validation"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all discovered features",
	Long: `List all discovered features with their routes and navigation
participation. Only admissible features are shown; run 'featforge validate'
for the full issue report.

Examples:
  featforge list                  # Table output
  featforge list -f json          # Output as JSON
  featforge list -f yaml          # Output as YAML`,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	featureScanner := scanner.New(
		scanner.WithExcludeDirs(cfg.Features.ExcludeDirs...),
		scanner.WithLogger(logger.WithComponent("scanner")),
	)

	records, warnings, err := featureScanner.ScanRoot(cmd.Context(), cfg.Features.Root)
	if err != nil {
		return err
	}
	printScanWarnings(os.Stderr, warnings)

	admissible, _ := validation.New().Validate(records)

	switch listFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(admissible)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(admissible)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tROUTES\tNAV\tPATH")
		for _, record := range admissible {
			nav := "-"
			if record.Nav != nil {
				nav = record.Nav.Label
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				record.ID, record.Title, len(record.Routes), nav, record.SourcePath)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format %q (expected table, json, or yaml)", listFormat)
	}
}
