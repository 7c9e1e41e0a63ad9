package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/featforge/featforge/internal/config"
	"github.com/featforge/featforge/internal/scanner"
	"github.com/featforge/featforge/internal/types"
	"github.com/featforge/featforge/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"v"},
	Short:   "Validate feature metadata without generating artifacts",
	Long: `Scan the feature root and run the full validation rule set, printing
every issue found. Nothing is generated or written.

Exits with a non-zero status when any error-severity issue exists, so the
command can gate CI pipelines.

Examples:
  featforge validate                  # Validate configured feature root
  featforge validate --root ./feats   # Validate another tree
  featforge validate --strict-nav     # Require explicit primary routes for nav`,
	RunE: runValidate,
}

var validateStrictNav bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("root", "r", "", "Feature root directory to scan")
	validateCmd.Flags().BoolVar(&validateStrictNav, "strict-nav", false,
		"Treat nav participation without an explicit primary route as an error")
}

func runValidate(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{"root": "features.root"})

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

	opts := []validation.Option{}
	if validateStrictNav {
		opts = append(opts, validation.WithNavPrimaryPolicy(validation.NavPrimaryRequireExplicit))
	}
	admissible, issues := validation.New(opts...).Validate(records)
	printIssues(os.Stderr, issues)

	errorCount := 0
	for _, issue := range issues {
		if issue.Severity == types.SeverityError {
			errorCount++
		}
	}

	fmt.Printf("%d feature(s) scanned, %d admissible, %d issue(s)\n",
		len(records), len(admissible), len(issues))
	if errorCount > 0 {
		return fmt.Errorf("validation failed with %d error(s)", errorCount)
	}
	return nil
}
