package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/featforge/featforge/internal/build"
	"github.com/featforge/featforge/internal/config"
	ferrors "github.com/featforge/featforge/internal/errors"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Run one discovery pass and generate artifacts",
	Long: `Run a single discovery pass: scan the feature root, validate the
declared metadata, compose the navigation model, and write the registry and
module-aggregator artifacts.

Intended to run before compilation, typically via a go:generate directive in
the host application:

  //go:generate featforge build

The build fails with a non-zero exit code and the full aggregated issue list
when any error-severity issue is found; no artifact is written in that case.

Examples:
  featforge build                       # Use configured feature root
  featforge build --root ./features     # Override the scan root
  featforge build --output ./featforge  # Override the artifact directory`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("root", "r", "", "Feature root directory to scan")
	buildCmd.Flags().StringP("output", "o", "", "Output directory for generated artifacts")
}

func runBuild(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"root":   "features.root",
		"output": "generate.output_dir",
	})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	pipeline, err := build.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	snapshot, err := pipeline.Run(cmd.Context())
	if err != nil {
		var verr *ferrors.ValidationError
		if errors.As(err, &verr) {
			printIssues(os.Stderr, snapshot.Issues)
			return fmt.Errorf("build aborted: %d validation error(s)", len(verr.Issues))
		}
		return err
	}

	printIssues(os.Stderr, snapshot.Issues)
	fmt.Printf("Generated artifacts for %d feature(s) in %v\n",
		len(snapshot.Features), time.Since(start).Round(time.Millisecond))
	return nil
}
