// Package build sequences the discovery pipeline: scan, validate, compose
// navigation, generate artifacts.
//
// A pass either runs to completion or aborts with the full aggregated issue
// list; on abort no artifact is written, though artifacts from a previous
// successful pass may remain on disk. Passes are serialized by mutex, and
// watch-mode triggers arriving while a pass is in flight coalesce into at
// most one pending re-run.
package build

import (
	"context"
	"sync"
	"time"

	"github.com/featforge/featforge/internal/config"
	ferrors "github.com/featforge/featforge/internal/errors"
	"github.com/featforge/featforge/internal/generator"
	"github.com/featforge/featforge/internal/logging"
	"github.com/featforge/featforge/internal/nav"
	"github.com/featforge/featforge/internal/registry"
	"github.com/featforge/featforge/internal/scanner"
	"github.com/featforge/featforge/internal/types"
	"github.com/featforge/featforge/internal/validation"
	"golang.org/x/text/language"
)

// Pipeline orchestrates one discovery pass per trigger.
type Pipeline struct {
	root      string
	scanner   *scanner.FeatureScanner
	validator *validation.Validator
	composer  *nav.Composer
	generator *generator.Generator
	registry  *registry.SnapshotRegistry
	logger    logging.Logger

	// passMutex serializes passes so a new pass never starts while a
	// previous pass's artifact write is in flight.
	passMutex sync.Mutex
	// trigger has capacity one: triggers arriving faster than passes
	// complete coalesce instead of queueing unboundedly.
	trigger chan struct{}
}

// NewPipeline wires the pipeline components from configuration.
func NewPipeline(cfg *config.Config, logger logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	tag, err := language.Parse(cfg.Generate.Collation)
	if err != nil {
		tag = language.English
	}

	gen, err := generator.New(cfg.Features.Root, cfg.Generate.OutputDir, logger.WithComponent("generator"))
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		root: cfg.Features.Root,
		scanner: scanner.New(
			scanner.WithExcludeDirs(cfg.Features.ExcludeDirs...),
			// Exclude the output dir by resolved path, not by name, so a
			// feature folder elsewhere sharing its base name still scans.
			scanner.WithExcludePaths(gen.OutputDir()),
			scanner.WithLogger(logger.WithComponent("scanner")),
		),
		validator: validation.New(),
		composer:  nav.New(tag),
		generator: gen,
		registry:  registry.New(),
		logger:    logger.WithComponent("build"),
		trigger:   make(chan struct{}, 1),
	}, nil
}

// Registry exposes the snapshot registry for subscribers such as the
// live-reload notifier.
func (p *Pipeline) Registry() *registry.SnapshotRegistry {
	return p.registry
}

// Run executes one full discovery pass. It returns the published snapshot
// and, when validation found error-severity issues, a *errors.ValidationError
// aggregating all of them. Artifact-write failures are returned as
// *errors.GenerateError without a snapshot.
func (p *Pipeline) Run(ctx context.Context) (*registry.Snapshot, error) {
	p.passMutex.Lock()
	defer p.passMutex.Unlock()

	start := time.Now()

	records, warnings, err := p.scanner.ScanRoot(ctx, p.root)
	if err != nil {
		return nil, err
	}

	admissible, issues := p.validator.Validate(records)

	for _, issue := range issues {
		if issue.Severity == types.SeverityWarning {
			p.logger.Warn(ctx, nil, issue.Message, "feature", issue.FeatureID, "field", issue.Field)
		}
	}

	stats := types.PassStats{
		Features:   len(records),
		Admissible: len(admissible),
		Warnings:   len(warnings) + countSeverity(issues, types.SeverityWarning),
		Errors:     countSeverity(issues, types.SeverityError),
	}

	if verr := ferrors.NewValidationError(issues); verr != nil {
		stats.Duration = time.Since(start)
		snapshot := &registry.Snapshot{
			Root:      p.root,
			Features:  admissible,
			Issues:    issues,
			Aborted:   true,
			CreatedAt: time.Now(),
			Stats:     stats,
		}
		p.registry.Publish(snapshot)
		p.logger.Error(ctx, verr, "discovery pass aborted",
			"features", stats.Features, "errors", stats.Errors)
		return snapshot, verr
	}

	navigation := p.composer.Compose(admissible)

	if err := p.generator.Generate(ctx, admissible, navigation); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	snapshot := &registry.Snapshot{
		Root:       p.root,
		Features:   admissible,
		Navigation: navigation,
		Issues:     issues,
		CreatedAt:  time.Now(),
		Stats:      stats,
	}
	p.registry.Publish(snapshot)
	p.logger.Info(ctx, "discovery pass completed",
		"features", stats.Features,
		"admissible", stats.Admissible,
		"navigation", len(navigation),
		"duration", stats.Duration.String())
	return snapshot, nil
}

// Trigger requests a re-run. Triggers are coalesced: if a re-run is already
// pending, the call is a no-op.
func (p *Pipeline) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// WatchLoop consumes triggers until ctx is cancelled, running one pass per
// trigger. Pass failures are logged, not returned, so a broken edit never
// stops watch mode.
func (p *Pipeline) WatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.trigger:
			if _, err := p.Run(ctx); err != nil {
				p.logger.Error(ctx, err, "rebuild failed")
			}
		}
	}
}

func countSeverity(issues []types.ValidationIssue, severity types.Severity) int {
	count := 0
	for _, issue := range issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}
