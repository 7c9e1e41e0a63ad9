// Package scanner provides feature discovery for featforge.
//
// The scanner walks a root directory depth-first in deterministic
// lexicographic order and collects feature records. A directory containing
// both a metadata descriptor (feature.yaml) and a module descriptor
// (module.go) is treated as a feature leaf; the scanner does not recurse
// below it, because feature folders cannot contain nested features.
// Descriptors that fail to parse produce non-fatal discovery warnings so
// that one malformed feature never blocks discovery of the others. The
// scanner never mutates the filesystem.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/featforge/featforge/internal/logging"
	"github.com/featforge/featforge/internal/types"
)

const (
	// MetadataFile is the declarative metadata descriptor of a feature folder.
	MetadataFile = "feature.yaml"
	// ModuleFile is the feature's module entry point. Its content is opaque
	// to the scanner beyond existence and import path.
	ModuleFile = "module.go"
)

// Warning is a non-fatal discovery problem: the offending folder was skipped
// and the scan continued.
type Warning struct {
	Path    string
	Message string
}

// String renders the warning as a build-tool log line.
func (w Warning) String() string {
	return fmt.Sprintf("warning: %s (%s)", w.Message, w.Path)
}

// FeatureScanner discovers feature folders beneath a configured root.
type FeatureScanner struct {
	excludeDirs  map[string]struct{}
	excludePaths map[string]struct{}
	logger       logging.Logger
}

// Option configures a FeatureScanner.
type Option func(*FeatureScanner)

// WithExcludeDirs sets directory names skipped during traversal, in addition
// to hidden directories which are always skipped.
func WithExcludeDirs(names ...string) Option {
	return func(s *FeatureScanner) {
		for _, name := range names {
			s.excludeDirs[name] = struct{}{}
		}
	}
}

// WithExcludePaths sets absolute directory paths skipped during traversal.
// Unlike WithExcludeDirs this matches one exact location, not every directory
// sharing a name; the generated output dir is excluded this way so a feature
// folder elsewhere with the same base name is still discovered.
func WithExcludePaths(paths ...string) Option {
	return func(s *FeatureScanner) {
		for _, p := range paths {
			s.excludePaths[filepath.Clean(p)] = struct{}{}
		}
	}
}

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(s *FeatureScanner) {
		s.logger = logger
	}
}

// New creates a feature scanner.
func New(opts ...Option) *FeatureScanner {
	s := &FeatureScanner{
		excludeDirs: map[string]struct{}{
			"node_modules": {},
			"vendor":       {},
		},
		excludePaths: make(map[string]struct{}),
		logger:       logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanRoot walks root and returns the discovered feature records in
// deterministic traversal order, plus any non-fatal discovery warnings.
// Only an unreadable root is a hard error.
func (s *FeatureScanner) ScanRoot(ctx context.Context, root string) ([]*types.FeatureRecord, []Warning, error) {
	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, nil, fmt.Errorf("resolving scan root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("reading scan root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	var records []*types.FeatureRecord
	var warnings []Warning
	if err := s.walk(ctx, absRoot, &records, &warnings); err != nil {
		return nil, nil, err
	}

	for _, w := range warnings {
		s.logger.Warn(ctx, nil, w.Message, "path", w.Path)
	}
	s.logger.Debug(ctx, "feature scan completed",
		"root", absRoot, "features", len(records), "warnings", len(warnings))

	return records, warnings, nil
}

// walk recurses depth-first. os.ReadDir returns entries sorted by name, which
// gives the reproducible lexicographic order downstream codegen relies on.
func (s *FeatureScanner) walk(ctx context.Context, dir string, records *[]*types.FeatureRecord, warnings *[]Warning) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, excluded := s.excludePaths[dir]; excluded {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// A subdirectory that disappears mid-scan is a warning, not an abort.
		*warnings = append(*warnings, Warning{Path: dir, Message: fmt.Sprintf("cannot read directory: %v", err)})
		return nil
	}

	if isFeatureLeaf(entries) {
		record, warning := s.parseFeature(dir)
		if warning != nil {
			*warnings = append(*warnings, *warning)
			return nil
		}
		*records = append(*records, record)
		// Feature folders cannot contain nested features.
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, excluded := s.excludeDirs[name]; excluded {
			continue
		}
		if err := s.walk(ctx, filepath.Join(dir, name), records, warnings); err != nil {
			return err
		}
	}
	return nil
}

func isFeatureLeaf(entries []os.DirEntry) bool {
	var hasMetadata, hasModule bool
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch entry.Name() {
		case MetadataFile:
			hasMetadata = true
		case ModuleFile:
			hasModule = true
		}
	}
	return hasMetadata && hasModule
}

// parseFeature loads the metadata descriptor of a feature folder. Parse
// failures and empty descriptors are returned as warnings so the caller can
// skip the folder and keep scanning.
func (s *FeatureScanner) parseFeature(dir string) (*types.FeatureRecord, *Warning) {
	metadataPath := filepath.Join(dir, MetadataFile)

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, &Warning{Path: dir, Message: fmt.Sprintf("cannot read %s: %v", MetadataFile, err)}
	}

	var record types.FeatureRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, &Warning{Path: dir, Message: fmt.Sprintf("cannot parse %s: %v", MetadataFile, err)}
	}

	if record.ID == "" && record.Title == "" && len(record.Routes) == 0 && record.Nav == nil {
		return nil, &Warning{Path: dir, Message: fmt.Sprintf("%s declares no feature metadata", MetadataFile)}
	}

	record.SourcePath = dir
	return &record, nil
}
