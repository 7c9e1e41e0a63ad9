// Package errors defines the failure classes of the featforge pipeline.
//
// Validation issues are returned as data and only turned into an error at the
// orchestrator boundary: ValidationError aggregates every error-severity issue
// of a pass into a single build-failing error. GenerateError marks fatal
// artifact-write failures, which are a distinct failure class and are never
// aggregated with validation issues.
package errors

import (
	"fmt"
	"strings"
	"sync"

	"github.com/featforge/featforge/internal/types"
)

// ValidationError aggregates the error-severity issues of one discovery pass
// into a single multi-line, human-readable error that fails the build.
type ValidationError struct {
	Issues []types.ValidationIssue
}

// NewValidationError builds a ValidationError from the error-severity subset
// of issues. It returns nil if the slice contains no errors.
func NewValidationError(issues []types.ValidationIssue) *ValidationError {
	var errs []types.ValidationIssue
	for _, issue := range issues {
		if issue.Severity == types.SeverityError {
			errs = append(errs, issue)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Issues: errs}
}

// Error implements the error interface with one line per issue so that a
// build with N independent failures reports all N of them.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "feature validation failed with %d error(s):", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(issue.Message)
		if issue.Location != "" {
			fmt.Fprintf(&b, " (%s)", issue.Location)
		}
	}
	return b.String()
}

// GenerateError wraps an I/O failure while writing a generated artifact.
type GenerateError struct {
	Path string
	Err  error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("writing generated artifact %s: %v", e.Path, e.Err)
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// IssueCollector accumulates validation issues across a discovery pass.
// It is safe for concurrent use, though the pipeline itself runs each pass
// single-threaded.
type IssueCollector struct {
	issues []types.ValidationIssue
	mutex  sync.RWMutex
}

// NewIssueCollector creates an empty issue collector.
func NewIssueCollector() *IssueCollector {
	return &IssueCollector{issues: make([]types.ValidationIssue, 0)}
}

// Add appends an issue to the collector.
func (c *IssueCollector) Add(issue types.ValidationIssue) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.issues = append(c.issues, issue)
}

// All returns a copy of every collected issue in insertion order.
func (c *IssueCollector) All() []types.ValidationIssue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]types.ValidationIssue, len(c.issues))
	copy(result, c.issues)
	return result
}

// HasErrors reports whether any collected issue has error severity.
func (c *IssueCollector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, issue := range c.issues {
		if issue.Severity == types.SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of issues with the given severity.
func (c *IssueCollector) CountBySeverity(severity types.Severity) int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	count := 0
	for _, issue := range c.issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

// Clear drops all collected issues.
func (c *IssueCollector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.issues = c.issues[:0]
}
