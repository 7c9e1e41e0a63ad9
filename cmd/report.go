package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/featforge/featforge/internal/scanner"
	"github.com/featforge/featforge/internal/types"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgYellow).SprintFunc()
	pathLabel    = color.New(color.Faint).SprintFunc()
)

// printIssues writes one `severity: message` line per issue, colored by
// severity, with the offending source path appended for actionability.
func printIssues(w io.Writer, issues []types.ValidationIssue) {
	for _, issue := range issues {
		label := warningLabel(string(issue.Severity))
		if issue.Severity == types.SeverityError {
			label = errorLabel(string(issue.Severity))
		}
		fmt.Fprintf(w, "%s: %s", label, issue.Message)
		if issue.Location != "" {
			fmt.Fprintf(w, " %s", pathLabel("("+issue.Location+")"))
		}
		fmt.Fprintln(w)
	}
}

// printScanWarnings writes discovery warnings in the same log-line shape.
func printScanWarnings(w io.Writer, warnings []scanner.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "%s: %s %s\n", warningLabel("warning"), warning.Message, pathLabel("("+warning.Path+")"))
	}
}
