// Package types provides common type definitions used throughout the featforge CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import "time"

// FeatureRecord contains the declared metadata of one discovered feature,
// parsed from its feature.yaml descriptor. Records are created fresh on every
// discovery pass, are immutable after construction, and are discarded wholesale
// when the next pass runs.
type FeatureRecord struct {
	// ID is the unique stable identifier of the feature. It is also the basis
	// for generated symbol names (e.g. "user-profile" -> "UserProfileModule").
	ID string `yaml:"id" json:"id"`
	// Title is the human-readable display name of the feature
	Title string `yaml:"title" json:"title"`
	// Description provides optional documentation for the feature
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Routes lists the routes the feature exposes, in authored order
	Routes []RouteDescriptor `yaml:"routes" json:"routes"`
	// Nav declares optional navigation participation
	Nav *NavDescriptor `yaml:"nav,omitempty" json:"nav,omitempty"`
	// SourcePath is the absolute path of the folder that defined the feature,
	// used for diagnostics and for computing generated import paths
	SourcePath string `yaml:"-" json:"sourcePath"`
}

// RouteDescriptor declares one route exposed by a feature.
type RouteDescriptor struct {
	Path  string `yaml:"path" json:"path"`
	Title string `yaml:"title" json:"title"`
	// Primary marks the route used for navigation. At most one route per
	// feature may be primary.
	Primary bool `yaml:"primary,omitempty" json:"primary,omitempty"`
}

// NavDescriptor declares a feature's participation in the derived navigation.
type NavDescriptor struct {
	Label string `yaml:"label" json:"label"`
	// Order positions the entry in the navigation. A nil Order sorts strictly
	// after every defined order value.
	Order *int `yaml:"order,omitempty" json:"order,omitempty"`
}

// PrimaryRoute resolves the feature's primary route: the explicitly marked
// route if one exists, otherwise the first declared route. The second return
// value reports whether the primary was explicit.
func (f *FeatureRecord) PrimaryRoute() (RouteDescriptor, bool) {
	for _, route := range f.Routes {
		if route.Primary {
			return route, true
		}
	}
	if len(f.Routes) > 0 {
		return f.Routes[0], false
	}
	return RouteDescriptor{}, false
}

// Severity classifies a validation issue. Error-severity issues abort the
// build; warnings are logged and generation proceeds.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is a pure output value describing one problem found while
// validating a discovery batch. Issues are never mutated after creation.
type ValidationIssue struct {
	// FeatureID identifies the offending feature (may be empty if the id
	// itself is missing)
	FeatureID string   `json:"featureId"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	// Location is the source path of the offending feature folder
	Location string `json:"location"`
	// Field is the dotted path of the offending field, e.g. "routes[1].path"
	Field string `json:"field"`
}

// String renders the issue as a single build-tool log line.
func (i ValidationIssue) String() string {
	return string(i.Severity) + ": " + i.Message
}

// NavigationEntry is one derived item of the navigation model. Entries are
// regenerated on every pass, never independently authored.
type NavigationEntry struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Order *int   `json:"order,omitempty"`
}

// PassStats summarizes one discovery pass for logging and diagnostics.
type PassStats struct {
	Features   int           `json:"features"`
	Admissible int           `json:"admissible"`
	Warnings   int           `json:"warnings"`
	Errors     int           `json:"errors"`
	Duration   time.Duration `json:"duration"`
}
