// Package validation implements the consistency rule set applied to a
// discovery batch.
//
// The validator is a pure function over the scanner's output: it never
// returns an error, only issue values, so it is independently testable and
// the decision to abort a build stays with the orchestrator. All rules run
// across all records to maximize issue yield in a single pass; the only
// short-circuits are per-record stops on a missing id or an empty route list,
// which make the remaining record-scoped rules meaningless for that record.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/featforge/featforge/internal/errors"
	"github.com/featforge/featforge/internal/types"
)

// NavPrimaryPolicy decides how a feature that opts into navigation without an
// explicitly marked primary route is treated.
type NavPrimaryPolicy int

const (
	// NavPrimaryWarnFallback emits a warning and falls back to the first
	// declared route. This is the default policy.
	NavPrimaryWarnFallback NavPrimaryPolicy = iota
	// NavPrimaryRequireExplicit emits an error, requiring an explicit
	// primary route on every nav-participating feature.
	NavPrimaryRequireExplicit
)

// DefaultNavPrimaryPolicy is the documented policy for nav-participating
// features without an explicit primary route: warn and fall back to the
// first declared route.
const DefaultNavPrimaryPolicy = NavPrimaryWarnFallback

// Validator applies the rule set to a discovery batch.
type Validator struct {
	navPolicy NavPrimaryPolicy
}

// Option configures a Validator.
type Option func(*Validator)

// WithNavPrimaryPolicy overrides the nav-primary policy.
func WithNavPrimaryPolicy(policy NavPrimaryPolicy) Option {
	return func(v *Validator) {
		v.navPolicy = policy
	}
}

// New creates a validator with the default policy set.
func New(opts ...Option) *Validator {
	v := &Validator{navPolicy: DefaultNavPrimaryPolicy}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every record of a batch and returns the admissible subset
// plus all issues found. A record is admissible when no error-severity issue
// was raised against the record itself; batch-global collisions (duplicate id,
// duplicate route path) are reported as errors that abort the build but do
// not mark the colliding records inadmissible, since each record remains
// structurally valid on its own.
func (v *Validator) Validate(records []*types.FeatureRecord) ([]*types.FeatureRecord, []types.ValidationIssue) {
	collector := errors.NewIssueCollector()
	inadmissible := make(map[*types.FeatureRecord]bool)

	for _, record := range records {
		v.validateRecord(record, collector, inadmissible)
	}

	v.validateIDUniqueness(records, collector)
	v.validateRoutePathUniqueness(records, collector)

	admissible := make([]*types.FeatureRecord, 0, len(records))
	for _, record := range records {
		if !inadmissible[record] {
			admissible = append(admissible, record)
		}
	}
	return admissible, collector.All()
}

// validateRecord runs the record-scoped rules in order.
func (v *Validator) validateRecord(record *types.FeatureRecord, collector *errors.IssueCollector, inadmissible map[*types.FeatureRecord]bool) {
	fail := func(field, message string) {
		inadmissible[record] = true
		collector.Add(types.ValidationIssue{
			FeatureID: record.ID,
			Severity:  types.SeverityError,
			Message:   message,
			Location:  record.SourcePath,
			Field:     field,
		})
	}

	// Rule 1: id present. Without an id no other rule is meaningful.
	if record.ID == "" {
		fail("id", fmt.Sprintf("feature at %s is missing required field 'id'", record.SourcePath))
		return
	}

	// Rule 2: title present.
	if record.Title == "" {
		fail("title", fmt.Sprintf("feature '%s' is missing required field 'title'", record.ID))
	}

	// Rule 3: at least one route. Route-scoped rules stop here.
	if len(record.Routes) == 0 {
		fail("routes", fmt.Sprintf("feature '%s' declares no routes", record.ID))
		return
	}

	// Rule 5: per-route required fields.
	for i, route := range record.Routes {
		if route.Path == "" {
			fail(fmt.Sprintf("routes[%d].path", i),
				fmt.Sprintf("feature '%s' route %d is missing required field 'path'", record.ID, i))
		}
		if route.Title == "" {
			fail(fmt.Sprintf("routes[%d].title", i),
				fmt.Sprintf("feature '%s' route %d is missing required field 'title'", record.ID, i))
		}
	}

	// Rule 7: at most one primary route.
	primaries := 0
	for _, route := range record.Routes {
		if route.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		fail("routes[].primary",
			fmt.Sprintf("feature '%s' declares %d primary routes; at most one is allowed", record.ID, primaries))
	}

	// Rule 8: nav consistency.
	if record.Nav != nil {
		if record.Nav.Label == "" {
			fail("nav.label", fmt.Sprintf("feature '%s' declares nav without required field 'label'", record.ID))
		}
		if _, explicit := record.PrimaryRoute(); !explicit {
			switch v.navPolicy {
			case NavPrimaryRequireExplicit:
				fail("nav", fmt.Sprintf("feature '%s' participates in navigation but marks no primary route", record.ID))
			default:
				collector.Add(types.ValidationIssue{
					FeatureID: record.ID,
					Severity:  types.SeverityWarning,
					Message: fmt.Sprintf("feature '%s' participates in navigation without an explicit primary route; falling back to '%s'",
						record.ID, record.Routes[0].Path),
					Location: record.SourcePath,
					Field:    "nav",
				})
			}
		}
	}
}

// validateIDUniqueness is rule 4: ids must be unique across the whole batch.
// One issue is emitted per colliding id, referencing every source path that
// declares it.
func (v *Validator) validateIDUniqueness(records []*types.FeatureRecord, collector *errors.IssueCollector) {
	byID := make(map[string][]*types.FeatureRecord)
	var order []string
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		if _, seen := byID[record.ID]; !seen {
			order = append(order, record.ID)
		}
		byID[record.ID] = append(byID[record.ID], record)
	}

	for _, id := range order {
		group := byID[id]
		if len(group) < 2 {
			continue
		}
		paths := make([]string, len(group))
		for i, record := range group {
			paths[i] = record.SourcePath
		}
		sort.Strings(paths)
		collector.Add(types.ValidationIssue{
			FeatureID: id,
			Severity:  types.SeverityError,
			Message:   fmt.Sprintf("Duplicate feature ID '%s' found in: %s", id, strings.Join(paths, ", ")),
			Location:  paths[0],
			Field:     "id",
		})
	}
}

// validateRoutePathUniqueness is rule 6: route paths must be unique across
// all features of the batch. One issue is emitted per colliding path,
// referencing every owning feature id.
func (v *Validator) validateRoutePathUniqueness(records []*types.FeatureRecord, collector *errors.IssueCollector) {
	type owner struct {
		id       string
		location string
	}
	byPath := make(map[string][]owner)
	var order []string
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		for _, route := range record.Routes {
			if route.Path == "" {
				continue
			}
			if _, seen := byPath[route.Path]; !seen {
				order = append(order, route.Path)
			}
			byPath[route.Path] = append(byPath[route.Path], owner{id: record.ID, location: record.SourcePath})
		}
	}

	for _, path := range order {
		owners := byPath[path]
		if len(owners) < 2 {
			continue
		}
		ids := make([]string, len(owners))
		for i, o := range owners {
			ids[i] = fmt.Sprintf("'%s'", o.id)
		}
		collector.Add(types.ValidationIssue{
			FeatureID: owners[0].id,
			Severity:  types.SeverityError,
			Message:   fmt.Sprintf("Duplicate route path '%s' declared by features %s", path, strings.Join(ids, ", ")),
			Location:  owners[0].location,
			Field:     "routes[].path",
		})
	}
}
