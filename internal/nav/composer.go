// Package nav derives the navigation model from a batch of admissible
// feature records.
//
// The composed list is a total, stable order: entries with a defined order
// sort ascending and always precede entries without one; ties are broken by
// locale-aware ascending comparison of the label. Composing the same
// admissible set twice yields byte-identical output regardless of discovery
// order.
package nav

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/featforge/featforge/internal/types"
)

// Composer builds NavigationEntry lists from admissible feature records.
type Composer struct {
	collator *collate.Collator
}

// New creates a composer that collates labels for the given language tag.
func New(tag language.Tag) *Composer {
	return &Composer{collator: collate.New(tag)}
}

// NewDefault creates a composer with English collation.
func NewDefault() *Composer {
	return New(language.English)
}

// Compose emits one entry per admissible record that participates in
// navigation, using the record's primary route (explicit, else first
// declared), then sorts the list into its total order.
func (c *Composer) Compose(records []*types.FeatureRecord) []types.NavigationEntry {
	entries := make([]types.NavigationEntry, 0, len(records))
	for _, record := range records {
		if record.Nav == nil {
			continue
		}
		route, _ := record.PrimaryRoute()
		if route.Path == "" {
			continue
		}
		entries = append(entries, types.NavigationEntry{
			Label: record.Nav.Label,
			Path:  route.Path,
			Order: record.Nav.Order,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return c.less(entries[i], entries[j])
	})
	return entries
}

// less defines the total order: defined order ascending, absent order
// strictly after every defined value, ties broken by collated label; equal
// labels fall back to path so the order never depends on input order.
func (c *Composer) less(a, b types.NavigationEntry) bool {
	switch {
	case a.Order != nil && b.Order != nil:
		if *a.Order != *b.Order {
			return *a.Order < *b.Order
		}
	case a.Order != nil:
		return true
	case b.Order != nil:
		return false
	}
	if cmp := c.collator.CompareString(a.Label, b.Label); cmp != 0 {
		return cmp < 0
	}
	return a.Path < b.Path
}
