//go:build property
// +build property

package nav

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/featforge/featforge/internal/types"
)

// buildRecords derives a nav-participating record set from generated labels.
// Orders are assigned pseudo-randomly from the seed: roughly half the records
// get a defined order, the rest none.
func buildRecords(labels []string, seed int64) []*types.FeatureRecord {
	rng := rand.New(rand.NewSource(seed))
	records := make([]*types.FeatureRecord, 0, len(labels))
	for i, label := range labels {
		var order *int
		if rng.Intn(2) == 0 {
			v := rng.Intn(200) - 100
			order = &v
		}
		path := fmt.Sprintf("/p/%d", i)
		records = append(records, &types.FeatureRecord{
			ID:     fmt.Sprintf("feat-%d", i),
			Title:  label,
			Routes: []types.RouteDescriptor{{Path: path, Title: label}},
			Nav:    &types.NavDescriptor{Label: label, Order: order},
		})
	}
	return records
}

func sameEntries(a, b []types.NavigationEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Label != b[i].Label || a[i].Path != b[i].Path {
			return false
		}
	}
	return true
}

// TestComposerProperties tests invariant properties of the navigation composer
func TestComposerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genLabels := gen.SliceOf(gen.AlphaString())

	properties.Property("composition is idempotent", prop.ForAll(
		func(labels []string, seed int64) bool {
			records := buildRecords(labels, seed)
			composer := NewDefault()
			return sameEntries(composer.Compose(records), composer.Compose(records))
		},
		genLabels,
		gen.Int64(),
	))

	properties.Property("output independent of input order", prop.ForAll(
		func(labels []string, seed int64) bool {
			records := buildRecords(labels, seed)
			shuffled := make([]*types.FeatureRecord, len(records))
			copy(shuffled, records)
			rand.New(rand.NewSource(seed+1)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			composer := NewDefault()
			return sameEntries(composer.Compose(records), composer.Compose(shuffled))
		},
		genLabels,
		gen.Int64(),
	))

	properties.Property("defined order always precedes undefined", prop.ForAll(
		func(labels []string, seed int64) bool {
			entries := NewDefault().Compose(buildRecords(labels, seed))
			seenUndefined := false
			for _, entry := range entries {
				if entry.Order == nil {
					seenUndefined = true
				} else if seenUndefined {
					return false
				}
			}
			return true
		},
		genLabels,
		gen.Int64(),
	))

	properties.Property("every nav-participating record yields one entry", prop.ForAll(
		func(labels []string, seed int64) bool {
			records := buildRecords(labels, seed)
			return len(NewDefault().Compose(records)) == len(records)
		},
		genLabels,
		gen.Int64(),
	))

	properties.TestingRun(t)
}
