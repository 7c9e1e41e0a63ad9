package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoHiddenFilter(t *testing.T) {
	assert.True(t, NoHiddenFilter("features/checkout/feature.yaml"))
	assert.True(t, NoHiddenFilter("./features/checkout/module.go"))
	assert.False(t, NoHiddenFilter("features/.git/config"))
	assert.False(t, NoHiddenFilter(".cache/data"))
	assert.False(t, NoHiddenFilter("features/checkout/.swp"))
}

func TestExcludeDirFilter(t *testing.T) {
	filter := ExcludeDirFilter("node_modules", "vendor")

	assert.True(t, filter("features/checkout/feature.yaml"))
	assert.False(t, filter("features/node_modules/pkg/index.js"))
	assert.False(t, filter("vendor/github.com/dep/dep.go"))
	assert.True(t, filter("features/vendored/feature.yaml"))
}

func TestNoGeneratedFilter(t *testing.T) {
	filter := NoGeneratedFilter("/project/featforge")

	assert.False(t, filter("/project/featforge/registry.gen.go"))
	assert.False(t, filter("/project/featforge/nested/file.go"))
	assert.True(t, filter("/project/features/checkout/feature.yaml"))
	assert.True(t, filter("/project/featforge-docs/readme.md"))
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventTypeCreated.String())
	assert.Equal(t, "modified", EventTypeModified.String())
	assert.Equal(t, "deleted", EventTypeDeleted.String())
	assert.Equal(t, "renamed", EventTypeRenamed.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestAddRecursiveRejectsTraversal(t *testing.T) {
	fw, err := NewFileWatcher(time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	err = fw.AddRecursive("../outside")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestWatcherDeliversDebouncedBatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "checkout"), 0755))

	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(NoHiddenFilter)

	batches := make(chan []ChangeEvent, 10)
	fw.AddHandler(func(events []ChangeEvent) error {
		batches <- events
		return nil
	})

	require.NoError(t, fw.AddRecursive(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	target := filepath.Join(root, "checkout", "feature.yaml")
	require.NoError(t, os.WriteFile(target, []byte("id: checkout\n"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("id: checkout\ntitle: C\n"), 0644))

	select {
	case events := <-batches:
		require.NotEmpty(t, events)
		// Rapid writes to one path coalesce into a single event
		seen := make(map[string]int)
		for _, event := range events {
			seen[event.Path]++
		}
		assert.Equal(t, 1, seen[target])
	case <-time.After(5 * time.Second):
		t.Fatal("no debounced batch delivered")
	}
}

func TestWatcherIgnoresFilteredPaths(t *testing.T) {
	root := t.TempDir()
	hidden := filepath.Join(root, ".cache")
	require.NoError(t, os.MkdirAll(hidden, 0755))

	fw, err := NewFileWatcher(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(NoHiddenFilter)

	batches := make(chan []ChangeEvent, 10)
	fw.AddHandler(func(events []ChangeEvent) error {
		batches <- events
		return nil
	})

	// Watch the hidden dir directly so fsnotify reports its events, then
	// check that the filter drops them before the debouncer.
	require.NoError(t, fw.watcher.Add(hidden))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(hidden, "junk"), []byte("x"), 0644))

	select {
	case events := <-batches:
		t.Fatalf("filtered path produced a batch: %v", events)
	case <-time.After(300 * time.Millisecond):
	}
}
