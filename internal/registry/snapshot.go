// Package registry holds the result of a discovery pass as a single
// immutable snapshot value.
//
// The discovered feature set is never mutated piecemeal: each pass constructs
// one Snapshot and publishes it wholesale, replacing the previous one.
// Subscribers (such as the live-reload notifier) receive every published
// snapshot over a channel.
package registry

import (
	"sync"
	"time"

	"github.com/featforge/featforge/internal/types"
)

// Snapshot is the immutable result of one discovery pass. Aborted is true
// when the pass failed validation; in that case Features and Navigation
// reflect the failed pass's admissible set but no artifacts were written.
type Snapshot struct {
	Root       string                  `json:"root"`
	Features   []*types.FeatureRecord  `json:"features"`
	Navigation []types.NavigationEntry `json:"navigation"`
	Issues     []types.ValidationIssue `json:"issues,omitempty"`
	Aborted    bool                    `json:"aborted"`
	CreatedAt  time.Time               `json:"createdAt"`
	Stats      types.PassStats         `json:"stats"`
}

// SnapshotRegistry tracks the latest snapshot and fans it out to subscribers.
type SnapshotRegistry struct {
	current     *Snapshot
	lastSuccess *Snapshot
	subscribers []chan *Snapshot
	mutex       sync.RWMutex
}

// New creates an empty snapshot registry.
func New() *SnapshotRegistry {
	return &SnapshotRegistry{
		subscribers: make([]chan *Snapshot, 0),
	}
}

// Publish replaces the current snapshot and notifies subscribers. Slow
// subscribers are skipped rather than blocking the pipeline.
func (r *SnapshotRegistry) Publish(snapshot *Snapshot) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.current = snapshot
	if !snapshot.Aborted {
		r.lastSuccess = snapshot
	}

	for _, subscriber := range r.subscribers {
		select {
		case subscriber <- snapshot:
		default:
			// Skip if channel is full
		}
	}
}

// Current returns the most recently published snapshot, which may reflect an
// aborted pass. It is nil before the first pass.
func (r *SnapshotRegistry) Current() *Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.current
}

// LastSuccess returns the most recent successful snapshot, or nil if no pass
// has succeeded yet. Stale artifacts from this pass may remain on disk after
// a later aborted pass; that is expected in watch mode.
func (r *SnapshotRegistry) LastSuccess() *Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.lastSuccess
}

// Subscribe returns a channel that receives every published snapshot.
func (r *SnapshotRegistry) Subscribe() <-chan *Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan *Snapshot, 16)
	r.subscribers = append(r.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (r *SnapshotRegistry) Unsubscribe(ch <-chan *Snapshot) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, subscriber := range r.subscribers {
		if subscriber == ch {
			close(subscriber)
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			break
		}
	}
}

// Count returns the number of features in the current snapshot.
func (r *SnapshotRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if r.current == nil {
		return 0
	}
	return len(r.current.Features)
}
