package network

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/segment"
)

// Registry holds the active network snapshot. Readers never block; a reload
// either swaps in a complete new snapshot or leaves the current one active.
type Registry struct {
	path    string
	logger  *zap.Logger
	current atomic.Pointer[Snapshot]

	mu       sync.Mutex // serialises reloads
	version  int64
	onReload []func(*Snapshot)
}

// Load reads the segment file and builds the first snapshot. Any error is
// fatal to the caller; no partial network is ever served.
func Load(path string, logger *zap.Logger) (*Registry, error) {
	r := &Registry{path: path, logger: logger}
	if _, err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistry wraps an already built snapshot
func NewRegistry(snap *Snapshot, logger *zap.Logger) *Registry {
	r := &Registry{logger: logger, version: snap.Version}
	r.current.Store(snap)
	return r
}

// Current returns the active snapshot
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// OnReload registers a callback invoked after each successful swap
func (r *Registry) OnReload(fn func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReload = append(r.onReload, fn)
}

// Reload rebuilds the snapshot from the segment file. On failure the previous
// snapshot stays active and the error is returned.
func (r *Registry) Reload() (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return nil, fmt.Errorf("failed to reload network: no segment file configured")
	}

	segments, err := segment.LoadFile(r.path)
	if err != nil {
		return nil, err
	}

	snap, err := Build(segments, r.version+1, r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from %s: %w", r.path, err)
	}

	for _, d := range snap.Graph.Drifts() {
		r.logger.Warn("Shared node coordinates disagree, keeping first seen",
			zap.Int64("node", d.NodeID),
			zap.Int64("segment_id", d.SegmentID),
			zap.Float64s("kept", d.Kept[:]),
			zap.Float64s("seen", d.Seen[:]),
		)
	}

	r.version = snap.Version
	r.current.Store(snap)

	r.logger.Info("Street network loaded",
		zap.String("path", r.path),
		zap.Int64("version", snap.Version),
		zap.Int("segments", len(snap.Segments)),
		zap.Int("nodes", snap.Graph.NodeCount()),
		zap.Int("edges", snap.Graph.EdgeCount()),
		zap.Int("node_drifts", len(snap.Graph.Drifts())),
	)

	for _, fn := range r.onReload {
		fn(snap)
	}

	return snap, nil
}
