package network

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

const twoSegments = `[
	{"segment_id": 1, "u": 10, "v": 11, "length": 111, "coordinates": [[0, 0], [0, 0.001]]},
	{"segment_id": 2, "u": 11, "v": 12, "length": 111, "coordinates": [[0, 0.001], [0, 0.002]]}
]`

const threeSegments = `[
	{"segment_id": 1, "u": 10, "v": 11, "length": 111, "coordinates": [[0, 0], [0, 0.001]]},
	{"segment_id": 2, "u": 11, "v": 12, "length": 111, "coordinates": [[0, 0.001], [0, 0.002]]},
	{"segment_id": 3, "u": 12, "v": 13, "length": 111, "coordinates": [[0, 0.002], [0, 0.003]]}
]`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.json")
	writeFile(t, path, twoSegments)

	reg, err := Load(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	snap := reg.Current()
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, 2, snap.Index.Len())
	assert.Equal(t, 3, snap.Graph.NodeCount())

	s, ok := snap.Segment(2)
	require.True(t, ok)
	assert.Equal(t, int64(11), s.U)
	_, ok = snap.Segment(9)
	assert.False(t, ok)
}

func TestLoad_FailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.json")
	writeFile(t, path, `[]`)

	_, err := Load(path, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, apperrors.ErrEmptySegmentSet)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestReload_KeepsCurrentOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.json")
	writeFile(t, path, twoSegments)

	reg, err := Load(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	var reloads atomic.Int32
	reg.OnReload(func(*Snapshot) { reloads.Add(1) })

	writeFile(t, path, `[{"segment_id": 1, "u": 1, "v": 2, "length": -4, "coordinates": [[0, 0], [0, 1]]}]`)
	_, err = reg.Reload()
	assert.True(t, apperrors.IsDataIntegrity(err))
	assert.Equal(t, int64(1), reg.Current().Version)
	assert.Zero(t, reloads.Load())

	writeFile(t, path, threeSegments)
	snap, err := reg.Reload()
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)
	assert.Same(t, snap, reg.Current())
	assert.Equal(t, int32(1), reloads.Load())
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.json")
	writeFile(t, path, twoSegments)

	// The watch loop outlives the test, so it cannot log through t
	reg, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, reg.Watch(ctx))

	writeFile(t, path, threeSegments)

	require.Eventually(t, func() bool {
		return reg.Current().Index.Len() == 3
	}, 5*time.Second, 50*time.Millisecond)
}

func TestNewRegistry(t *testing.T) {
	snap, err := Build(nil, 1, "memory")
	assert.ErrorIs(t, err, apperrors.ErrEmptySegmentSet)
	assert.Nil(t, snap)

	reg := NewRegistry(&Snapshot{Version: 4}, zaptest.NewLogger(t))
	assert.Equal(t, int64(4), reg.Current().Version)

	_, err = reg.Reload()
	assert.Error(t, err)
	assert.Error(t, reg.Watch(context.Background()))
}
