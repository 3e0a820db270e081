package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchEndpoints_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  a:\n    url: https://x.test/a\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Endpoints, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchEndpoints(ctx, path, 20*time.Millisecond, func(eps *Endpoints) {
			reloaded <- eps
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	// An invalid version is skipped.
	require.NoError(t, os.WriteFile(path, []byte("endpoints: nope\n"), 0o600))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  a:\n    url: https://x.test/a\n  b:\n    url: https://x.test/b\n"), 0o600))

	select {
	case eps := <-reloaded:
		assert.Equal(t, []string{"a", "b"}, eps.Registry.Keys())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchEndpoints_MissingDir(t *testing.T) {
	err := WatchEndpoints(context.Background(), filepath.Join(t.TempDir(), "nope", "endpoints.yaml"), 0, func(*Endpoints) {})
	assert.Error(t, err)
}

func TestDebouncer_StopWaitsForRunningFire(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	d := &debouncer{fire: func() {
		close(started)
		<-release
		finished.Store(true)
	}}

	d.trigger()
	<-started

	stopped := make(chan struct{})
	go func() {
		d.stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while fire was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
		assert.True(t, finished.Load())
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return")
	}
}

func TestDebouncer_NoFireAfterStop(t *testing.T) {
	var calls atomic.Int32
	d := &debouncer{interval: 20 * time.Millisecond, fire: func() { calls.Add(1) }}

	d.trigger()
	d.stop()
	d.trigger()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	d := &debouncer{interval: 30 * time.Millisecond, fire: func() { calls.Add(1) }}
	defer d.stop()

	for range 5 {
		d.trigger()
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
