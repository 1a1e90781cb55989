package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plotdeck/plotdeck/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, modelName string) {
	t.Helper()
	content := "model:\n  provider: ollama\n  name: " + modelName + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotdeck.yaml")
	writeConfig(t, path, "first-model")

	w, err := config.NewWatcher(config.WatcherConfig{
		Path:          path,
		DebounceDelay: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	writeConfig(t, path, "second-model")

	select {
	case cfg := <-w.Updates():
		assert.Equal(t, "second-model", cfg.Model.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("no config update received")
	}
}

func TestWatcher_IgnoresInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotdeck.yaml")
	writeConfig(t, path, "first-model")

	w, err := config.NewWatcher(config.WatcherConfig{
		Path:          path,
		DebounceDelay: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// An invalid config is logged and dropped, never emitted.
	require.NoError(t, os.WriteFile(path, []byte("model:\n  provider: \"\"\n"), 0644))

	select {
	case cfg := <-w.Updates():
		t.Fatalf("unexpected update: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopDuringReloadDoesNotPanic(t *testing.T) {
	// Stopping while a debounced reload is in flight must not crash; the
	// event loop owns the updates channel and closes it on exit.
	dir := t.TempDir()
	path := filepath.Join(dir, "plotdeck.yaml")
	writeConfig(t, path, "first-model")

	for i := 0; i < 50; i++ {
		w, err := config.NewWatcher(config.WatcherConfig{
			Path:          path,
			DebounceDelay: time.Millisecond,
		})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, w.Start(ctx))

		writeConfig(t, path, "second-model")
		time.Sleep(time.Millisecond)
		require.NoError(t, w.Stop())
		cancel()
	}
}

func TestWatcher_UpdatesClosedAfterStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotdeck.yaml")
	writeConfig(t, path, "first-model")

	w, err := config.NewWatcher(config.WatcherConfig{
		Path:          path,
		DebounceDelay: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Stop())

	// Consumers ranging over Updates unblock once the loop exits.
	select {
	case _, open := <-w.Updates():
		assert.False(t, open)
	case <-time.After(3 * time.Second):
		t.Fatal("updates channel never closed")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotdeck.yaml")
	writeConfig(t, path, "first-model")

	w, err := config.NewWatcher(config.WatcherConfig{
		Path:          path,
		DebounceDelay: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644))

	select {
	case cfg := <-w.Updates():
		t.Fatalf("unexpected update: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}
