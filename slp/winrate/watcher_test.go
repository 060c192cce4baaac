package winrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReportsSettledFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.slp")
	require.NoError(t, os.WriteFile(path, []byte("replay data"), 0o644))

	found := make(chan string, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w := NewWatcher(dir, 10*time.Millisecond)
	go w.Run(ctx, func(p string) { found <- p })

	// First tick records the size, second confirms it held still.
	select {
	case p := <-found:
		require.Equal(t, path, p)
	case <-ctx.Done():
		t.Fatal("watcher never reported the settled file")
	}
}

func TestWatcherSkipsMarkedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seen.slp")
	require.NoError(t, os.WriteFile(path, []byte("replay data"), 0o644))

	found := make(chan string, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w := NewWatcher(dir, 10*time.Millisecond)
	w.MarkSeen(path)
	go w.Run(ctx, func(p string) { found <- p })

	select {
	case p := <-found:
		t.Fatalf("marked file %s should not be reported", p)
	case <-ctx.Done():
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	found := make(chan string, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w := NewWatcher(dir, 10*time.Millisecond)
	go w.Run(ctx, func(p string) { found <- p })

	select {
	case p := <-found:
		t.Fatalf("unexpected report for %s", p)
	case <-ctx.Done():
	}
}
