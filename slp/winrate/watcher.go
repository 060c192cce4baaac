package winrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Watcher polls a replay directory for new or still-growing .slp files. The
// desktop app writes replays incrementally, so a file is only reported once
// its size has held still for one polling interval.
type Watcher struct {
	dir      string
	interval time.Duration

	sizes    map[string]int64
	reported map[string]bool
}

// NewWatcher polls dir every interval.
func NewWatcher(dir string, interval time.Duration) *Watcher {
	return &Watcher{
		dir:      dir,
		interval: interval,
		sizes:    make(map[string]int64),
		reported: make(map[string]bool),
	}
}

// MarkSeen excludes a file from future reports, e.g. one already stored.
func (w *Watcher) MarkSeen(path string) {
	w.reported[path] = true
}

// Run polls until ctx is done, invoking onReplay for each settled new file.
func (w *Watcher) Run(ctx context.Context, onReplay func(path string)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.scan(onReplay)
		}
	}
}

func (w *Watcher) scan(onReplay func(path string)) {
	err := filepath.WalkDir(w.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".slp") {
			return nil
		}
		if w.reported[path] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		prev, seen := w.sizes[path]
		w.sizes[path] = info.Size()
		if !seen || info.Size() != prev {
			return nil // new or still being written; check again next tick
		}
		w.reported[path] = true
		log.Debug().Str("path", path).Msg("winrate: replay settled")
		onReplay(path)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("dir", w.dir).Msg("winrate: scan failed")
	}
}
