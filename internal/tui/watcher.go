package tui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcin-skalski/gitfleet/internal/analyze"
)

// Watcher re-runs the fleet scan on an interval and caches the latest
// result for the dashboard. Watch mode is read-only: auto-pull never
// runs here regardless of config.
type Watcher struct {
	analyzer *analyze.Analyzer
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last Snapshot

	kick chan struct{}
}

func NewWatcher(analyzer *analyze.Analyzer, interval time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		analyzer: analyzer,
		interval: interval,
		logger:   logger,
		kick:     make(chan struct{}, 1),
	}
}

// Run scans once immediately, then again on every interval tick or forced
// refresh, until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		case <-w.kick:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	w.mu.Lock()
	w.last.Scanning = true
	w.mu.Unlock()

	start := time.Now()
	result := w.analyzer.ScanAndAnalyze(ctx, false)

	if ctx.Err() != nil {
		return
	}

	w.logger.Debug("watch scan complete",
		"repos", result.TotalScanned,
		"took", time.Since(start).Round(time.Millisecond))

	w.mu.Lock()
	w.last = Snapshot{Timestamp: time.Now(), Repos: result.Repos}
	w.mu.Unlock()
}

// GetSnapshot returns the most recent cached fleet state.
func (w *Watcher) GetSnapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Refresh requests an immediate rescan. Non-blocking; a rescan already
// pending absorbs the request.
func (w *Watcher) Refresh() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}
