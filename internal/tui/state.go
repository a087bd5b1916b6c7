package tui

import (
	"time"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

// Snapshot is one fleet state the dashboard can render.
type Snapshot struct {
	Timestamp time.Time
	Repos     []model.Snapshot
	Scanning  bool
}

// Provider supplies dashboard state. The TUI never scans on its own; it
// renders whatever the background watcher has cached.
type Provider interface {
	GetSnapshot() Snapshot
	Refresh()
}
