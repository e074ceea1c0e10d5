package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/terra-clan/manrura/internal/metrics"
)

// Janitor periodically drops idle navigation sessions
type Janitor struct {
	tracker  *Tracker
	idle     time.Duration
	interval time.Duration
	metrics  *metrics.Metrics
}

// NewJanitor creates a janitor for tracker
func NewJanitor(tracker *Tracker, idle, interval time.Duration, m *metrics.Metrics) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Janitor{
		tracker:  tracker,
		idle:     idle,
		interval: interval,
		metrics:  m,
	}
}

// Run sweeps until ctx is done
func (j *Janitor) Run(ctx context.Context) error {
	slog.Info("session janitor started", "interval", j.interval, "idle_timeout", j.idle)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return nil
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep ends every idle session
func (j *Janitor) sweep() {
	expired := j.tracker.Expired(j.idle)
	if len(expired) > 0 {
		slog.Info("ending idle sessions", "count", len(expired))
	}

	for _, id := range expired {
		j.tracker.End(id)
		slog.Debug("session ended", "user_id", id)
	}

	j.metrics.SetSessions(j.tracker.Len())
}
