package janitor

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner removes sessions idle for longer than ttl and reports how many went.
type Cleaner interface {
	Cleanup(ctx context.Context, ttl time.Duration) (int, error)
}

// Janitor owns the expiry loop: ticks on an interval and drops idle sessions.
type Janitor struct {
	sessions Cleaner
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// New creates a janitor that expires sessions idle longer than ttl, checking
// every interval.
func New(sessions Cleaner, ttl, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the expiry loop. It returns nil when ctx is cancelled (graceful
// shutdown).
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.Info("starting session janitor",
		"ttl", j.ttl.String(),
		"interval", j.interval.String(),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("shutting down session janitor")
			return nil
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	n, err := j.sessions.Cleanup(ctx, j.ttl)
	if err != nil {
		j.logger.Error("session cleanup failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("expired idle sessions", "count", n)
	}
}
