// Package sweeper periodically removes expired session tokens.
package sweeper

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// ExpiredSweeper deletes tokens that expired before now.
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type Sweeper struct {
	store    ExpiredSweeper
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewSweeper(store ExpiredSweeper, interval time.Duration, l logging.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   l.With("module", "sweeper"),
		now:      time.Now,
	}
}

// SweepOnce runs a single pass and returns how many tokens were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.store.SweepExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "expired sessions swept", "count", n)
	}
	return n, nil
}

// Run sweeps immediately and then every interval until ctx is cancelled.
// A failed pass is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting sweeper", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error(ctx, "sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping sweeper...")
			return nil
		case <-ticker.C:
		}
	}
}
