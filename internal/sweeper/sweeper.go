// Package sweeper periodically processes transactions left in NEW.
package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// ErrInvalidInterval is returned by New for a non positive interval.
var ErrInvalidInterval = errors.New("sweep interval must be positive")

// Processor runs every NEW transaction once.
type Processor interface {
	ProcessAllNew(ctx context.Context) (domain.BatchSummary, error)
}

// Sweeper triggers a Processor on a fixed interval.
type Sweeper struct {
	processor Processor
	interval  time.Duration
}

// New returns a sweeper running p every interval.
func New(p Processor, interval time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	return &Sweeper{processor: p, interval: interval}, nil
}

// Run sweeps right away and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	l := zerolog.Ctx(ctx).With().Str("component", "sweeper").Logger()
	ctx = l.WithContext(ctx)

	l.Info().Dur("interval", s.interval).Msg("sweeper started")
	defer l.Info().Msg("sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// a tick and cancellation may be ready together
			if ctx.Err() != nil {
				return
			}

			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single batch. A listing failure is logged and yields an empty summary.
func (s *Sweeper) SweepOnce(ctx context.Context) domain.BatchSummary {
	l := zerolog.Ctx(ctx)

	start := time.Now()

	summary, err := s.processor.ProcessAllNew(ctx)
	if err != nil {
		l.Error().Err(err).Msg("sweep failed")
		return summary
	}

	l.Debug().Int("total", summary.Total).Dur("took", time.Since(start)).Msg("sweep finished")

	return summary
}
