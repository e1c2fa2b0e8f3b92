// Package scheduler runs periodic maintenance jobs against the loan service.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookwise/lending-api/internal/core/ports"
)

// OverdueSweeper periodically marks borrowed loans past their due date as
// overdue.
type OverdueSweeper struct {
	loans    ports.LoanService
	interval time.Duration
	log      zerolog.Logger
}

func NewOverdueSweeper(loans ports.LoanService, interval time.Duration, log zerolog.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		loans:    loans,
		interval: interval,
		log:      log.With().Str("component", "overdue_sweeper").Logger(),
	}
}

// Run sweeps once per interval until ctx is cancelled. A non-positive
// interval disables the sweeper and Run returns immediately.
func (s *OverdueSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Debug().Msg("overdue sweeper disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("overdue sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("overdue sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns the number of loans marked.
func (s *OverdueSweeper) RunOnce(ctx context.Context) int {
	n, err := s.loans.SweepOverdue(ctx, ports.SystemActor)
	if err != nil {
		s.log.Error().Err(err).Int("marked", n).Msg("overdue sweep failed")
	}
	return n
}
