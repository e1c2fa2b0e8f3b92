// Package audit writes the loan audit trail to the structured log when no
// database is configured.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

// LogRepository implements ports.LoanEventRepository on top of zerolog.
type LogRepository struct {
	log zerolog.Logger
}

var _ ports.LoanEventRepository = (*LogRepository)(nil)

func NewLogRepository(log zerolog.Logger) *LogRepository {
	return &LogRepository{log: log.With().Str("component", "audit").Logger()}
}

func (r *LogRepository) InsertEvent(_ context.Context, event *domain.LoanEvent) error {
	e := r.log.Info().
		Str("loan_id", event.LoanID.String()).
		Str("user_id", event.UserRef.String()).
		Str("transition", event.Transition).
		Str("status", event.Status.String()).
		Str("actor_id", event.ActorID).
		Str("actor_role", event.ActorRole).
		Time("occurred_at", event.OccurredAt)
	if event.DueDate != nil {
		e = e.Str("due_date", event.DueDate.String())
	}
	e.Msg("loan event")
	return nil
}
