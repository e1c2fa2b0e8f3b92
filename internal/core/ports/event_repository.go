package ports

import (
	"context"

	"github.com/bookwise/lending-api/internal/core/domain"
)

// LoanEventRepository persists the loan audit trail.
type LoanEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.LoanEvent) error
}
