package ports

import "github.com/bookwise/lending-api/internal/core/domain"

// LoanEventPublisher hands loan events to the audit pipeline. Publish must
// not block the caller on persistence.
type LoanEventPublisher interface {
	Publish(event domain.LoanEvent)
}
