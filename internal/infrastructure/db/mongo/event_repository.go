package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

const loanEventsCollection = "loan_events"

// EventRepository implements ports.LoanEventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.LoanEventRepository {
	return &EventRepository{db: db}
}

// InsertEvent appends a loan event to the loan_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.LoanEvent) error {
	if _, err := r.db.Collection(loanEventsCollection).InsertOne(ctx, eventDocument(event)); err != nil {
		return fmt.Errorf("insert loan event: %w", err)
	}
	return nil
}

func eventDocument(event *domain.LoanEvent) bson.M {
	doc := bson.M{
		"loan_id":      event.LoanID.String(),
		"user_id":      event.UserRef.String(),
		"transition":   event.Transition,
		"status":       event.Status.String(),
		"actor_id":     event.ActorID,
		"actor_role":   event.ActorRole,
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.DueDate != nil {
		doc["due_date"] = event.DueDate.String()
	}
	return doc
}
