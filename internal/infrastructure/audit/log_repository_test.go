package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookwise/lending-api/internal/core/domain"
)

func TestLogRepository_InsertEvent(t *testing.T) {
	var buf bytes.Buffer
	repo := NewLogRepository(zerolog.New(&buf))
	user, _ := domain.NewUserRef(uuid.New())
	due := domain.DueDateOf(2025, 1, 8)
	ev := &domain.LoanEvent{
		LoanID:     domain.NewLoanID(),
		UserRef:    user,
		Transition: domain.TransitionBorrowed,
		Status:     domain.StatusBorrowed,
		DueDate:    &due,
		ActorID:    "peminjam1",
		ActorRole:  domain.RoleBorrower,
		OccurredAt: time.Now(),
	}

	if err := repo.InsertEvent(context.Background(), ev); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["component"] != "audit" || line["transition"] != "borrowed" || line["due_date"] != "2025-01-08" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["loan_id"] != ev.LoanID.String() {
		t.Fatalf("loan_id: got %v", line["loan_id"])
	}
}
