package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBookRef_Construction(t *testing.T) {
	id := uuid.New()
	ref, err := NewBookRef(id)
	require.NoError(t, err)
	assert.Equal(t, id, ref.UUID())

	_, err = NewBookRef(uuid.Nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseBookRef("not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)

	parsed, err := ParseBookRef(id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(ref))
}

func TestUserRef_Construction(t *testing.T) {
	_, err := NewUserRef(uuid.Nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseUserRef("")
	assert.ErrorIs(t, err, ErrValidation)

	id := uuid.New()
	a, _ := NewUserRef(id)
	b, _ := ParseUserRef(id.String())
	assert.True(t, a.Equals(b))
}

func TestParseLoanID(t *testing.T) {
	id := NewLoanID()
	parsed, err := ParseLoanID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseLoanID("123")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseLoanID(uuid.Nil.String())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoanStatus_Parse(t *testing.T) {
	for _, s := range []string{"requested", "borrowed", "returned", "overdue"} {
		st, err := ParseLoanStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, st.String())
	}

	for _, s := range []string{"", "REQUESTED", "lost", "Borrowed"} {
		_, err := ParseLoanStatus(s)
		assert.ErrorIs(t, err, ErrInvalidLoanStatus, "token %q", s)
	}
}

func TestLoanStatus_JSON(t *testing.T) {
	b, err := json.Marshal(StatusOverdue)
	require.NoError(t, err)
	assert.Equal(t, `"overdue"`, string(b))

	var st LoanStatus
	assert.Error(t, json.Unmarshal([]byte(`"unknown"`), &st))
}

func TestDueDate_DropsTimeOfDay(t *testing.T) {
	d := NewDueDate(time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2025-01-01", d.String())
	assert.Equal(t, 0, d.Time().Hour())
}

func TestDueDate_IsOverdueAt(t *testing.T) {
	d := DueDateOf(2025, 1, 10)

	assert.False(t, d.IsOverdueAt(time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)))
	assert.False(t, d.IsOverdueAt(time.Date(2025, 1, 10, 23, 0, 0, 0, time.UTC)), "due today is not overdue")
	assert.True(t, d.IsOverdueAt(time.Date(2025, 1, 11, 0, 0, 1, 0, time.UTC)))
}

func TestDueDate_IsOverdue_EvaluatedAtCallTime(t *testing.T) {
	assert.True(t, NewDueDate(time.Now()).AddDays(-1).IsOverdue())
	assert.False(t, NewDueDate(time.Now()).AddDays(1).IsOverdue())
}

func TestDueDate_AddDays(t *testing.T) {
	assert.Equal(t, "2025-01-06", DueDateOf(2025, 1, 1).AddDays(5).String())
	assert.Equal(t, "2025-03-01", DueDateOf(2025, 2, 27).AddDays(2).String())
	assert.Equal(t, "2024-12-30", DueDateOf(2025, 1, 1).AddDays(-2).String())
}

func TestDueDate_AddDaysProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := DueDateOf(
			rapid.IntRange(1990, 2100).Draw(t, "year"),
			time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
			rapid.IntRange(1, 28).Draw(t, "day"),
		)
		a := rapid.IntRange(-1000, 1000).Draw(t, "a")
		b := rapid.IntRange(-1000, 1000).Draw(t, "b")

		if !base.AddDays(a).AddDays(b).Equal(base.AddDays(a + b)) {
			t.Fatalf("AddDays is not additive: %s + %d + %d", base, a, b)
		}
		if got := base.AddDays(a).AddDays(-a); !got.Equal(base) {
			t.Fatalf("AddDays(%d) then AddDays(%d) = %s, want %s", a, -a, got, base)
		}
	})
}

func TestDueDate_TextRoundTrip(t *testing.T) {
	d := DueDateOf(2025, 7, 4)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-07-04"`, string(b))

	var back DueDate
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d))

	_, err = ParseDueDate("04/07/2025")
	assert.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestLoanPolicy_CalculateDueDate(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC)
	policy, err := NewLoanPolicy(DefaultLoanPeriodDays)
	require.NoError(t, err)
	policy = policy.WithClock(func() time.Time { return fixed })

	assert.Equal(t, "2025-01-08", policy.CalculateDueDate().String())
	assert.True(t, policy.CalculateDueDate().Equal(policy.CalculateDueDate()))
}

func TestLoanPolicy_DefaultClock(t *testing.T) {
	policy, err := NewLoanPolicy(7)
	require.NoError(t, err)

	want := NewDueDate(time.Now()).AddDays(7)
	assert.True(t, policy.CalculateDueDate().Equal(want))
}

func TestNewLoanPolicy_RejectsNonPositive(t *testing.T) {
	_, err := NewLoanPolicy(0)
	assert.ErrorIs(t, err, ErrNonPositiveDuration)
}
