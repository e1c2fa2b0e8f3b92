package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/bookwise/lending-api/internal/core/domain"
)

func mustLoan(t testing.TB, user domain.UserRef) *domain.Loan {
	t.Helper()
	book, err := domain.NewBookRef(uuid.New())
	require.NoError(t, err)
	loan, err := domain.NewLoan(book, user)
	require.NoError(t, err)
	return loan
}

func mustUser(t testing.TB) domain.UserRef {
	t.Helper()
	u, err := domain.NewUserRef(uuid.New())
	require.NoError(t, err)
	return u
}

func TestLoanStore_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	loan := mustLoan(t, mustUser(t))

	require.NoError(t, store.Save(ctx, loan))

	got, ok := store.FindByID(ctx, loan.ID())
	require.True(t, ok)
	assert.Equal(t, loan.Snapshot(), got.Snapshot())
}

func TestLoanStore_FindByID_Miss(t *testing.T) {
	got, ok := NewLoanStore().FindByID(context.Background(), domain.NewLoanID())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoanStore_SaveReplacesSameID(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	loan := mustLoan(t, mustUser(t))
	require.NoError(t, store.Save(ctx, loan))

	require.NoError(t, loan.Verify())
	require.NoError(t, store.Save(ctx, loan))

	assert.Equal(t, 1, store.Len())
	got, _ := store.FindByID(ctx, loan.ID())
	assert.True(t, got.Verified())
}

func TestLoanStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	loan := mustLoan(t, mustUser(t))
	require.NoError(t, store.Save(ctx, loan))

	require.NoError(t, loan.Verify())
	fetched, _ := store.FindByID(ctx, loan.ID())
	assert.False(t, fetched.Verified(), "saved loan must not alias caller's pointer")

	fetched.MarkOverdue()
	again, _ := store.FindByID(ctx, loan.ID())
	assert.Equal(t, domain.StatusRequested, again.Status())
}

func TestLoanStore_FindByUser(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	alice, bob := mustUser(t), mustUser(t)

	a1 := mustLoan(t, alice)
	b1 := mustLoan(t, bob)
	a2 := mustLoan(t, alice)
	for _, l := range []*domain.Loan{a1, b1, a2} {
		require.NoError(t, store.Save(ctx, l))
	}

	got := store.FindByUser(ctx, alice)
	require.Len(t, got, 2)
	assert.Equal(t, a1.ID(), got[0].ID())
	assert.Equal(t, a2.ID(), got[1].ID())

	assert.Empty(t, store.FindByUser(ctx, mustUser(t)))
	assert.NotNil(t, store.FindByUser(ctx, mustUser(t)))
}

func TestLoanStore_ListAll_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	user := mustUser(t)
	var ids []domain.LoanID
	for i := 0; i < 5; i++ {
		l := mustLoan(t, user)
		ids = append(ids, l.ID())
		require.NoError(t, store.Save(ctx, l))
	}

	all := store.ListAll(ctx)
	require.Len(t, all, 5)
	for i, l := range all {
		assert.Equal(t, ids[i], l.ID())
	}
}

func TestLoanStore_Update(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	loan := mustLoan(t, mustUser(t))
	require.NoError(t, store.Save(ctx, loan))

	updated, err := store.Update(ctx, loan.ID(), func(l *domain.Loan) error { return l.Verify() })
	require.NoError(t, err)
	assert.True(t, updated.Verified())

	stored, _ := store.FindByID(ctx, loan.ID())
	assert.True(t, stored.Verified())
}

func TestLoanStore_Update_ErrorLeavesLoanUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	loan := mustLoan(t, mustUser(t))
	require.NoError(t, store.Save(ctx, loan))
	boom := errors.New("boom")

	_, err := store.Update(ctx, loan.ID(), func(l *domain.Loan) error {
		l.MarkOverdue()
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, _ := store.FindByID(ctx, loan.ID())
	assert.Equal(t, domain.StatusRequested, stored.Status())
}

func TestLoanStore_Update_Missing(t *testing.T) {
	_, err := NewLoanStore().Update(context.Background(), domain.NewLoanID(), func(*domain.Loan) error { return nil })
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	user := mustUser(t)

	const writers = 16
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l := mustLoan(t, user)
				_ = store.Save(ctx, l)
				_, _ = store.FindByID(ctx, l.ID())
				_ = store.ListAll(ctx)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, store.Len())
	assert.Len(t, store.FindByUser(ctx, user), writers*perWriter)
}

func TestLoanStore_ConcurrentExtendsAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := NewLoanStore()
	loan := mustLoan(t, mustUser(t))
	loan.Borrow(domain.DueDateOf(2025, 1, 1))
	require.NoError(t, store.Save(ctx, loan))

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, loan.ID(), func(l *domain.Loan) error {
				_, err := l.ExtendLoan(1)
				return err
			})
		}()
	}
	wg.Wait()

	got, _ := store.FindByID(ctx, loan.ID())
	due, ok := got.DueDate()
	require.True(t, ok)
	assert.Equal(t, domain.DueDateOf(2025, 1, 1).AddDays(n).String(), due.String())
}

// The store behaves like a map keyed by loan id whose listing keeps first
// insertion order.
func TestLoanStore_ModelProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		store := NewLoanStore()
		users := []domain.UserRef{mustUser(t), mustUser(t), mustUser(t)}
		model := map[domain.LoanID]domain.LoanSnapshot{}
		var order []domain.LoanID

		rt.Repeat(map[string]func(*rapid.T){
			"save new": func(rt *rapid.T) {
				user := rapid.SampledFrom(users).Draw(rt, "user")
				l := mustLoan(t, user)
				require.NoError(rt, store.Save(ctx, l))
				model[l.ID()] = l.Snapshot()
				order = append(order, l.ID())
			},
			"mutate existing": func(rt *rapid.T) {
				if len(order) == 0 {
					rt.Skip("empty store")
				}
				id := rapid.SampledFrom(order).Draw(rt, "id")
				l, ok := store.FindByID(ctx, id)
				require.True(rt, ok)
				l.MarkOverdue()
				require.NoError(rt, store.Save(ctx, l))
				model[id] = l.Snapshot()
			},
			"find unknown": func(rt *rapid.T) {
				_, ok := store.FindByID(ctx, domain.NewLoanID())
				require.False(rt, ok)
			},
			"": func(rt *rapid.T) {
				all := store.ListAll(ctx)
				require.Len(rt, all, len(order))
				for i, l := range all {
					require.Equal(rt, order[i], l.ID())
					require.Equal(rt, model[l.ID()], l.Snapshot())
				}
				for _, u := range users {
					for _, l := range store.FindByUser(ctx, u) {
						require.True(rt, l.OwnedBy(u))
					}
				}
			},
		})
	})
}
