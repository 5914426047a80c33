package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	"github.com/pabg92/ned-project-bw-sub001/internal/repositories/memory"
	"github.com/pabg92/ned-project-bw-sub001/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	repotest.RunLedgerStoreTests(t, func(t *testing.T) portsrepo.RepositoryProvider {
		return memory.New().Provider()
	})
}

func newCompany(t *testing.T, store *memory.Store) string {
	t.Helper()
	id := uuid.NewString()
	_, err := store.SaveCompany(context.Background(), domain.Company{
		CompanyID:   id,
		Name:        "Acme",
		AuditFields: domain.NewAuditFields("admin", time.Now().UTC()),
	}, nil)
	require.NoError(t, err)
	return id
}

func TestAppendHookFailureAbortsAppend(t *testing.T) {
	ctx := context.Background()
	calls := 0
	store := memory.New(memory.WithAppendHook(func(_ context.Context, entry domain.LedgerEntry) error {
		calls++
		if entry.Delta > 5 {
			return errors.New("outbox unavailable")
		}
		return nil
	}))
	companyID := newCompany(t, store)

	_, err := store.AppendEntry(ctx, domain.LedgerEntryInput{CompanyID: companyID, EntryType: domain.EntryAdminGrant, Amount: 10, Reason: "big", ActorID: "admin"})
	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)

	entry, err := store.AppendEntry(ctx, domain.LedgerEntryInput{CompanyID: companyID, EntryType: domain.EntryAdminGrant, Amount: 3, Reason: "small", ActorID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Sequence, "aborted appends do not consume a sequence")
	assert.Equal(t, 2, calls)

	acc, err := store.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), acc.Balance)
}

func TestClockStampsEntries(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store := memory.New(memory.WithClock(func() time.Time { return fixed }))
	companyID := newCompany(t, store)

	entry, err := store.AppendEntry(context.Background(), domain.LedgerEntryInput{CompanyID: companyID, EntryType: domain.EntryAdminGrant, Amount: 1, Reason: "r", ActorID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, fixed, entry.CreatedAt)

	acc, err := store.GetCreditAccount(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, fixed, acc.UpdatedAt)
}

func TestReturnedAccountIsACopy(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyID := newCompany(t, store)

	acc, err := store.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	acc.Balance = 99
	acc.UnlockedProfileIDs["p"] = struct{}{}

	again, err := store.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	assert.Zero(t, again.Balance)
	assert.Empty(t, again.UnlockedProfileIDs)
}
