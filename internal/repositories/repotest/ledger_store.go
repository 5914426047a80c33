// Package repotest holds behaviour tests shared by every implementation of
// the repository ports.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) portsrepo.RepositoryProvider

// RunLedgerStoreTests exercises the append, projection and listing contract.
func RunLedgerStoreTests(t *testing.T, newStore Factory) {
	t.Run("append resolves deltas against the locked balance", func(t *testing.T) {
		testAppendDeltas(t, newStore(t))
	})
	t.Run("failed append leaves no trace", func(t *testing.T) {
		testFailedAppend(t, newStore(t))
	})
	t.Run("unlock bookkeeping", func(t *testing.T) {
		testUnlockBookkeeping(t, newStore(t))
	})
	t.Run("entries listing and totals", func(t *testing.T) {
		testListing(t, newStore(t))
	})
	t.Run("concurrent unlocks never overdraw", func(t *testing.T) {
		testConcurrentUnlocks(t, newStore(t))
	})
	t.Run("companies and profiles", func(t *testing.T) {
		testCompaniesAndProfiles(t, newStore(t))
	})
	t.Run("grants stop at the largest balance", func(t *testing.T) {
		testBalanceCeiling(t, newStore(t))
	})
	t.Run("company opening entry is atomic", func(t *testing.T) {
		testCompanyOpeningEntry(t, newStore(t))
	})
}

func newCompany() domain.Company {
	return domain.Company{
		CompanyID:   uuid.NewString(),
		Name:        "Acme Boards",
		Enrichment:  domain.CompanyEnrichment{VerificationStatus: domain.VerificationUnverified},
		AuditFields: domain.NewAuditFields("admin", time.Now().UTC()),
	}
}

func seedCompany(t *testing.T, repos portsrepo.RepositoryProvider) string {
	t.Helper()
	company := newCompany()
	entry, err := repos.CompanyRepo.SaveCompany(context.Background(), company, nil)
	require.NoError(t, err)
	require.Nil(t, entry)
	return company.CompanyID
}

func seedProfile(t *testing.T, repos portsrepo.RepositoryProvider, active bool) string {
	t.Helper()
	profile := domain.CandidateProfile{
		ProfileID:   uuid.NewString(),
		DisplayName: "Jane Doe",
		Sectors:     []string{"Energy"},
		Email:       "jane@example.com",
		IsActive:    active,
		AuditFields: domain.NewAuditFields("admin", time.Now().UTC()),
	}
	require.NoError(t, repos.ProfileRepo.SaveProfile(context.Background(), profile))
	return profile.ProfileID
}

func grant(t *testing.T, repos portsrepo.RepositoryProvider, companyID string, amount int64) *domain.LedgerEntry {
	t.Helper()
	entry, err := repos.LedgerRepo.AppendEntry(context.Background(), domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryAdminGrant, Amount: amount, Reason: "grant", ActorID: "admin",
	})
	require.NoError(t, err)
	return entry
}

func unlockInput(companyID, profileID string) domain.LedgerEntryInput {
	return domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryProfileUnlock, Reason: "Profile unlock",
		ActorID: domain.SystemActorID, RelatedProfileID: &profileID,
	}
}

func assertReplayMatches(t *testing.T, repos portsrepo.RepositoryProvider, companyID string) {
	t.Helper()
	ctx := context.Background()
	acc, err := repos.LedgerRepo.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	entries, err := repos.LedgerRepo.ListAllEntries(ctx, companyID)
	require.NoError(t, err)
	replayed := domain.Replay(companyID, entries)
	assert.True(t, domain.SameState(*acc, replayed), "materialized %d/%v, replayed %d/%v",
		acc.Balance, acc.UnlockedList(), replayed.Balance, replayed.UnlockedList())
}

func testAppendDeltas(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()
	companyID := seedCompany(t, repos)
	note := "renewal"

	first := grant(t, repos, companyID, 10)
	assert.Equal(t, int64(10), first.Delta)
	assert.Equal(t, int64(10), first.ResultingBalance)
	assert.NotEmpty(t, first.EntryID)

	deduct, err := repos.LedgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryAdminDeduction, Amount: 3, Reason: "fix", AdminNote: &note, ActorID: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), deduct.Delta)
	assert.Equal(t, int64(7), deduct.ResultingBalance)
	assert.Greater(t, deduct.Sequence, first.Sequence)
	require.NotNil(t, deduct.AdminNote)
	assert.Equal(t, "renewal", *deduct.AdminNote)

	reset, err := repos.LedgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryAdminReset, Reason: "reset", ActorID: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-7), reset.Delta)
	assert.Zero(t, reset.ResultingBalance)

	acc, err := repos.LedgerRepo.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	assert.Zero(t, acc.Balance)
	assertReplayMatches(t, repos, companyID)
}

func testFailedAppend(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()
	companyID := seedCompany(t, repos)
	profileID := seedProfile(t, repos, true)
	grant(t, repos, companyID, 2)

	_, err := repos.LedgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryAdminDeduction, Amount: 3, Reason: "too much", ActorID: "admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)

	_, err = repos.LedgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryAdminGrant, Amount: 0, Reason: "zero", ActorID: "admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = repos.LedgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryAdminGrant, Amount: math.MaxInt64, Reason: "overflow", ActorID: "admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = repos.LedgerRepo.AppendEntry(ctx, unlockInput("missing-company", profileID))
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)

	_, err = repos.LedgerRepo.AppendEntry(ctx, unlockInput(companyID, uuid.NewString()))
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	entries, total, err := repos.LedgerRepo.ListEntries(ctx, companyID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, entries, 1)

	acc, err := repos.LedgerRepo.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc.Balance)
	assert.Empty(t, acc.UnlockedList())
}

func testUnlockBookkeeping(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()
	companyID := seedCompany(t, repos)
	profileID := seedProfile(t, repos, true)
	grant(t, repos, companyID, 2)

	entry, err := repos.LedgerRepo.AppendEntry(ctx, unlockInput(companyID, profileID))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), entry.Delta)
	require.NotNil(t, entry.RelatedProfileID)
	assert.Equal(t, profileID, *entry.RelatedProfileID)

	unlocked, err := repos.LedgerRepo.IsProfileUnlocked(ctx, companyID, profileID)
	require.NoError(t, err)
	assert.True(t, unlocked)

	_, err = repos.LedgerRepo.AppendEntry(ctx, unlockInput(companyID, profileID))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyUnlocked)

	reset, err := repos.LedgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryUnlockReset, Reason: "reset", ActorID: "admin",
	})
	require.NoError(t, err)
	assert.Zero(t, reset.Delta)
	assert.Equal(t, int64(1), reset.ResultingBalance)
	assert.Nil(t, reset.RelatedProfileID)

	unlocked, err = repos.LedgerRepo.IsProfileUnlocked(ctx, companyID, profileID)
	require.NoError(t, err)
	assert.False(t, unlocked)

	_, err = repos.LedgerRepo.IsProfileUnlocked(ctx, "missing-company", profileID)
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)

	assertReplayMatches(t, repos, companyID)
}

func testListing(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()
	companyID := seedCompany(t, repos)
	other := seedCompany(t, repos)
	for i := 1; i <= 5; i++ {
		grant(t, repos, companyID, int64(i))
	}
	grant(t, repos, other, 100)
	profileID := seedProfile(t, repos, true)
	_, err := repos.LedgerRepo.AppendEntry(ctx, unlockInput(companyID, profileID))
	require.NoError(t, err)

	page, total, err := repos.LedgerRepo.ListEntries(ctx, companyID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, page, 3)
	assert.Equal(t, domain.EntryProfileUnlock, page[0].EntryType)
	assert.Equal(t, int64(5), page[1].Delta)
	assert.Equal(t, int64(4), page[2].Delta)

	rest, _, err := repos.LedgerRepo.ListEntries(ctx, companyID, 10, 3)
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Equal(t, int64(1), rest[2].Delta)

	beyond, _, err := repos.LedgerRepo.ListEntries(ctx, companyID, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	all, err := repos.LedgerRepo.ListAllEntries(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Sequence, all[i].Sequence)
	}

	totals, err := repos.LedgerRepo.GetLedgerTotals(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerTotals{TotalGranted: 15, TotalSpent: 1, EntryCount: 6}, totals)
}

func testConcurrentUnlocks(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()
	companyID := seedCompany(t, repos)
	grant(t, repos, companyID, 4)
	profileIDs := make([]string, 8)
	for i := range profileIDs {
		profileIDs[i] = seedProfile(t, repos, true)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(profileIDs)*2)
	for _, id := range profileIDs {
		for n := 0; n < 2; n++ {
			wg.Add(1)
			go func(profileID string) {
				defer wg.Done()
				_, err := repos.LedgerRepo.AppendEntry(ctx, unlockInput(companyID, profileID))
				results <- err
			}(id)
		}
	}
	wg.Wait()
	close(results)

	charged := 0
	for err := range results {
		switch {
		case err == nil:
			charged++
		case errors.Is(err, apperrors.ErrInsufficientCredits), errors.Is(err, apperrors.ErrAlreadyUnlocked):
		default:
			t.Errorf("unexpected append error: %v", err)
		}
	}
	assert.Equal(t, 4, charged)

	acc, err := repos.LedgerRepo.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	assert.Zero(t, acc.Balance)
	assert.Len(t, acc.UnlockedList(), 4)
	assertReplayMatches(t, repos, companyID)
}

func testCompaniesAndProfiles(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()
	ids := make([]string, 3)
	for i := range ids {
		ids[i] = seedCompany(t, repos)
	}
	grant(t, repos, ids[0], 7)

	company, err := repos.CompanyRepo.FindCompanyByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Acme Boards", company.Name)
	_, err = repos.CompanyRepo.FindCompanyByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)

	seen := map[string]int64{}
	var token *string
	for pages := 0; pages < 5; pages++ {
		rows, next, err := repos.CompanyRepo.ListCompanies(ctx, 2, token)
		require.NoError(t, err)
		for _, r := range rows {
			seen[r.CompanyID] = r.Balance
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, int64(7), seen[ids[0]])

	score := 40
	verifiedAt := time.Now().UTC().Truncate(time.Microsecond)
	verifier := "admin-2"
	updated, err := repos.CompanyRepo.UpdateEnrichment(ctx, ids[1], domain.CompanyEnrichment{
		VerificationStatus: domain.VerificationVerified,
		AdminNotes:         "ok",
		RiskScore:          &score,
		VerifiedBy:         &verifier,
		VerifiedAt:         &verifiedAt,
	}, verifier, verifiedAt)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified())
	require.NotNil(t, updated.Enrichment.RiskScore)
	assert.Equal(t, 40, *updated.Enrichment.RiskScore)
	assert.Equal(t, verifier, updated.LastUpdatedBy)
	_, err = repos.CompanyRepo.UpdateEnrichment(ctx, "missing", domain.CompanyEnrichment{VerificationStatus: domain.VerificationPending}, verifier, verifiedAt)
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)

	active := seedProfile(t, repos, true)
	inactive := seedProfile(t, repos, false)

	profile, err := repos.ProfileRepo.FindProfileByID(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, []string{"Energy"}, profile.Sectors)
	_, err = repos.ProfileRepo.FindProfileByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	listed, next, err := repos.ProfileRepo.ListActiveProfiles(ctx, 10, nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, listed, 1)
	assert.Equal(t, active, listed[0].ProfileID)

	byIDs, err := repos.ProfileRepo.FindProfilesByIDs(ctx, []string{active, inactive, "missing"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	toggled, err := repos.ProfileRepo.UpdateProfileStatus(ctx, inactive, true, true, "admin", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
	assert.True(t, toggled.IsCompleted)
	_, err = repos.ProfileRepo.UpdateProfileStatus(ctx, "missing", true, true, "admin", time.Now().UTC())
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	dup := domain.CandidateProfile{ProfileID: active, DisplayName: "Copy", AuditFields: domain.NewAuditFields("admin", time.Now().UTC())}
	assert.ErrorIs(t, repos.ProfileRepo.SaveProfile(ctx, dup), apperrors.ErrDuplicate, fmt.Sprintf("profile %s saved twice", active))
}

func testBalanceCeiling(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()
	companyID := seedCompany(t, repos)
	grant(t, repos, companyID, 5)

	full := grant(t, repos, companyID, math.MaxInt64-5)
	assert.Equal(t, int64(math.MaxInt64), full.ResultingBalance)

	_, err := repos.LedgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID: companyID, EntryType: domain.EntryAdminGrant, Amount: 1, Reason: "one more", ActorID: "admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	acc, err := repos.LedgerRepo.GetCreditAccount(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), acc.Balance)
	assertReplayMatches(t, repos, companyID)
}

func testCompanyOpeningEntry(t *testing.T, repos portsrepo.RepositoryProvider) {
	ctx := context.Background()

	company := newCompany()
	entry, err := repos.CompanyRepo.SaveCompany(ctx, company, &domain.LedgerEntryInput{
		EntryType: domain.EntryAdminGrant, Amount: 6, Reason: "Starter pack", ActorID: "admin",
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, company.CompanyID, entry.CompanyID)
	assert.Equal(t, int64(6), entry.ResultingBalance)

	acc, err := repos.LedgerRepo.GetCreditAccount(ctx, company.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), acc.Balance)
	assertReplayMatches(t, repos, company.CompanyID)

	refused := newCompany()
	_, err = repos.CompanyRepo.SaveCompany(ctx, refused, &domain.LedgerEntryInput{
		EntryType: domain.EntryAdminGrant, Amount: 0, Reason: "Starter pack", ActorID: "admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	_, err = repos.CompanyRepo.FindCompanyByID(ctx, refused.CompanyID)
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
	_, err = repos.LedgerRepo.GetCreditAccount(ctx, refused.CompanyID)
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)

	_, err = repos.CompanyRepo.SaveCompany(ctx, company, nil)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}
