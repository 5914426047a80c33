package services_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
	"github.com/pabg92/ned-project-bw-sub001/internal/repositories/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const adminID = "admin-1"

// --- Mock LedgerEventPublisher ---
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Test Suite ---
type LedgerServicesTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	publisher *MockPublisher
	admin     portssvc.AdminAdjustmentSvc
	unlock    portssvc.UnlockSvc
	projector portssvc.BalanceProjectorSvc
	reporting portssvc.ReportingSvc
	companies portssvc.CompanySvcFacade
	profiles  portssvc.ProfileSvcFacade
}

func (suite *LedgerServicesTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.publisher = new(MockPublisher)
	suite.publisher.On("PublishLedgerEntry", mock.Anything, mock.Anything).Return(nil).Maybe()

	repos := suite.store.Provider()
	suite.admin = services.NewAdminAdjustmentService(repos.LedgerRepo, services.WithAdminEvents(suite.publisher))
	suite.unlock = services.NewUnlockService(repos.LedgerRepo, repos.ProfileRepo, repos.CompanyRepo, services.WithUnlockEvents(suite.publisher))
	suite.projector = services.NewBalanceProjector(repos.LedgerRepo)
	suite.reporting = services.NewReportingService(repos.LedgerRepo, services.WithHistoryMaxLimit(10))
	suite.companies = services.NewCompanyService(repos.CompanyRepo, services.WithCompanyEvents(suite.publisher))
	suite.profiles = services.NewProfileService(repos.ProfileRepo, repos.LedgerRepo)
}

func (suite *LedgerServicesTestSuite) newCompany(credits int64) string {
	req := dto.CreateCompanyRequest{Name: "Acme Boards", InitialCredits: credits}
	if credits > 0 {
		req.InitialReason = "Starter pack"
	}
	company, err := suite.companies.CreateCompany(suite.ctx, req, adminID)
	suite.Require().NoError(err)
	return company.CompanyID
}

func (suite *LedgerServicesTestSuite) newProfile() string {
	profile, err := suite.profiles.CreateProfile(suite.ctx, dto.CreateProfileRequest{
		DisplayName:  "Jane Doe",
		Headline:     "Non-executive director",
		Email:        "jane@example.com",
		Sectors:      []string{"Fintech", " fintech ", "Energy"},
		IsAnonymized: true,
	}, adminID)
	suite.Require().NoError(err)
	return profile.ProfileID
}

func (suite *LedgerServicesTestSuite) assertConsistent(companyID string) {
	v, err := suite.projector.Verify(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.True(v.Consistent, "replayed state %d/%v differs from materialized %d/%v",
		v.ReplayedBalance, v.ReplayedSet, v.MaterializedBalance, v.MaterializedSet)
}

// --- Unlock ---

func (suite *LedgerServicesTestSuite) TestUnlock_ChargesOnceThenFree() {
	companyID := suite.newCompany(3)
	profileID := suite.newProfile()

	first, err := suite.unlock.Unlock(suite.ctx, companyID, profileID)
	suite.Require().NoError(err)
	suite.True(first.Charged)
	suite.Equal(int64(2), first.Balance)
	suite.Require().NotNil(first.Entry)
	suite.Equal(domain.EntryProfileUnlock, first.Entry.EntryType)
	suite.Equal(int64(-1), first.Entry.Delta)
	suite.Equal(profileID, *first.Entry.RelatedProfileID)
	suite.Equal(domain.SystemActorID, first.Entry.ActorID)
	suite.Equal("jane@example.com", first.Profile.Email)

	second, err := suite.unlock.Unlock(suite.ctx, companyID, profileID)
	suite.Require().NoError(err)
	suite.False(second.Charged)
	suite.Nil(second.Entry)
	suite.Equal(int64(2), second.Balance)

	page, err := suite.reporting.GetHistory(suite.ctx, companyID, 0, 0)
	suite.Require().NoError(err)
	suite.Equal(int64(2), page.Total, "grant plus a single unlock")

	suite.publisher.AssertNumberOfCalls(suite.T(), "PublishLedgerEntry", 2)
	suite.assertConsistent(companyID)
}

func (suite *LedgerServicesTestSuite) TestUnlock_InsufficientCredits() {
	companyID := suite.newCompany(0)
	profileID := suite.newProfile()

	result, err := suite.unlock.Unlock(suite.ctx, companyID, profileID)

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientCredits)
	suite.Nil(result)
	unlocked, err := suite.projector.IsUnlocked(suite.ctx, companyID, profileID)
	suite.Require().NoError(err)
	suite.False(unlocked)
	page, err := suite.reporting.GetHistory(suite.ctx, companyID, 0, 0)
	suite.Require().NoError(err)
	suite.Zero(page.Total)
}

func (suite *LedgerServicesTestSuite) TestUnlock_NotFound() {
	companyID := suite.newCompany(2)
	profileID := suite.newProfile()

	_, err := suite.unlock.Unlock(suite.ctx, "missing", profileID)
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)

	_, err = suite.unlock.Unlock(suite.ctx, companyID, "missing")
	suite.ErrorIs(err, apperrors.ErrProfileNotFound)

	active := false
	completed := true
	_, err = suite.profiles.UpdateProfileStatus(suite.ctx, profileID, dto.UpdateProfileStatusRequest{IsActive: &active, IsCompleted: &completed}, adminID)
	suite.Require().NoError(err)
	_, err = suite.unlock.Unlock(suite.ctx, companyID, profileID)
	suite.ErrorIs(err, apperrors.ErrProfileNotFound)

	balance, err := suite.projector.GetBalance(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), balance)
}

func (suite *LedgerServicesTestSuite) TestUnlock_ConcurrentSamePairChargesOnce() {
	companyID := suite.newCompany(5)
	profileID := suite.newProfile()

	const workers = 25
	var wg sync.WaitGroup
	charged := make(chan bool, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := suite.unlock.Unlock(suite.ctx, companyID, profileID)
			if err != nil {
				errs <- err
				return
			}
			charged <- result.Charged
		}()
	}
	wg.Wait()
	close(charged)
	close(errs)

	for err := range errs {
		suite.Fail("unexpected unlock error", err.Error())
	}
	chargedCount := 0
	for c := range charged {
		if c {
			chargedCount++
		}
	}
	suite.Equal(1, chargedCount)

	balance, err := suite.projector.GetBalance(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Equal(int64(4), balance)
	suite.assertConsistent(companyID)
}

func (suite *LedgerServicesTestSuite) TestUnlock_ConcurrentDistinctProfilesNeverOverdraw() {
	companyID := suite.newCompany(3)
	profileIDs := make([]string, 10)
	for i := range profileIDs {
		profileIDs[i] = suite.newProfile()
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, refused := 0, 0
	for _, id := range profileIDs {
		wg.Add(1)
		go func(profileID string) {
			defer wg.Done()
			_, err := suite.unlock.Unlock(suite.ctx, companyID, profileID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientCredits):
				refused++
			default:
				suite.Fail("unexpected unlock error", err.Error())
			}
		}(id)
	}
	wg.Wait()

	suite.Equal(3, succeeded)
	suite.Equal(7, refused)
	set, err := suite.projector.GetUnlockedSet(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Len(set, 3)
	balance, err := suite.projector.GetBalance(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Zero(balance)
	suite.assertConsistent(companyID)
}

func (suite *LedgerServicesTestSuite) TestUnlock_ChargesAgainAfterUnlockReset() {
	companyID := suite.newCompany(2)
	profileID := suite.newProfile()

	_, err := suite.unlock.Unlock(suite.ctx, companyID, profileID)
	suite.Require().NoError(err)
	_, err = suite.admin.ResetUnlocks(suite.ctx, companyID, "", adminID)
	suite.Require().NoError(err)

	again, err := suite.unlock.Unlock(suite.ctx, companyID, profileID)
	suite.Require().NoError(err)
	suite.True(again.Charged)
	suite.Zero(again.Balance)
	suite.assertConsistent(companyID)
}

func (suite *LedgerServicesTestSuite) TestUnlock_PublisherFailureDoesNotUndoEntry() {
	publisher := new(MockPublisher)
	publisher.On("PublishLedgerEntry", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	repos := suite.store.Provider()
	unlockSvc := services.NewUnlockService(repos.LedgerRepo, repos.ProfileRepo, repos.CompanyRepo, services.WithUnlockEvents(publisher))

	companyID := suite.newCompany(1)
	profileID := suite.newProfile()

	result, err := unlockSvc.Unlock(suite.ctx, companyID, profileID)

	suite.Require().NoError(err)
	suite.True(result.Charged)
	publisher.AssertNumberOfCalls(suite.T(), "PublishLedgerEntry", 1)
	unlocked, err := suite.projector.IsUnlocked(suite.ctx, companyID, profileID)
	suite.Require().NoError(err)
	suite.True(unlocked)
}

// --- Admin adjustments ---

func (suite *LedgerServicesTestSuite) TestAdjustments_ValidationOrder() {
	companyID := suite.newCompany(0)
	note := "  "

	tests := []struct {
		name    string
		call    func(context.Context, string, int64, string, *string, string) (*domain.LedgerEntry, error)
		amount  int64
		reason  string
		wantErr error
	}{
		{"grant zero amount and no reason", suite.admin.Grant, 0, "", apperrors.ErrInvalidAmount},
		{"grant negative amount", suite.admin.Grant, -5, "refund", apperrors.ErrInvalidAmount},
		{"grant blank reason", suite.admin.Grant, 5, "   ", apperrors.ErrMissingReason},
		{"deduct zero amount", suite.admin.Deduct, 0, "", apperrors.ErrInvalidAmount},
		{"deduct blank reason", suite.admin.Deduct, 1, "", apperrors.ErrMissingReason},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			entry, err := tt.call(suite.ctx, companyID, tt.amount, tt.reason, &note, adminID)
			suite.ErrorIs(err, tt.wantErr)
			suite.Nil(entry)
		})
	}

	page, err := suite.reporting.GetHistory(suite.ctx, companyID, 0, 0)
	suite.Require().NoError(err)
	suite.Zero(page.Total)
}

func (suite *LedgerServicesTestSuite) TestGrantAndDeduct() {
	companyID := suite.newCompany(0)
	note := " renewal "

	grant, err := suite.admin.Grant(suite.ctx, companyID, 10, " Annual plan ", &note, adminID)
	suite.Require().NoError(err)
	suite.Equal(int64(10), grant.Delta)
	suite.Equal(int64(10), grant.ResultingBalance)
	suite.Equal("Annual plan", grant.Reason)
	suite.Require().NotNil(grant.AdminNote)
	suite.Equal("renewal", *grant.AdminNote)
	suite.Equal(adminID, grant.ActorID)

	_, err = suite.admin.Deduct(suite.ctx, companyID, 11, "Chargeback", nil, adminID)
	suite.ErrorIs(err, apperrors.ErrInsufficientCredits)

	deduct, err := suite.admin.Deduct(suite.ctx, companyID, 4, "Chargeback", nil, adminID)
	suite.Require().NoError(err)
	suite.Equal(int64(-4), deduct.Delta)
	suite.Equal(int64(6), deduct.ResultingBalance)
	suite.Nil(deduct.AdminNote)

	_, err = suite.admin.Grant(suite.ctx, "missing", 1, "x", nil, adminID)
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)

	_, err = suite.admin.Grant(suite.ctx, companyID, 1, "x", nil, "")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.assertConsistent(companyID)
}

func (suite *LedgerServicesTestSuite) TestResetBalance() {
	companyID := suite.newCompany(7)

	entry, err := suite.admin.ResetBalance(suite.ctx, companyID, "", adminID)
	suite.Require().NoError(err)
	suite.Equal(domain.EntryAdminReset, entry.EntryType)
	suite.Equal(int64(-7), entry.Delta)
	suite.Zero(entry.ResultingBalance)
	suite.NotEmpty(entry.Reason)

	empty, err := suite.admin.ResetBalance(suite.ctx, companyID, "Account closed", adminID)
	suite.Require().NoError(err)
	suite.Zero(empty.Delta)
	suite.Equal("Account closed", empty.Reason)

	suite.assertConsistent(companyID)
}

func (suite *LedgerServicesTestSuite) TestResetUnlocks() {
	companyID := suite.newCompany(5)
	for i := 0; i < 2; i++ {
		_, err := suite.unlock.Unlock(suite.ctx, companyID, suite.newProfile())
		suite.Require().NoError(err)
	}

	entry, err := suite.admin.ResetUnlocks(suite.ctx, companyID, "Contract renewal", adminID)
	suite.Require().NoError(err)
	suite.Equal(domain.EntryUnlockReset, entry.EntryType)
	suite.Zero(entry.Delta)
	suite.Equal(int64(3), entry.ResultingBalance)

	set, err := suite.projector.GetUnlockedSet(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Empty(set)
	balance, err := suite.projector.GetBalance(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Equal(int64(3), balance)
	suite.assertConsistent(companyID)
}

// --- Reporting ---

func (suite *LedgerServicesTestSuite) TestHistory_MostRecentFirstAndClamped() {
	companyID := suite.newCompany(1)
	for i := 0; i < 14; i++ {
		_, err := suite.admin.Grant(suite.ctx, companyID, int64(i+1), fmt.Sprintf("grant %d", i), nil, adminID)
		suite.Require().NoError(err)
	}

	page, err := suite.reporting.GetHistory(suite.ctx, companyID, 500, 0)
	suite.Require().NoError(err)
	suite.Equal(int64(15), page.Total)
	suite.Equal(10, page.Limit, "limit is clamped to the configured maximum")
	suite.Len(page.Entries, 10)
	suite.Equal("grant 13", page.Entries[0].Reason)
	for i := 1; i < len(page.Entries); i++ {
		suite.Greater(page.Entries[i-1].Sequence, page.Entries[i].Sequence)
	}

	tail, err := suite.reporting.GetHistory(suite.ctx, companyID, 10, 10)
	suite.Require().NoError(err)
	suite.Len(tail.Entries, 5)
	suite.Equal("Starter pack", tail.Entries[4].Reason)

	_, err = suite.reporting.GetHistory(suite.ctx, companyID, 10, -1)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.reporting.GetHistory(suite.ctx, "missing", 10, 0)
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)
}

func (suite *LedgerServicesTestSuite) TestSummary() {
	companyID := suite.newCompany(10)
	for i := 0; i < 3; i++ {
		_, err := suite.unlock.Unlock(suite.ctx, companyID, suite.newProfile())
		suite.Require().NoError(err)
	}
	_, err := suite.admin.Deduct(suite.ctx, companyID, 2, "Correction", nil, adminID)
	suite.Require().NoError(err)

	summary, err := suite.reporting.GetSummary(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Equal(int64(5), summary.Balance)
	suite.Equal(3, summary.UnlockedCount)
	suite.Equal(int64(10), summary.TotalGranted)
	suite.Equal(int64(3), summary.TotalSpent)
	suite.Equal(int64(2), summary.TotalDeducted)
	suite.Equal(int64(5), summary.EntryCount)

	_, err = suite.reporting.GetSummary(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)
}

// --- Projector ---

func (suite *LedgerServicesTestSuite) TestReplayMatchesMaterializedState() {
	companyID := suite.newCompany(5)
	profileIDs := make([]string, 6)
	for i := range profileIDs {
		profileIDs[i] = suite.newProfile()
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var err error
		switch rng.Intn(6) {
		case 0:
			_, err = suite.admin.Grant(suite.ctx, companyID, int64(rng.Intn(4)+1), "top up", nil, adminID)
		case 1:
			_, err = suite.admin.Deduct(suite.ctx, companyID, int64(rng.Intn(3)+1), "correction", nil, adminID)
		case 2:
			if rng.Intn(10) == 0 {
				_, err = suite.admin.ResetBalance(suite.ctx, companyID, "", adminID)
			}
		case 3:
			if rng.Intn(10) == 0 {
				_, err = suite.admin.ResetUnlocks(suite.ctx, companyID, "", adminID)
			}
		default:
			_, err = suite.unlock.Unlock(suite.ctx, companyID, profileIDs[rng.Intn(len(profileIDs))])
		}
		if err != nil && !errors.Is(err, apperrors.ErrInsufficientCredits) {
			suite.Require().NoError(err)
		}

		balance, err := suite.projector.GetBalance(suite.ctx, companyID)
		suite.Require().NoError(err)
		suite.GreaterOrEqual(balance, int64(0))
	}

	replayed, err := suite.projector.Replay(suite.ctx, companyID)
	suite.Require().NoError(err)
	balance, err := suite.projector.GetBalance(suite.ctx, companyID)
	suite.Require().NoError(err)
	set, err := suite.projector.GetUnlockedSet(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Equal(balance, replayed.Balance)
	suite.Equal(set, replayed.UnlockedList())
	suite.assertConsistent(companyID)
}

func (suite *LedgerServicesTestSuite) TestProjector_UnknownCompany() {
	_, err := suite.projector.GetBalance(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)
	_, err = suite.projector.IsUnlocked(suite.ctx, "missing", "p")
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)
	_, err = suite.projector.Verify(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)
	_, err = suite.projector.GetBalance(suite.ctx, "")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Companies and profiles ---

func (suite *LedgerServicesTestSuite) TestCreateCompany_InitialGrantGoesThroughLedger() {
	companyID := suite.newCompany(4)

	page, err := suite.reporting.GetHistory(suite.ctx, companyID, 0, 0)
	suite.Require().NoError(err)
	suite.Require().Len(page.Entries, 1)
	suite.Equal(domain.EntryAdminGrant, page.Entries[0].EntryType)
	suite.Equal(int64(4), page.Entries[0].Delta)

	_, err = suite.companies.CreateCompany(suite.ctx, dto.CreateCompanyRequest{Name: "No Reason Ltd", InitialCredits: 3}, adminID)
	suite.ErrorIs(err, apperrors.ErrMissingReason)
	_, err = suite.companies.CreateCompany(suite.ctx, dto.CreateCompanyRequest{Name: "  "}, adminID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServicesTestSuite) TestCreateCompany_OpeningGrantIsPublished() {
	companyID := suite.newCompany(4)

	suite.publisher.AssertCalled(suite.T(), "PublishLedgerEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.CompanyID == companyID && e.EntryType == domain.EntryAdminGrant && e.Delta == 4
	}))
}

func (suite *LedgerServicesTestSuite) TestCreateCompany_FailedOpeningGrantLeavesNoCompany() {
	store := memory.New(memory.WithAppendHook(func(context.Context, domain.LedgerEntry) error {
		return errors.New("ledger unavailable")
	}))
	companies := services.NewCompanyService(store.Provider().CompanyRepo, services.WithCompanyEvents(suite.publisher))

	company, err := companies.CreateCompany(suite.ctx, dto.CreateCompanyRequest{
		Name: "Acme Boards", InitialCredits: 5, InitialReason: "Starter pack",
	}, adminID)
	suite.ErrorIs(err, apperrors.ErrStorageFailure)
	suite.Nil(company)

	listed, err := companies.ListCompanies(suite.ctx, dto.ListCompaniesParams{})
	suite.Require().NoError(err)
	suite.Empty(listed.Companies)
	suite.publisher.AssertNotCalled(suite.T(), "PublishLedgerEntry", mock.Anything, mock.Anything)
}

func (suite *LedgerServicesTestSuite) TestUpdateEnrichment() {
	companyID := suite.newCompany(0)
	score := 35

	verified, err := suite.companies.UpdateEnrichment(suite.ctx, companyID, dto.UpdateEnrichmentRequest{
		VerificationStatus: "verified",
		AdminNotes:         " Checked companies house ",
		RiskScore:          &score,
	}, adminID)
	suite.Require().NoError(err)
	suite.True(verified.IsVerified())
	suite.Equal("Checked companies house", verified.Enrichment.AdminNotes)
	suite.Require().NotNil(verified.Enrichment.VerifiedBy)
	suite.Equal(adminID, *verified.Enrichment.VerifiedBy)
	firstVerifiedAt := *verified.Enrichment.VerifiedAt

	again, err := suite.companies.UpdateEnrichment(suite.ctx, companyID, dto.UpdateEnrichmentRequest{VerificationStatus: "verified"}, "admin-2")
	suite.Require().NoError(err)
	suite.Equal(adminID, *again.Enrichment.VerifiedBy, "verification stamp survives later edits")
	suite.Equal(firstVerifiedAt, *again.Enrichment.VerifiedAt)

	rejected, err := suite.companies.UpdateEnrichment(suite.ctx, companyID, dto.UpdateEnrichmentRequest{VerificationStatus: "rejected"}, adminID)
	suite.Require().NoError(err)
	suite.Nil(rejected.Enrichment.VerifiedBy)
	suite.Nil(rejected.Enrichment.VerifiedAt)

	badScore := 101
	_, err = suite.companies.UpdateEnrichment(suite.ctx, companyID, dto.UpdateEnrichmentRequest{VerificationStatus: "pending", RiskScore: &badScore}, adminID)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.companies.UpdateEnrichment(suite.ctx, companyID, dto.UpdateEnrichmentRequest{VerificationStatus: "approved"}, adminID)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.companies.UpdateEnrichment(suite.ctx, "missing", dto.UpdateEnrichmentRequest{VerificationStatus: "pending"}, adminID)
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)
}

func (suite *LedgerServicesTestSuite) TestSearchProfiles_RedactsUntilUnlocked() {
	companyID := suite.newCompany(1)
	unlockedID := suite.newProfile()
	lockedID := suite.newProfile()

	_, err := suite.unlock.Unlock(suite.ctx, companyID, unlockedID)
	suite.Require().NoError(err)

	resp, err := suite.profiles.SearchProfiles(suite.ctx, companyID, dto.SearchProfilesParams{Limit: 10})
	suite.Require().NoError(err)
	suite.Require().Len(resp.Profiles, 2)
	suite.Nil(resp.NextToken)

	byID := map[string]dto.ProfileResponse{}
	for _, p := range resp.Profiles {
		byID[p.ProfileID] = p
	}
	suite.True(*byID[unlockedID].Unlocked)
	suite.Equal("jane@example.com", byID[unlockedID].Email)
	suite.Equal("Jane Doe", byID[unlockedID].DisplayName)
	suite.False(*byID[lockedID].Unlocked)
	suite.Empty(byID[lockedID].Email)
	suite.NotEqual("Jane Doe", byID[lockedID].DisplayName)
	suite.Equal([]string{"Fintech", "Energy"}, byID[lockedID].Sectors)

	unlocked, err := suite.profiles.ListUnlockedProfiles(suite.ctx, companyID)
	suite.Require().NoError(err)
	suite.Require().Len(unlocked, 1)
	suite.Equal(unlockedID, unlocked[0].ProfileID)

	_, err = suite.profiles.SearchProfiles(suite.ctx, "missing", dto.SearchProfilesParams{})
	suite.ErrorIs(err, apperrors.ErrCompanyNotFound)
}

func (suite *LedgerServicesTestSuite) TestSearchProfiles_Pagination() {
	companyID := suite.newCompany(0)
	for i := 0; i < 5; i++ {
		suite.newProfile()
	}

	first, err := suite.profiles.SearchProfiles(suite.ctx, companyID, dto.SearchProfilesParams{Limit: 3})
	suite.Require().NoError(err)
	suite.Len(first.Profiles, 3)
	suite.Require().NotNil(first.NextToken)

	second, err := suite.profiles.SearchProfiles(suite.ctx, companyID, dto.SearchProfilesParams{Limit: 3, NextToken: *first.NextToken})
	suite.Require().NoError(err)
	suite.Len(second.Profiles, 2)
	suite.Nil(second.NextToken)

	_, err = suite.profiles.SearchProfiles(suite.ctx, companyID, dto.SearchProfilesParams{Limit: 3, NextToken: "%%%"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Run Test Suite ---
func TestLedgerServicesTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServicesTestSuite))
}
