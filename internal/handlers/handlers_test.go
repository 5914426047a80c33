package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
	"github.com/pabg92/ned-project-bw-sub001/internal/handlers"
	"github.com/pabg92/ned-project-bw-sub001/internal/platform/config"
	"github.com/pabg92/ned-project-bw-sub001/internal/repositories/memory"
	"github.com/pabg92/ned-project-bw-sub001/internal/utils"
	"github.com/stretchr/testify/suite"
)

const testSecret = "handler-test-secret"

type HandlersTestSuite struct {
	suite.Suite
	router     *gin.Engine
	adminToken string
}

func newRouter(t *testing.T, policy string) *gin.Engine {
	return newRouterWithRepos(t, policy, memory.New().Provider())
}

func newRouterWithRepos(t *testing.T, policy string, repos portsrepo.RepositoryProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		IsProduction:      true,
		JWTSecret:         testSecret,
		JWTIssuer:         "test",
		JWTExpiryDuration: time.Hour,
		AuthPolicy:        policy,
		UnlockRateLimit:   "1000-M",
		HistoryMaxLimit:   100,
	}
	container, err := services.NewServiceContainer(cfg, repos, nil)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	r := gin.New()
	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return r
}

func token(t *testing.T, principal domain.Principal) string {
	tok, err := utils.GenerateJWT(principal, testSecret, time.Hour, "test")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.router = newRouter(suite.T(), config.AuthPolicyReal)
	suite.adminToken = token(suite.T(), domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin})
}

func (suite *HandlersTestSuite) companyToken(companyID string) string {
	return token(suite.T(), domain.Principal{UserID: "user-1", Role: domain.RoleCompany, CompanyID: companyID})
}

func (suite *HandlersTestSuite) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (suite *HandlersTestSuite) assertError(w *httptest.ResponseRecorder, status int, code string) {
	suite.Equal(status, w.Code, w.Body.String())
	var resp dto.ErrorResponse
	suite.decode(w, &resp)
	suite.Equal(code, resp.Code)
}

func (suite *HandlersTestSuite) createCompany(credits int64) string {
	body := map[string]any{"name": "Acme Boards"}
	if credits > 0 {
		body["initialCredits"] = credits
		body["initialReason"] = "Starter pack"
	}
	w := suite.do(http.MethodPost, "/api/v1/admin/companies", suite.adminToken, body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.CompanyResponse
	suite.decode(w, &resp)
	return resp.CompanyID
}

func (suite *HandlersTestSuite) createProfile() string {
	w := suite.do(http.MethodPost, "/api/v1/admin/profiles", suite.adminToken, map[string]any{
		"displayName":  "Jane Doe",
		"email":        "jane@example.com",
		"isAnonymized": true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ProfileResponse
	suite.decode(w, &resp)
	return resp.ProfileID
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlersTestSuite) TestAuthentication() {
	w := suite.do(http.MethodGet, "/api/v1/admin/companies", "", nil)
	suite.assertError(w, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	w = suite.do(http.MethodGet, "/api/v1/admin/companies", "not-a-jwt", nil)
	suite.assertError(w, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	forged, err := utils.GenerateJWT(domain.Principal{UserID: "x", Role: domain.RoleAdmin}, "other-secret", time.Hour, "test")
	suite.Require().NoError(err)
	w = suite.do(http.MethodGet, "/api/v1/admin/companies", forged, nil)
	suite.assertError(w, http.StatusUnauthorized, apperrors.CodeUnauthorized)
}

func (suite *HandlersTestSuite) TestAuthorization() {
	companyID := suite.createCompany(1)
	other := suite.createCompany(0)

	w := suite.do(http.MethodPost, "/api/v1/admin/companies/"+companyID+"/credits/grant", suite.companyToken(companyID),
		map[string]any{"amount": 5, "reason": "self service"})
	suite.assertError(w, http.StatusForbidden, apperrors.CodeForbidden)

	w = suite.do(http.MethodGet, "/api/v1/companies/"+other+"/credits", suite.companyToken(companyID), nil)
	suite.assertError(w, http.StatusForbidden, apperrors.CodeForbidden)

	w = suite.do(http.MethodGet, "/api/v1/companies/"+companyID+"/credits", suite.companyToken(companyID), nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/companies/"+other+"/credits", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestUnlockFlow() {
	companyID := suite.createCompany(1)
	profileID := suite.createProfile()
	second := suite.createProfile()
	companyToken := suite.companyToken(companyID)
	unlockPath := "/api/v1/companies/" + companyID + "/profiles/" + profileID + "/unlock"

	w := suite.do(http.MethodPost, unlockPath, companyToken, nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var charged dto.UnlockResponse
	suite.decode(w, &charged)
	suite.True(charged.Charged)
	suite.Zero(charged.Balance)
	suite.Equal("jane@example.com", charged.Profile.Email)
	suite.Require().NotNil(charged.Entry)
	suite.Equal(string(domain.EntryProfileUnlock), charged.Entry.EntryType)

	w = suite.do(http.MethodPost, unlockPath, companyToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var free dto.UnlockResponse
	suite.decode(w, &free)
	suite.False(free.Charged)
	suite.Nil(free.Entry)

	w = suite.do(http.MethodPost, "/api/v1/companies/"+companyID+"/profiles/"+second+"/unlock", companyToken, nil)
	suite.assertError(w, http.StatusPaymentRequired, apperrors.CodeInsufficientCredits)

	w = suite.do(http.MethodPost, "/api/v1/companies/"+companyID+"/profiles/unknown/unlock", companyToken, nil)
	suite.assertError(w, http.StatusNotFound, apperrors.CodeProfileNotFound)

	w = suite.do(http.MethodGet, "/api/v1/companies/"+companyID+"/profiles", companyToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var search dto.SearchProfilesResponse
	suite.decode(w, &search)
	suite.Len(search.Profiles, 2)
	for _, p := range search.Profiles {
		if p.ProfileID == second {
			suite.Empty(p.Email)
			suite.False(*p.Unlocked)
		}
	}

	w = suite.do(http.MethodGet, "/api/v1/companies/"+companyID+"/profiles/unlocked", companyToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var unlocked []dto.ProfileResponse
	suite.decode(w, &unlocked)
	suite.Require().Len(unlocked, 1)
	suite.Equal(profileID, unlocked[0].ProfileID)
}

func (suite *HandlersTestSuite) TestUnlockUnknownCompanyAsAdmin() {
	profileID := suite.createProfile()
	w := suite.do(http.MethodPost, "/api/v1/companies/missing/profiles/"+profileID+"/unlock", suite.adminToken, nil)
	suite.assertError(w, http.StatusNotFound, apperrors.CodeCompanyNotFound)
}

func (suite *HandlersTestSuite) TestAdminAdjustments() {
	companyID := suite.createCompany(0)
	base := "/api/v1/admin/companies/" + companyID

	w := suite.do(http.MethodPost, base+"/credits/grant", suite.adminToken, map[string]any{"amount": 0, "reason": ""})
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeInvalidAmount)

	w = suite.do(http.MethodPost, base+"/credits/grant", suite.adminToken, map[string]any{"amount": 5})
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeMissingReason)

	w = suite.do(http.MethodPost, base+"/credits/grant", suite.adminToken, map[string]any{"amount": 5, "reason": "Annual plan", "adminNote": "invoice 42"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var granted dto.AdjustmentResponse
	suite.decode(w, &granted)
	suite.Equal(int64(5), granted.Balance)
	suite.Equal("admin-1", granted.Entry.ActorID)

	w = suite.do(http.MethodPost, base+"/credits/deduct", suite.adminToken, map[string]any{"amount": 6, "reason": "Chargeback"})
	suite.assertError(w, http.StatusPaymentRequired, apperrors.CodeInsufficientCredits)

	w = suite.do(http.MethodPost, base+"/credits/reset", suite.adminToken, nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reset dto.AdjustmentResponse
	suite.decode(w, &reset)
	suite.Equal(int64(-5), reset.Entry.Delta)
	suite.Zero(reset.Balance)

	w = suite.do(http.MethodPost, base+"/unlocks/reset", suite.adminToken, map[string]any{"reason": "Renewal"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var unlockReset dto.AdjustmentResponse
	suite.decode(w, &unlockReset)
	suite.Equal(string(domain.EntryUnlockReset), unlockReset.Entry.EntryType)
	suite.Zero(unlockReset.Entry.Delta)

	w = suite.do(http.MethodGet, base+"/ledger/verify", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var verification domain.LedgerVerification
	suite.decode(w, &verification)
	suite.True(verification.Consistent)
	suite.Equal(3, verification.EntryCount)

	w = suite.do(http.MethodPost, "/api/v1/admin/companies/missing/credits/grant", suite.adminToken, map[string]any{"amount": 1, "reason": "x"})
	suite.assertError(w, http.StatusNotFound, apperrors.CodeCompanyNotFound)
}

func (suite *HandlersTestSuite) TestReporting() {
	companyID := suite.createCompany(3)
	profileID := suite.createProfile()
	companyToken := suite.companyToken(companyID)
	w := suite.do(http.MethodPost, "/api/v1/companies/"+companyID+"/profiles/"+profileID+"/unlock", companyToken, nil)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/companies/"+companyID+"/credits", companyToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var balance dto.BalanceResponse
	suite.decode(w, &balance)
	suite.Equal(int64(2), balance.Balance)
	suite.Equal([]string{profileID}, balance.UnlockedProfileIDs)

	w = suite.do(http.MethodGet, "/api/v1/companies/"+companyID+"/credits/history?limit=1", companyToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var history dto.HistoryResponse
	suite.decode(w, &history)
	suite.Equal(int64(2), history.Total)
	suite.Require().Len(history.Entries, 1)
	suite.Equal(string(domain.EntryProfileUnlock), history.Entries[0].EntryType)

	w = suite.do(http.MethodGet, "/api/v1/companies/"+companyID+"/credits/history?offset=-1", companyToken, nil)
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeValidation)

	w = suite.do(http.MethodGet, "/api/v1/admin/companies/"+companyID+"/credits/summary", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var summary dto.SummaryResponse
	suite.decode(w, &summary)
	suite.Equal(int64(2), summary.Balance)
	suite.Equal(1, summary.UnlockedCount)
	suite.Equal(int64(3), summary.TotalGranted)
	suite.Equal(int64(1), summary.TotalSpent)

	w = suite.do(http.MethodGet, "/api/v1/admin/companies/missing/credits/summary", suite.adminToken, nil)
	suite.assertError(w, http.StatusNotFound, apperrors.CodeCompanyNotFound)
}

func (suite *HandlersTestSuite) TestCompanyAdministration() {
	companyID := suite.createCompany(2)

	w := suite.do(http.MethodPost, "/api/v1/admin/companies", suite.adminToken, map[string]any{"name": ""})
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeValidation)

	w = suite.do(http.MethodPut, "/api/v1/admin/companies/"+companyID+"/enrichment", suite.adminToken,
		map[string]any{"verificationStatus": "verified", "adminNotes": "KYC done", "riskScore": 20})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var company dto.CompanyResponse
	suite.decode(w, &company)
	suite.Equal(domain.VerificationVerified, company.Enrichment.VerificationStatus)
	suite.Require().NotNil(company.Enrichment.VerifiedBy)
	suite.Equal("admin-1", *company.Enrichment.VerifiedBy)

	w = suite.do(http.MethodPut, "/api/v1/admin/companies/"+companyID+"/enrichment", suite.adminToken,
		map[string]any{"verificationStatus": "verified", "riskScore": 150})
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeValidation)

	w = suite.do(http.MethodGet, "/api/v1/admin/companies", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListCompaniesResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Companies, 1)
	suite.Require().NotNil(list.Companies[0].Balance)
	suite.Equal(int64(2), *list.Companies[0].Balance)

	w = suite.do(http.MethodGet, "/api/v1/admin/companies/missing", suite.adminToken, nil)
	suite.assertError(w, http.StatusNotFound, apperrors.CodeCompanyNotFound)
}

func (suite *HandlersTestSuite) listCompanyBalances() map[string]int64 {
	w := suite.do(http.MethodGet, "/api/v1/admin/companies", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var list dto.ListCompaniesResponse
	suite.decode(w, &list)
	balances := make(map[string]int64, len(list.Companies))
	for _, c := range list.Companies {
		suite.Require().NotNil(c.Balance)
		balances[c.CompanyID] = *c.Balance
	}
	return balances
}

func (suite *HandlersTestSuite) TestGrantBeyondLargestBalanceIsRefused() {
	companyID := suite.createCompany(2)
	base := "/api/v1/admin/companies/" + companyID

	w := suite.do(http.MethodPost, base+"/credits/grant", suite.adminToken,
		map[string]any{"amount": int64(math.MaxInt64), "reason": "Bulk top-up"})
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeInvalidAmount)

	w = suite.do(http.MethodPost, base+"/credits/grant", suite.adminToken,
		map[string]any{"amount": int64(math.MaxInt64 - 2), "reason": "Bulk top-up"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var granted dto.AdjustmentResponse
	suite.decode(w, &granted)
	suite.Equal(int64(math.MaxInt64), granted.Balance)

	w = suite.do(http.MethodPost, base+"/credits/grant", suite.adminToken, map[string]any{"amount": 1, "reason": "One more"})
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeInvalidAmount)
	suite.Equal(int64(math.MaxInt64), suite.listCompanyBalances()[companyID])
}

func (suite *HandlersTestSuite) TestCreateCompanyWithFailedOpeningGrantLeavesNothingBehind() {
	store := memory.New(memory.WithAppendHook(func(context.Context, domain.LedgerEntry) error {
		return errors.New("ledger unavailable")
	}))
	suite.router = newRouterWithRepos(suite.T(), config.AuthPolicyReal, store.Provider())

	w := suite.do(http.MethodPost, "/api/v1/admin/companies", suite.adminToken,
		map[string]any{"name": "Acme Boards", "initialCredits": 5, "initialReason": "Starter pack"})
	suite.assertError(w, http.StatusInternalServerError, apperrors.CodeStorageFailure)
	suite.Empty(suite.listCompanyBalances(), "a failed opening grant must not leave a company behind")

	// A retry without credits succeeds and is the only company.
	companyID := suite.createCompany(0)
	balances := suite.listCompanyBalances()
	suite.Len(balances, 1)
	suite.Contains(balances, companyID)
}

func (suite *HandlersTestSuite) TestProfileStatus() {
	profileID := suite.createProfile()

	w := suite.do(http.MethodPut, "/api/v1/admin/profiles/"+profileID+"/status", suite.adminToken,
		map[string]any{"isActive": false, "isCompleted": true})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var profile dto.ProfileResponse
	suite.decode(w, &profile)
	suite.False(profile.IsActive)

	w = suite.do(http.MethodPut, "/api/v1/admin/profiles/"+profileID+"/status", suite.adminToken, map[string]any{"isActive": true})
	suite.assertError(w, http.StatusBadRequest, apperrors.CodeValidation)

	w = suite.do(http.MethodGet, "/api/v1/admin/profiles/missing", suite.adminToken, nil)
	suite.assertError(w, http.StatusNotFound, apperrors.CodeProfileNotFound)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func TestTestPolicyLetsAnyAuthenticatedCallerThrough(t *testing.T) {
	router := newRouter(t, config.AuthPolicyTest)
	companyToken := token(t, domain.Principal{UserID: "user-1", Role: domain.RoleCompany, CompanyID: "c-1"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/companies", nil)
	req.Header.Set("Authorization", "Bearer "+companyToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 under the test policy, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/companies", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}
