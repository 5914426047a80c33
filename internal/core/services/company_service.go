package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
)

// companyService manages hiring companies and their admin enrichment data.
type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
	validate    *validator.Validate
}

// CompanyOption is a functional option for configuring the company service
type CompanyOption func(*companyService)

// WithCompanyEvents publishes the opening grant of new companies.
func WithCompanyEvents(publisher portssvc.LedgerEventPublisher) CompanyOption {
	return func(s *companyService) {
		s.Events = publisher
	}
}

// NewCompanyService creates a new CompanySvcFacade.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade, options ...CompanyOption) portssvc.CompanySvcFacade {
	svc := &companyService{
		companyRepo: companyRepo,
		validate:    validator.New(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

func (s *companyService) validateEnrichment(enrichment domain.CompanyEnrichment) error {
	if err := s.validate.Struct(enrichment); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}

func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, actorID string) (*domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", apperrors.ErrValidation)
	}
	if req.InitialCredits < 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.InitialCredits > 0 {
		if err := validateAdjustment(req.InitialCredits, req.InitialReason); err != nil {
			return nil, err
		}
		if strings.TrimSpace(actorID) == "" {
			return nil, apperrors.NewAppError(apperrors.CodeValidation, "admin actor id is required", apperrors.ErrValidation)
		}
	}

	status := domain.VerificationUnverified
	if req.VerificationStatus != nil {
		status = domain.VerificationStatus(*req.VerificationStatus)
	}

	now := time.Now().UTC()
	company := domain.Company{
		CompanyID:   uuid.NewString(),
		Name:        name,
		Enrichment:  domain.CompanyEnrichment{VerificationStatus: status},
		AuditFields: domain.NewAuditFields(actorID, now),
	}
	if status == domain.VerificationVerified {
		company.Enrichment.VerifiedBy = &actorID
		company.Enrichment.VerifiedAt = &now
	}
	if err := s.validateEnrichment(company.Enrichment); err != nil {
		return nil, err
	}

	var opening *domain.LedgerEntryInput
	if req.InitialCredits > 0 {
		opening = &domain.LedgerEntryInput{
			CompanyID: company.CompanyID,
			EntryType: domain.EntryAdminGrant,
			Amount:    req.InitialCredits,
			Reason:    strings.TrimSpace(req.InitialReason),
			ActorID:   actorID,
		}
	}

	// The company and its opening grant commit together or not at all.
	entry, err := s.companyRepo.SaveCompany(ctx, company, opening)
	if err != nil {
		s.LogError(ctx, err, "Failed to save company",
			slog.String("company_id", company.CompanyID),
			slog.Int64("initial_credits", req.InitialCredits))
		return nil, err
	}
	s.LogInfo(ctx, "Company created",
		slog.String("company_id", company.CompanyID),
		slog.String("actor_id", actorID))

	if entry != nil {
		s.LogInfo(ctx, "Initial credit grant recorded", entryAttrs(entry)...)
		s.PublishEntry(ctx, entry)
	}
	return &company, nil
}

func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	if err := requireCompanyID(companyID); err != nil {
		return nil, err
	}
	return s.companyRepo.FindCompanyByID(ctx, companyID)
}

func (s *companyService) ListCompanies(ctx context.Context, params dto.ListCompaniesParams) (*dto.ListCompaniesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	var token *string
	if params.NextToken != "" {
		token = &params.NextToken
	}
	rows, next, err := s.companyRepo.ListCompanies(ctx, limit, token)
	if err != nil {
		s.LogError(ctx, err, "Failed to list companies")
		return nil, err
	}
	resp := dto.ToListCompaniesResponse(rows, next)
	return &resp, nil
}

func (s *companyService) UpdateEnrichment(ctx context.Context, companyID string, req dto.UpdateEnrichmentRequest, actorID string) (*domain.Company, error) {
	current, err := s.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	enrichment := domain.CompanyEnrichment{
		VerificationStatus: domain.VerificationStatus(req.VerificationStatus),
		AdminNotes:         strings.TrimSpace(req.AdminNotes),
		RiskScore:          req.RiskScore,
	}
	switch {
	case enrichment.VerificationStatus != domain.VerificationVerified:
		// Verification stamps are only kept while the company stays verified.
	case current.IsVerified():
		enrichment.VerifiedBy = current.Enrichment.VerifiedBy
		enrichment.VerifiedAt = current.Enrichment.VerifiedAt
	default:
		enrichment.VerifiedBy = &actorID
		enrichment.VerifiedAt = &now
	}
	if err := s.validateEnrichment(enrichment); err != nil {
		return nil, err
	}

	updated, err := s.companyRepo.UpdateEnrichment(ctx, companyID, enrichment, actorID, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to update company enrichment", slog.String("company_id", companyID))
		return nil, err
	}
	s.LogInfo(ctx, "Company enrichment updated",
		slog.String("company_id", companyID),
		slog.String("verification_status", string(enrichment.VerificationStatus)),
		slog.String("actor_id", actorID))
	return updated, nil
}
