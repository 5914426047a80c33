package services

import (
	"context"
	"fmt"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
)

const (
	defaultHistoryLimit = 20
	defaultHistoryMax   = 100
)

// reportingService serves read-only ledger views.
type reportingService struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
	maxLimit   int
}

// ReportingOption is a functional option for configuring the reporting service
type ReportingOption func(*reportingService)

// WithHistoryMaxLimit caps the page size of GetHistory.
func WithHistoryMaxLimit(limit int) ReportingOption {
	return func(s *reportingService) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// NewReportingService creates a new ReportingSvc.
func NewReportingService(ledgerRepo portsrepo.LedgerReader, options ...ReportingOption) portssvc.ReportingSvc {
	svc := &reportingService{ledgerRepo: ledgerRepo, maxLimit: defaultHistoryMax}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingSvc = (*reportingService)(nil)

func (s *reportingService) GetHistory(ctx context.Context, companyID string, limit, offset int) (*domain.LedgerPage, error) {
	if err := requireCompanyID(companyID); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", apperrors.ErrValidation)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	// Resolves CompanyNotFound for unknown companies.
	if _, err := s.ledgerRepo.GetCreditAccount(ctx, companyID); err != nil {
		return nil, err
	}

	entries, total, err := s.ledgerRepo.ListEntries(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries")
		return nil, err
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}

	return &domain.LedgerPage{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *reportingService) GetSummary(ctx context.Context, companyID string) (*domain.CreditSummary, error) {
	if err := requireCompanyID(companyID); err != nil {
		return nil, err
	}
	acc, err := s.ledgerRepo.GetCreditAccount(ctx, companyID)
	if err != nil {
		return nil, err
	}
	totals, err := s.ledgerRepo.GetLedgerTotals(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate ledger totals")
		return nil, err
	}

	return &domain.CreditSummary{
		CompanyID:     companyID,
		Balance:       acc.Balance,
		UnlockedCount: len(acc.UnlockedProfileIDs),
		LedgerTotals:  totals,
	}, nil
}
