package repositories

import (
	"context"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a company. Returns apperrors.ErrCompanyNotFound when absent.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompanies returns companies newest first together with their balances.
	// nextToken is the opaque cursor returned by a previous call.
	ListCompanies(ctx context.Context, limit int, nextToken *string) ([]domain.CompanyWithBalance, *string, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// SaveCompany persists a new company and its empty credit account. A
	// non-nil opening entry is appended to that account in the same atomic
	// unit and returned; on error neither the company nor the entry exists.
	SaveCompany(ctx context.Context, company domain.Company, opening *domain.LedgerEntryInput) (*domain.LedgerEntry, error)

	// UpdateEnrichment replaces the admin enrichment record of a company.
	UpdateEnrichment(ctx context.Context, companyID string, enrichment domain.CompanyEnrichment, actorID string, now time.Time) (*domain.Company, error)
}

// CompanyRepositoryFacade combines all company-related repository interfaces
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
}
