package services

import (
	"context"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
)

// CompanyReaderSvc defines read operations for companies
type CompanyReaderSvc interface {
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
	ListCompanies(ctx context.Context, params dto.ListCompaniesParams) (*dto.ListCompaniesResponse, error)
}

// CompanyWriterSvc defines write operations for companies
type CompanyWriterSvc interface {
	// CreateCompany registers a company with an empty credit account and,
	// when requested, grants its initial credits.
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, actorID string) (*domain.Company, error)

	// UpdateEnrichment validates and stores the admin enrichment record.
	UpdateEnrichment(ctx context.Context, companyID string, req dto.UpdateEnrichmentRequest, actorID string) (*domain.Company, error)
}

// CompanySvcFacade combines all company-related service interfaces
type CompanySvcFacade interface {
	CompanyReaderSvc
	CompanyWriterSvc
}
