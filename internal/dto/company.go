package dto

import (
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// CreateCompanyRequest defines the data needed to register a hiring company.
type CreateCompanyRequest struct {
	Name               string  `json:"name" binding:"required,min=2,max=200"`
	VerificationStatus *string `json:"verificationStatus" binding:"omitempty,oneof=unverified pending verified rejected"`
	InitialCredits     int64   `json:"initialCredits" binding:"gte=0"`
	InitialReason      string  `json:"initialReason" binding:"required_with=InitialCredits,max=500"`
}

// UpdateEnrichmentRequest replaces the admin enrichment record of a company.
type UpdateEnrichmentRequest struct {
	VerificationStatus string `json:"verificationStatus" binding:"required,oneof=unverified pending verified rejected"`
	AdminNotes         string `json:"adminNotes" binding:"max=2000"`
	RiskScore          *int   `json:"riskScore" binding:"omitempty,min=0,max=100"`
}

// ListCompaniesParams defines the query parameters for listing companies.
type ListCompaniesParams struct {
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// CompanyResponse defines the data returned for a company.
type CompanyResponse struct {
	CompanyID     string                   `json:"companyID"`
	Name          string                   `json:"name"`
	Enrichment    domain.CompanyEnrichment `json:"enrichment"`
	Balance       *int64                   `json:"balance,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	CreatedBy     string                   `json:"createdBy"`
	LastUpdatedAt time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy string                   `json:"lastUpdatedBy"`
}

// ListCompaniesResponse wraps one page of companies.
type ListCompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToCompanyResponse converts a domain.Company to CompanyResponse DTO
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:     c.CompanyID,
		Name:          c.Name,
		Enrichment:    c.Enrichment,
		CreatedAt:     c.CreatedAt,
		CreatedBy:     c.CreatedBy,
		LastUpdatedAt: c.LastUpdatedAt,
		LastUpdatedBy: c.LastUpdatedBy,
	}
}

// ToListCompaniesResponse converts a page of companies with balances.
func ToListCompaniesResponse(rows []domain.CompanyWithBalance, nextToken *string) ListCompaniesResponse {
	out := ListCompaniesResponse{Companies: make([]CompanyResponse, len(rows)), NextToken: nextToken}
	for i := range rows {
		resp := ToCompanyResponse(&rows[i].Company)
		balance := rows[i].Balance
		resp.Balance = &balance
		out.Companies[i] = resp
	}
	return out
}
