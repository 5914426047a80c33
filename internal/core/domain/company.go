package domain

import "time"

// VerificationStatus tracks the back-office review state of a hiring company.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationUnverified, VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// CompanyEnrichment is the admin-maintained data attached to a company.
type CompanyEnrichment struct {
	VerificationStatus VerificationStatus `json:"verificationStatus" validate:"required,oneof=unverified pending verified rejected"`
	AdminNotes         string             `json:"adminNotes" validate:"max=2000"`
	RiskScore          *int               `json:"riskScore,omitempty" validate:"omitempty,min=0,max=100"`
	VerifiedBy         *string            `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`
}

// Company is a hiring organization. Each company owns exactly one CreditAccount.
type Company struct {
	CompanyID  string            `json:"companyID"`
	Name       string            `json:"name"`
	Enrichment CompanyEnrichment `json:"enrichment"`
	AuditFields
}

// IsVerified reports whether the company passed back-office review.
func (c Company) IsVerified() bool {
	return c.Enrichment.VerificationStatus == VerificationVerified
}

// CompanyWithBalance is the admin listing row.
type CompanyWithBalance struct {
	Company
	Balance int64 `json:"balance"`
}
