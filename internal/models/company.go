package models

import "time"

// Company is a row of the companies table.
type Company struct {
	CompanyID          string     `db:"company_id"`
	Name               string     `db:"name"`
	VerificationStatus string     `db:"verification_status"`
	AdminNotes         string     `db:"admin_notes"`
	RiskScore          *int32     `db:"risk_score"` // Nullable
	VerifiedBy         *string    `db:"verified_by"`
	VerifiedAt         *time.Time `db:"verified_at"`
	AuditFields
}

// CreditAccount is a row of the credit_accounts table.
type CreditAccount struct {
	CompanyID string    `db:"company_id"`
	Balance   int64     `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}
