package models

// CandidateProfile is a row of the candidate_profiles table.
type CandidateProfile struct {
	ProfileID    string   `db:"profile_id"`
	DisplayName  string   `db:"display_name"`
	Headline     string   `db:"headline"`
	Location     string   `db:"location"`
	Sectors      []string `db:"sectors"`
	Bio          string   `db:"bio"`
	Email        string   `db:"email"`
	Phone        string   `db:"phone"`
	LinkedInURL  string   `db:"linkedin_url"`
	IsAnonymized bool     `db:"is_anonymized"`
	IsActive     bool     `db:"is_active"`
	IsCompleted  bool     `db:"is_completed"`
	AuditFields
}
