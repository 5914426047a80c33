package domain

import (
	"strings"
)

// CandidateProfile is an executive or board-member candidate as stored.
type CandidateProfile struct {
	ProfileID    string   `json:"profileID"`
	DisplayName  string   `json:"displayName"`
	Headline     string   `json:"headline"`
	Location     string   `json:"location"`
	Sectors      []string `json:"sectors"`
	Bio          string   `json:"bio"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	LinkedInURL  string   `json:"linkedinURL"`
	IsAnonymized bool     `json:"isAnonymized"`
	IsActive     bool     `json:"isActive"`
	IsCompleted  bool     `json:"isCompleted"`
	AuditFields
}

// ProfileView is a profile as shown to one company.
type ProfileView struct {
	CandidateProfile
	Unlocked bool `json:"unlocked"`
}

// pseudonymLength is how many characters of the id anonymized names carry.
const pseudonymLength = 8

// Pseudonym is the stable display name used for anonymized candidates.
func (p CandidateProfile) Pseudonym() string {
	id := strings.ReplaceAll(p.ProfileID, "-", "")
	if len(id) > pseudonymLength {
		id = id[:pseudonymLength]
	}
	return "Candidate " + strings.ToUpper(id)
}

// Redacted returns the profile with contact details removed and, for
// anonymized candidates, the name replaced by a pseudonym.
func (p CandidateProfile) Redacted() CandidateProfile {
	out := p
	out.Email = ""
	out.Phone = ""
	out.LinkedInURL = ""
	if p.IsAnonymized {
		out.DisplayName = p.Pseudonym()
	}
	return out
}

// ViewFor returns what a company sees for this profile.
func (p CandidateProfile) ViewFor(unlocked bool) ProfileView {
	if unlocked {
		return ProfileView{CandidateProfile: p, Unlocked: true}
	}
	return ProfileView{CandidateProfile: p.Redacted()}
}
