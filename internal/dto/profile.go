package dto

import (
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// CreateProfileRequest defines the data needed to create a candidate profile.
type CreateProfileRequest struct {
	DisplayName  string   `json:"displayName" binding:"required,max=200"`
	Headline     string   `json:"headline" binding:"max=300"`
	Location     string   `json:"location" binding:"max=200"`
	Sectors      []string `json:"sectors" binding:"max=20,dive,max=100"`
	Bio          string   `json:"bio" binding:"max=5000"`
	Email        string   `json:"email" binding:"omitempty,email"`
	Phone        string   `json:"phone" binding:"max=50"`
	LinkedInURL  string   `json:"linkedinURL" binding:"omitempty,url"`
	IsAnonymized bool     `json:"isAnonymized"`
	IsCompleted  bool     `json:"isCompleted"`
}

// UpdateProfileStatusRequest toggles the lifecycle flags of a profile.
type UpdateProfileStatusRequest struct {
	IsActive    *bool `json:"isActive" binding:"required"`
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

// SearchProfilesParams defines the query parameters of the company search.
type SearchProfilesParams struct {
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ProfileResponse defines a candidate profile as returned to a caller.
type ProfileResponse struct {
	ProfileID    string   `json:"profileID"`
	DisplayName  string   `json:"displayName"`
	Headline     string   `json:"headline"`
	Location     string   `json:"location"`
	Sectors      []string `json:"sectors"`
	Bio          string   `json:"bio"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	LinkedInURL  string   `json:"linkedinURL,omitempty"`
	IsAnonymized bool     `json:"isAnonymized"`
	IsActive     bool     `json:"isActive"`
	IsCompleted  bool     `json:"isCompleted"`
	Unlocked     *bool    `json:"unlocked,omitempty"`
}

// SearchProfilesResponse wraps one page of profile views.
type SearchProfilesResponse struct {
	Profiles  []ProfileResponse `json:"profiles"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// UnlockResponse is the success envelope of the unlock endpoint.
type UnlockResponse struct {
	Profile ProfileResponse      `json:"profile"`
	Charged bool                 `json:"charged"`
	Balance int64                `json:"balance"`
	Entry   *LedgerEntryResponse `json:"entry,omitempty"`
}

// ToProfileResponse converts a domain.CandidateProfile to ProfileResponse DTO
func ToProfileResponse(p *domain.CandidateProfile) ProfileResponse {
	sectors := p.Sectors
	if sectors == nil {
		sectors = []string{}
	}
	return ProfileResponse{
		ProfileID:    p.ProfileID,
		DisplayName:  p.DisplayName,
		Headline:     p.Headline,
		Location:     p.Location,
		Sectors:      sectors,
		Bio:          p.Bio,
		Email:        p.Email,
		Phone:        p.Phone,
		LinkedInURL:  p.LinkedInURL,
		IsAnonymized: p.IsAnonymized,
		IsActive:     p.IsActive,
		IsCompleted:  p.IsCompleted,
	}
}

// ToProfileViewResponse converts a per-company view.
func ToProfileViewResponse(v *domain.ProfileView) ProfileResponse {
	resp := ToProfileResponse(&v.CandidateProfile)
	unlocked := v.Unlocked
	resp.Unlocked = &unlocked
	return resp
}

// ToSearchProfilesResponse converts a page of views.
func ToSearchProfilesResponse(views []domain.ProfileView, nextToken *string) SearchProfilesResponse {
	out := SearchProfilesResponse{Profiles: make([]ProfileResponse, len(views)), NextToken: nextToken}
	for i := range views {
		out.Profiles[i] = ToProfileViewResponse(&views[i])
	}
	return out
}

// ToUnlockResponse converts the outcome of an unlock.
func ToUnlockResponse(r *domain.UnlockResult) UnlockResponse {
	resp := UnlockResponse{
		Profile: ToProfileResponse(&r.Profile),
		Charged: r.Charged,
		Balance: r.Balance,
	}
	unlocked := true
	resp.Profile.Unlocked = &unlocked
	if r.Entry != nil {
		entry := ToLedgerEntryResponse(r.Entry)
		resp.Entry = &entry
	}
	return resp
}
