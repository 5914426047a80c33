package services

import (
	"context"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
)

// ProfileAdminSvc defines back-office operations on candidate profiles
type ProfileAdminSvc interface {
	CreateProfile(ctx context.Context, req dto.CreateProfileRequest, actorID string) (*domain.CandidateProfile, error)
	GetProfile(ctx context.Context, profileID string) (*domain.CandidateProfile, error)
	UpdateProfileStatus(ctx context.Context, profileID string, req dto.UpdateProfileStatusRequest, actorID string) (*domain.CandidateProfile, error)
}

// ProfileDiscoverySvc defines what a company sees when browsing candidates
type ProfileDiscoverySvc interface {
	// SearchProfiles lists active profiles, redacted unless unlocked by the company.
	SearchProfiles(ctx context.Context, companyID string, params dto.SearchProfilesParams) (*dto.SearchProfilesResponse, error)

	// ListUnlockedProfiles returns the full profiles the company has unlocked.
	ListUnlockedProfiles(ctx context.Context, companyID string) ([]domain.CandidateProfile, error)
}

// ProfileSvcFacade combines all profile-related service interfaces
type ProfileSvcFacade interface {
	ProfileAdminSvc
	ProfileDiscoverySvc
}
