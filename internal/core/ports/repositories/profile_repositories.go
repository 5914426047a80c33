package repositories

import (
	"context"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// ProfileReader defines read operations for candidate profiles
type ProfileReader interface {
	// FindProfileByID retrieves a profile. Returns apperrors.ErrProfileNotFound when absent.
	FindProfileByID(ctx context.Context, profileID string) (*domain.CandidateProfile, error)

	// FindProfilesByIDs retrieves the profiles that exist among profileIDs.
	FindProfilesByIDs(ctx context.Context, profileIDs []string) ([]domain.CandidateProfile, error)

	// ListActiveProfiles returns active profiles newest first.
	ListActiveProfiles(ctx context.Context, limit int, nextToken *string) ([]domain.CandidateProfile, *string, error)
}

// ProfileWriter defines write operations for candidate profiles
type ProfileWriter interface {
	SaveProfile(ctx context.Context, profile domain.CandidateProfile) error
	UpdateProfileStatus(ctx context.Context, profileID string, isActive, isCompleted bool, actorID string, now time.Time) (*domain.CandidateProfile, error)
}

// ProfileRepositoryFacade combines all profile-related repository interfaces
type ProfileRepositoryFacade interface {
	ProfileReader
	ProfileWriter
}
