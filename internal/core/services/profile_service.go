package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
)

// profileService manages candidate profiles and the company-facing listing.
type profileService struct {
	BaseService
	profileRepo portsrepo.ProfileRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
}

// NewProfileService creates a new ProfileSvcFacade.
func NewProfileService(profileRepo portsrepo.ProfileRepositoryFacade, ledgerRepo portsrepo.LedgerReader) portssvc.ProfileSvcFacade {
	return &profileService{profileRepo: profileRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.ProfileSvcFacade = (*profileService)(nil)

func cleanSectors(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (s *profileService) CreateProfile(ctx context.Context, req dto.CreateProfileRequest, actorID string) (*domain.CandidateProfile, error) {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: display name is required", apperrors.ErrValidation)
	}

	profile := domain.CandidateProfile{
		ProfileID:    uuid.NewString(),
		DisplayName:  name,
		Headline:     strings.TrimSpace(req.Headline),
		Location:     strings.TrimSpace(req.Location),
		Sectors:      cleanSectors(req.Sectors),
		Bio:          strings.TrimSpace(req.Bio),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		LinkedInURL:  strings.TrimSpace(req.LinkedInURL),
		IsAnonymized: req.IsAnonymized,
		IsActive:     true,
		IsCompleted:  req.IsCompleted,
		AuditFields:  domain.NewAuditFields(actorID, time.Now().UTC()),
	}

	if err := s.profileRepo.SaveProfile(ctx, profile); err != nil {
		s.LogError(ctx, err, "Failed to save profile", slog.String("profile_id", profile.ProfileID))
		return nil, err
	}
	s.LogInfo(ctx, "Candidate profile created", slog.String("profile_id", profile.ProfileID))
	return &profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, profileID string) (*domain.CandidateProfile, error) {
	if profileID == "" {
		return nil, fmt.Errorf("%w: profile id is required", apperrors.ErrValidation)
	}
	return s.profileRepo.FindProfileByID(ctx, profileID)
}

func (s *profileService) UpdateProfileStatus(ctx context.Context, profileID string, req dto.UpdateProfileStatusRequest, actorID string) (*domain.CandidateProfile, error) {
	if req.IsActive == nil || req.IsCompleted == nil {
		return nil, fmt.Errorf("%w: isActive and isCompleted are required", apperrors.ErrValidation)
	}
	updated, err := s.profileRepo.UpdateProfileStatus(ctx, profileID, *req.IsActive, *req.IsCompleted, actorID, time.Now().UTC())
	if err != nil {
		s.LogError(ctx, err, "Failed to update profile status", slog.String("profile_id", profileID))
		return nil, err
	}
	return updated, nil
}

func (s *profileService) SearchProfiles(ctx context.Context, companyID string, params dto.SearchProfilesParams) (*dto.SearchProfilesResponse, error) {
	acc, err := s.ledgerRepo.GetCreditAccount(ctx, companyID)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	var token *string
	if params.NextToken != "" {
		token = &params.NextToken
	}
	profiles, next, err := s.profileRepo.ListActiveProfiles(ctx, limit, token)
	if err != nil {
		s.LogError(ctx, err, "Failed to list profiles", slog.String("company_id", companyID))
		return nil, err
	}

	views := make([]domain.ProfileView, len(profiles))
	for i, p := range profiles {
		views[i] = p.ViewFor(acc.IsUnlocked(p.ProfileID))
	}
	resp := dto.ToSearchProfilesResponse(views, next)
	return &resp, nil
}

func (s *profileService) ListUnlockedProfiles(ctx context.Context, companyID string) ([]domain.CandidateProfile, error) {
	acc, err := s.ledgerRepo.GetCreditAccount(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ids := acc.UnlockedList()
	if len(ids) == 0 {
		return []domain.CandidateProfile{}, nil
	}
	return s.profileRepo.FindProfilesByIDs(ctx, ids)
}
