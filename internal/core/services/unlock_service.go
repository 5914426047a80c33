package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
)

// unlockReason is recorded on every profile_unlock entry.
const unlockReason = "Profile unlock"

// unlockService reveals candidate profiles to companies for one credit each.
type unlockService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	profileRepo portsrepo.ProfileReader
	companyRepo portsrepo.CompanyReader
}

// UnlockOption is a functional option for configuring the unlock service
type UnlockOption func(*unlockService)

// WithUnlockEvents publishes every charged unlock.
func WithUnlockEvents(publisher portssvc.LedgerEventPublisher) UnlockOption {
	return func(s *unlockService) {
		s.Events = publisher
	}
}

// NewUnlockService creates a new UnlockSvc.
func NewUnlockService(ledgerRepo portsrepo.LedgerRepositoryFacade, profileRepo portsrepo.ProfileReader, companyRepo portsrepo.CompanyReader, options ...UnlockOption) portssvc.UnlockSvc {
	svc := &unlockService{
		ledgerRepo:  ledgerRepo,
		profileRepo: profileRepo,
		companyRepo: companyRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.UnlockSvc = (*unlockService)(nil)

func (s *unlockService) Unlock(ctx context.Context, companyID, profileID string) (*domain.UnlockResult, error) {
	if companyID == "" || profileID == "" {
		return nil, fmt.Errorf("%w: company id and profile id are required", apperrors.ErrValidation)
	}

	if _, err := s.companyRepo.FindCompanyByID(ctx, companyID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, fmt.Errorf("%w: profile %s is not active", apperrors.ErrProfileNotFound, profileID)
	}

	unlocked, err := s.ledgerRepo.IsProfileUnlocked(ctx, companyID, profileID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check unlock state",
			slog.String("company_id", companyID),
			slog.String("profile_id", profileID))
		return nil, err
	}
	if unlocked {
		return s.freeUnlock(ctx, companyID, profile)
	}

	entry, err := s.ledgerRepo.AppendEntry(ctx, domain.LedgerEntryInput{
		CompanyID:        companyID,
		EntryType:        domain.EntryProfileUnlock,
		Reason:           unlockReason,
		ActorID:          domain.SystemActorID,
		RelatedProfileID: &profileID,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyUnlocked) {
			// A concurrent request for the same pair committed first.
			return s.freeUnlock(ctx, companyID, profile)
		}
		if errors.Is(err, apperrors.ErrInsufficientCredits) {
			s.LogInfo(ctx, "Unlock refused for lack of credits",
				slog.String("company_id", companyID),
				slog.String("profile_id", profileID))
		} else {
			s.LogError(ctx, err, "Failed to append unlock entry",
				slog.String("company_id", companyID),
				slog.String("profile_id", profileID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Profile unlocked", entryAttrs(entry)...)
	s.PublishEntry(ctx, entry)

	return &domain.UnlockResult{
		Profile: *profile,
		Charged: true,
		Balance: entry.ResultingBalance,
		Entry:   entry,
	}, nil
}

func (s *unlockService) freeUnlock(ctx context.Context, companyID string, profile *domain.CandidateProfile) (*domain.UnlockResult, error) {
	acc, err := s.ledgerRepo.GetCreditAccount(ctx, companyID)
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Profile already unlocked, no charge",
		slog.String("company_id", companyID),
		slog.String("profile_id", profile.ProfileID))
	return &domain.UnlockResult{Profile: *profile, Balance: acc.Balance}, nil
}
