package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
)

// Reasons recorded on resets when the admin gives none.
const (
	defaultResetBalanceReason = "Balance reset by admin"
	defaultResetUnlocksReason = "Unlocked profiles reset by admin"
)

// adminAdjustmentService implements the back-office ledger operations.
type adminAdjustmentService struct {
	BaseService
	ledgerRepo portsrepo.LedgerWriter
}

// AdminOption is a functional option for configuring the admin adjustment service
type AdminOption func(*adminAdjustmentService)

// WithAdminEvents publishes every admin entry.
func WithAdminEvents(publisher portssvc.LedgerEventPublisher) AdminOption {
	return func(s *adminAdjustmentService) {
		s.Events = publisher
	}
}

// NewAdminAdjustmentService creates a new AdminAdjustmentSvc.
func NewAdminAdjustmentService(ledgerRepo portsrepo.LedgerWriter, options ...AdminOption) portssvc.AdminAdjustmentSvc {
	svc := &adminAdjustmentService{ledgerRepo: ledgerRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AdminAdjustmentSvc = (*adminAdjustmentService)(nil)

func validateAdjustment(amount int64, reason string) error {
	if amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if strings.TrimSpace(reason) == "" {
		return apperrors.ErrMissingReason
	}
	return nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func reasonOrDefault(reason, fallback string) string {
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		return trimmed
	}
	return fallback
}

func (s *adminAdjustmentService) Grant(ctx context.Context, companyID string, amount int64, reason string, adminNote *string, actorID string) (*domain.LedgerEntry, error) {
	if err := validateAdjustment(amount, reason); err != nil {
		return nil, err
	}
	return s.append(ctx, domain.LedgerEntryInput{
		CompanyID: companyID,
		EntryType: domain.EntryAdminGrant,
		Amount:    amount,
		Reason:    strings.TrimSpace(reason),
		AdminNote: normalizeNote(adminNote),
		ActorID:   actorID,
	})
}

func (s *adminAdjustmentService) Deduct(ctx context.Context, companyID string, amount int64, reason string, adminNote *string, actorID string) (*domain.LedgerEntry, error) {
	if err := validateAdjustment(amount, reason); err != nil {
		return nil, err
	}
	return s.append(ctx, domain.LedgerEntryInput{
		CompanyID: companyID,
		EntryType: domain.EntryAdminDeduction,
		Amount:    amount,
		Reason:    strings.TrimSpace(reason),
		AdminNote: normalizeNote(adminNote),
		ActorID:   actorID,
	})
}

func (s *adminAdjustmentService) ResetBalance(ctx context.Context, companyID string, reason string, actorID string) (*domain.LedgerEntry, error) {
	return s.append(ctx, domain.LedgerEntryInput{
		CompanyID: companyID,
		EntryType: domain.EntryAdminReset,
		Reason:    reasonOrDefault(reason, defaultResetBalanceReason),
		ActorID:   actorID,
	})
}

func (s *adminAdjustmentService) ResetUnlocks(ctx context.Context, companyID string, reason string, actorID string) (*domain.LedgerEntry, error) {
	return s.append(ctx, domain.LedgerEntryInput{
		CompanyID: companyID,
		EntryType: domain.EntryUnlockReset,
		Reason:    reasonOrDefault(reason, defaultResetUnlocksReason),
		ActorID:   actorID,
	})
}

func (s *adminAdjustmentService) append(ctx context.Context, in domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	if err := requireCompanyID(in.CompanyID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ActorID) == "" {
		return nil, apperrors.NewAppError(apperrors.CodeValidation, "admin actor id is required", apperrors.ErrValidation)
	}

	entry, err := s.ledgerRepo.AppendEntry(ctx, in)
	if err != nil {
		s.LogError(ctx, err, "Admin ledger adjustment failed",
			slog.String("company_id", in.CompanyID),
			slog.String("entry_type", string(in.EntryType)),
			slog.Int64("amount", in.Amount),
			slog.String("actor_id", in.ActorID))
		return nil, err
	}

	s.LogInfo(ctx, "Admin ledger adjustment recorded", entryAttrs(entry)...)
	s.PublishEntry(ctx, entry)
	return entry, nil
}
