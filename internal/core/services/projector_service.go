package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
)

// balanceProjector serves the materialized credit state and checks it against
// a replay of the ledger.
type balanceProjector struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
}

// NewBalanceProjector creates a new BalanceProjectorSvc.
func NewBalanceProjector(ledgerRepo portsrepo.LedgerReader) portssvc.BalanceProjectorSvc {
	return &balanceProjector{ledgerRepo: ledgerRepo}
}

var _ portssvc.BalanceProjectorSvc = (*balanceProjector)(nil)

func requireCompanyID(companyID string) error {
	if companyID == "" {
		return fmt.Errorf("%w: company id is required", apperrors.ErrValidation)
	}
	return nil
}

func (s *balanceProjector) GetBalance(ctx context.Context, companyID string) (int64, error) {
	if err := requireCompanyID(companyID); err != nil {
		return 0, err
	}
	acc, err := s.ledgerRepo.GetCreditAccount(ctx, companyID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

func (s *balanceProjector) IsUnlocked(ctx context.Context, companyID, profileID string) (bool, error) {
	if err := requireCompanyID(companyID); err != nil {
		return false, err
	}
	if _, err := s.ledgerRepo.GetCreditAccount(ctx, companyID); err != nil {
		return false, err
	}
	return s.ledgerRepo.IsProfileUnlocked(ctx, companyID, profileID)
}

func (s *balanceProjector) GetUnlockedSet(ctx context.Context, companyID string) ([]string, error) {
	if err := requireCompanyID(companyID); err != nil {
		return nil, err
	}
	acc, err := s.ledgerRepo.GetCreditAccount(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return acc.UnlockedList(), nil
}

func (s *balanceProjector) Replay(ctx context.Context, companyID string) (*domain.CreditAccount, error) {
	if err := requireCompanyID(companyID); err != nil {
		return nil, err
	}
	if _, err := s.ledgerRepo.GetCreditAccount(ctx, companyID); err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListAllEntries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	replayed := domain.Replay(companyID, entries)
	return &replayed, nil
}

func (s *balanceProjector) Verify(ctx context.Context, companyID string) (*domain.LedgerVerification, error) {
	if err := requireCompanyID(companyID); err != nil {
		return nil, err
	}
	materialized, err := s.ledgerRepo.GetCreditAccount(ctx, companyID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListAllEntries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	replayed := domain.Replay(companyID, entries)

	result := &domain.LedgerVerification{
		CompanyID:           companyID,
		Consistent:          domain.SameState(*materialized, replayed),
		MaterializedBalance: materialized.Balance,
		ReplayedBalance:     replayed.Balance,
		MaterializedSet:     materialized.UnlockedList(),
		ReplayedSet:         replayed.UnlockedList(),
		EntryCount:          len(entries),
	}
	if !result.Consistent {
		s.GetLogger(ctx).Error("Ledger replay does not match materialized account",
			slog.String("company_id", companyID),
			slog.Int64("materialized_balance", result.MaterializedBalance),
			slog.Int64("replayed_balance", result.ReplayedBalance),
			slog.Int("entry_count", result.EntryCount))
	}
	return result, nil
}
