package services

import (
	"context"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// BalanceProjectorSvc exposes the materialized credit state of a company.
type BalanceProjectorSvc interface {
	// GetBalance returns the current balance.
	GetBalance(ctx context.Context, companyID string) (int64, error)

	// IsUnlocked reports whether the company has unlocked the profile.
	IsUnlocked(ctx context.Context, companyID, profileID string) (bool, error)

	// GetUnlockedSet returns the unlocked profile ids, sorted.
	GetUnlockedSet(ctx context.Context, companyID string) ([]string, error)

	// Replay folds the full ledger from the empty state.
	Replay(ctx context.Context, companyID string) (*domain.CreditAccount, error)

	// Verify compares the replayed state with the materialized one.
	Verify(ctx context.Context, companyID string) (*domain.LedgerVerification, error)
}

// UnlockSvc reveals candidate profiles to companies in exchange for credits.
type UnlockSvc interface {
	// Unlock charges one credit the first time a company unlocks a profile and
	// returns the full profile. Repeated unlocks are free.
	Unlock(ctx context.Context, companyID, profileID string) (*domain.UnlockResult, error)
}

// AdminAdjustmentSvc defines the privileged ledger operations.
type AdminAdjustmentSvc interface {
	Grant(ctx context.Context, companyID string, amount int64, reason string, adminNote *string, actorID string) (*domain.LedgerEntry, error)
	Deduct(ctx context.Context, companyID string, amount int64, reason string, adminNote *string, actorID string) (*domain.LedgerEntry, error)
	ResetBalance(ctx context.Context, companyID string, reason string, actorID string) (*domain.LedgerEntry, error)
	ResetUnlocks(ctx context.Context, companyID string, reason string, actorID string) (*domain.LedgerEntry, error)
}

// ReportingSvc defines read-only views over the ledger.
type ReportingSvc interface {
	// GetHistory returns entries most recent first.
	GetHistory(ctx context.Context, companyID string, limit, offset int) (*domain.LedgerPage, error)

	// GetSummary returns balance, unlocked count and ledger totals.
	GetSummary(ctx context.Context, companyID string) (*domain.CreditSummary, error)
}
