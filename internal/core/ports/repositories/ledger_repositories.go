package repositories

import (
	"context"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// LedgerReader defines read operations over the credit ledger and the
// materialized account it maintains.
type LedgerReader interface {
	// GetCreditAccount returns the materialized balance and unlocked set.
	// Returns apperrors.ErrCompanyNotFound when the company has no account.
	GetCreditAccount(ctx context.Context, companyID string) (*domain.CreditAccount, error)

	// IsProfileUnlocked reports whether profileID is in the company's unlocked set.
	IsProfileUnlocked(ctx context.Context, companyID, profileID string) (bool, error)

	// ListEntries returns a page of entries, most recent first, and the total entry count.
	ListEntries(ctx context.Context, companyID string, limit, offset int) ([]domain.LedgerEntry, int64, error)

	// ListAllEntries returns every entry of a company, oldest first.
	ListAllEntries(ctx context.Context, companyID string) ([]domain.LedgerEntry, error)

	// GetLedgerTotals aggregates a company's entries by type.
	GetLedgerTotals(ctx context.Context, companyID string) (domain.LedgerTotals, error)
}

// LedgerWriter defines the single write path of the ledger.
type LedgerWriter interface {
	// AppendEntry locks the company's account, resolves the delta with
	// domain.PlanDelta, records the entry and updates the materialized state,
	// all in one atomic unit. Nothing is written when an error is returned.
	AppendEntry(ctx context.Context, in domain.LedgerEntryInput) (*domain.LedgerEntry, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
