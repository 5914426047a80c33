package services

import (
	"context"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// LedgerEventPublisher announces committed ledger entries to other systems.
// Publishing is best effort: a failure never undoes the entry.
type LedgerEventPublisher interface {
	PublishLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error
}
