package events

import (
	"context"
	"log/slog"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
)

// LogPublisher records ledger events in the request log. It stands in for
// Kafka when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) PublishLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error {
	middleware.GetLoggerFromCtx(ctx).Debug("Ledger entry recorded",
		slog.String("entry_id", entry.EntryID),
		slog.String("company_id", entry.CompanyID),
		slog.String("entry_type", string(entry.EntryType)),
	)
	return nil
}
