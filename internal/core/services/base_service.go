package services

import (
	"context"
	"log/slog"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Events portssvc.LedgerEventPublisher
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// PublishEntry hands a committed entry to the event publisher. Failures are
// logged and swallowed because the entry is already durable.
func (s *BaseService) PublishEntry(ctx context.Context, entry *domain.LedgerEntry) {
	if s.Events == nil || entry == nil {
		return
	}
	if err := s.Events.PublishLedgerEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger entry",
			slog.String("entry_id", entry.EntryID),
			slog.String("company_id", entry.CompanyID))
	}
}

func entryAttrs(entry *domain.LedgerEntry) []any {
	return []any{
		slog.String("entry_id", entry.EntryID),
		slog.String("company_id", entry.CompanyID),
		slog.String("entry_type", string(entry.EntryType)),
		slog.Int64("delta", entry.Delta),
		slog.Int64("resulting_balance", entry.ResultingBalance),
		slog.String("actor_id", entry.ActorID),
	}
}
