package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// LedgerEntryArgs is the River job enqueued alongside each ledger entry.
type LedgerEntryArgs struct {
	Entry domain.LedgerEntry `json:"entry"`
}

func (LedgerEntryArgs) Kind() string { return string(LedgerEntryRecorded) }

// EntrySender delivers one entry and reports whether it got through.
type EntrySender interface {
	Send(ctx context.Context, entry domain.LedgerEntry) error
}

type LedgerEntryWorker struct {
	river.WorkerDefaults[LedgerEntryArgs]
	sender EntrySender
	logger *slog.Logger
}

func NewLedgerEntryWorker(sender EntrySender, logger *slog.Logger) *LedgerEntryWorker {
	return &LedgerEntryWorker{sender: sender, logger: logger}
}

// Work returns the send error so River retries with backoff.
func (w *LedgerEntryWorker) Work(ctx context.Context, job *river.Job[LedgerEntryArgs]) error {
	entry := job.Args.Entry
	if err := w.sender.Send(ctx, entry); err != nil {
		w.logger.Warn("Ledger event delivery failed",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.EntryID),
			slog.Int("attempt", job.Attempt),
		)
		return fmt.Errorf("deliver ledger entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// Outbox owns the River client that delivers ledger events after commit.
type Outbox struct {
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// NewOutbox applies River's schema migrations and builds a client whose
// single worker hands entries to sender.
func NewOutbox(ctx context.Context, pool *pgxpool.Pool, sender EntrySender, logger *slog.Logger) (*Outbox, error) {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return nil, fmt.Errorf("create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("apply river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewLedgerEntryWorker(sender, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("create river client: %w", err)
	}
	return &Outbox{client: client, logger: logger}, nil
}

// Enqueue inserts the delivery job in the caller's transaction. Its signature
// matches the ledger repository's transaction hook.
func (o *Outbox) Enqueue(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	_, err := o.client.InsertTx(ctx, tx, LedgerEntryArgs{Entry: entry}, nil)
	return err
}

func (o *Outbox) Start(ctx context.Context) error {
	return o.client.Start(ctx)
}

func (o *Outbox) Stop(ctx context.Context) error {
	return o.client.Stop(ctx)
}
