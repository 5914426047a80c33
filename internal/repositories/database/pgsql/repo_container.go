package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
)

// Option configures the PostgreSQL repositories.
type Option func(*options)

type options struct {
	ledgerHook TxHook
}

// WithLedgerTxHook runs hook inside every ledger append transaction.
func WithLedgerTxHook(hook TxHook) Option {
	return func(o *options) { o.ledgerHook = hook }
}

func NewRepositoryProvider(dbPool *pgxpool.Pool, opts ...Option) portsrepo.RepositoryProvider {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ledgerRepo := newPgxLedgerRepository(dbPool, o.ledgerHook)
	return portsrepo.RepositoryProvider{
		CompanyRepo: newPgxCompanyRepository(dbPool, ledgerRepo),
		ProfileRepo: newPgxProfileRepository(dbPool),
		LedgerRepo:  ledgerRepo,
	}
}
