package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	"github.com/pabg92/ned-project-bw-sub001/internal/models"
)

// TxHook runs inside the append transaction after the entry row is written
// and before commit. Returning an error rolls the append back.
type TxHook func(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error

type PgxLedgerRepository struct {
	BaseRepository
	hook TxHook
	now  func() time.Time
}

func newPgxLedgerRepository(pool *pgxpool.Pool, hook TxHook) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		hook:           hook,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const entryColumns = `entry_id, sequence, company_id, entry_type, delta, resulting_balance, reason, admin_note,
	actor_id, related_profile_id, created_at`

func toDomainEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:          m.EntryID,
		CompanyID:        m.CompanyID,
		Sequence:         m.Sequence,
		EntryType:        domain.EntryType(m.EntryType),
		Delta:            m.Delta,
		ResultingBalance: m.ResultingBalance,
		Reason:           m.Reason,
		AdminNote:        m.AdminNote,
		ActorID:          m.ActorID,
		RelatedProfileID: m.RelatedProfileID,
		CreatedAt:        m.CreatedAt,
	}
}

func scanEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	out := []domain.LedgerEntry{}
	for rows.Next() {
		var m models.LedgerEntry
		if err := rows.Scan(
			&m.EntryID, &m.Sequence, &m.CompanyID, &m.EntryType, &m.Delta, &m.ResultingBalance, &m.Reason, &m.AdminNote,
			&m.ActorID, &m.RelatedProfileID, &m.CreatedAt,
		); err != nil {
			return nil, apperrors.Storage("scan ledger entry", err)
		}
		out = append(out, toDomainEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("iterate ledger entries", err)
	}
	return out, nil
}

// AppendEntry serializes writers per company with SELECT ... FOR UPDATE on the
// credit_accounts row. The balance check, the entry insert and the
// materialized update share one transaction.
func (r *PgxLedgerRepository) AppendEntry(ctx context.Context, in domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	entry, err := r.appendTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}

// appendTx locks the account row and records in inside tx, running the hook
// last. The caller owns tx and commits it.
func (r *PgxLedgerRepository) appendTx(ctx context.Context, tx pgx.Tx, in domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	var balance int64
	err := tx.QueryRow(ctx, `SELECT balance FROM credit_accounts WHERE company_id = $1 FOR UPDATE;`, in.CompanyID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Storage("lock credit account", err)
	}

	alreadyUnlocked := false
	if in.EntryType == domain.EntryProfileUnlock && in.RelatedProfileID != nil {
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM unlocked_profiles WHERE company_id = $1 AND profile_id = $2);`,
			in.CompanyID, *in.RelatedProfileID,
		).Scan(&alreadyUnlocked)
		if err != nil {
			return nil, apperrors.Storage("check unlocked profile", err)
		}
	}

	delta, err := domain.PlanDelta(balance, alreadyUnlocked, in)
	if err != nil {
		return nil, err
	}

	m := models.LedgerEntry{
		EntryID:          uuid.NewString(),
		CompanyID:        in.CompanyID,
		EntryType:        string(in.EntryType),
		Delta:            delta,
		ResultingBalance: balance + delta,
		Reason:           in.Reason,
		AdminNote:        in.AdminNote,
		ActorID:          in.ActorID,
		CreatedAt:        r.now(),
	}
	if in.EntryType == domain.EntryProfileUnlock {
		m.RelatedProfileID = in.RelatedProfileID
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO credit_ledger_entries (entry_id, company_id, entry_type, delta, resulting_balance, reason, admin_note,
			actor_id, related_profile_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING sequence;`,
		m.EntryID, m.CompanyID, m.EntryType, m.Delta, m.ResultingBalance, m.Reason, m.AdminNote,
		m.ActorID, m.RelatedProfileID, m.CreatedAt,
	).Scan(&m.Sequence)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation && in.EntryType == domain.EntryProfileUnlock {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Storage("insert ledger entry", err)
	}

	if _, err = tx.Exec(ctx,
		`UPDATE credit_accounts SET balance = $2, updated_at = $3 WHERE company_id = $1;`,
		m.CompanyID, m.ResultingBalance, m.CreatedAt,
	); err != nil {
		return nil, apperrors.Storage("update credit account", err)
	}

	switch in.EntryType {
	case domain.EntryProfileUnlock:
		_, err = tx.Exec(ctx,
			`INSERT INTO unlocked_profiles (company_id, profile_id, entry_id, unlocked_at) VALUES ($1, $2, $3, $4);`,
			m.CompanyID, *m.RelatedProfileID, m.EntryID, m.CreatedAt,
		)
	case domain.EntryUnlockReset:
		_, err = tx.Exec(ctx, `DELETE FROM unlocked_profiles WHERE company_id = $1;`, m.CompanyID)
	}
	if err != nil {
		return nil, apperrors.Storage("update unlocked profiles", err)
	}

	entry := toDomainEntry(m)
	if r.hook != nil {
		if err := r.hook(ctx, tx, entry); err != nil {
			return nil, apperrors.Storage("append hook", err)
		}
	}
	return &entry, nil
}

func (r *PgxLedgerRepository) GetCreditAccount(ctx context.Context, companyID string) (*domain.CreditAccount, error) {
	var m models.CreditAccount
	err := r.Pool.QueryRow(ctx,
		`SELECT company_id, balance, updated_at FROM credit_accounts WHERE company_id = $1;`, companyID,
	).Scan(&m.CompanyID, &m.Balance, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Storage("find credit account", err)
	}

	rows, err := r.Pool.Query(ctx, `SELECT profile_id FROM unlocked_profiles WHERE company_id = $1;`, companyID)
	if err != nil {
		return nil, apperrors.Storage("list unlocked profiles", err)
	}
	defer rows.Close()

	acc := domain.NewCreditAccount(m.CompanyID)
	acc.Balance = m.Balance
	acc.UpdatedAt = m.UpdatedAt
	for rows.Next() {
		var profileID string
		if err := rows.Scan(&profileID); err != nil {
			return nil, apperrors.Storage("scan unlocked profile", err)
		}
		acc.UnlockedProfileIDs[profileID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("iterate unlocked profiles", err)
	}
	return &acc, nil
}

func (r *PgxLedgerRepository) IsProfileUnlocked(ctx context.Context, companyID, profileID string) (bool, error) {
	var accountExists, unlocked bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM credit_accounts WHERE company_id = $1),
			EXISTS (SELECT 1 FROM unlocked_profiles WHERE company_id = $1 AND profile_id = $2);`,
		companyID, profileID,
	).Scan(&accountExists, &unlocked)
	if err != nil {
		return false, apperrors.Storage("check unlocked profile", err)
	}
	if !accountExists {
		return false, apperrors.ErrCompanyNotFound
	}
	return unlocked, nil
}

func (r *PgxLedgerRepository) ListEntries(ctx context.Context, companyID string, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	var total int64
	if err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM credit_ledger_entries WHERE company_id = $1;`, companyID,
	).Scan(&total); err != nil {
		return nil, 0, apperrors.Storage("count ledger entries", err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+entryColumns+` FROM credit_ledger_entries
		WHERE company_id = $1
		ORDER BY sequence DESC
		LIMIT $2 OFFSET $3;`,
		companyID, limit, offset,
	)
	if err != nil {
		return nil, 0, apperrors.Storage("list ledger entries", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *PgxLedgerRepository) ListAllEntries(ctx context.Context, companyID string) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+entryColumns+` FROM credit_ledger_entries WHERE company_id = $1 ORDER BY sequence ASC;`, companyID,
	)
	if err != nil {
		return nil, apperrors.Storage("list ledger entries", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *PgxLedgerRepository) GetLedgerTotals(ctx context.Context, companyID string) (domain.LedgerTotals, error) {
	var totals domain.LedgerTotals
	err := r.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(delta) FILTER (WHERE entry_type = 'admin_grant'), 0)::BIGINT,
			COALESCE(-SUM(delta) FILTER (WHERE entry_type = 'profile_unlock'), 0)::BIGINT,
			COALESCE(-SUM(delta) FILTER (WHERE entry_type IN ('admin_deduction', 'admin_reset')), 0)::BIGINT,
			COUNT(*)
		FROM credit_ledger_entries
		WHERE company_id = $1;`,
		companyID,
	).Scan(&totals.TotalGranted, &totals.TotalSpent, &totals.TotalDeducted, &totals.EntryCount)
	if err != nil {
		return domain.LedgerTotals{}, apperrors.Storage("aggregate ledger totals", err)
	}
	return totals, nil
}
