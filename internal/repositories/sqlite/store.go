// Package sqlite implements the repository ports on SQLite for single-node
// deployments and local development.
//
// A sync.RWMutex serializes writers so a ledger append reads the balance,
// checks it and writes the entry without another append interleaving. The
// schema is created on New; PostgreSQL deployments use the versioned
// migrations instead.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	"github.com/pabg92/ned-project-bw-sub001/internal/utils/pagination"
)

// timeLayout is fixed width so TEXT timestamps sort in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements the company, profile and ledger repositories on SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var (
	_ portsrepo.CompanyRepositoryFacade = (*Store)(nil)
	_ portsrepo.ProfileRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade  = (*Store)(nil)
)

// New opens the database at dbPath and creates the schema.
// Use ":memory:" for a throwaway database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and matches the single writer.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{CompanyRepo: s, ProfileRepo: s, LedgerRepo: s}
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		company_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		verification_status TEXT NOT NULL,
		admin_notes TEXT NOT NULL DEFAULT '',
		risk_score INTEGER,
		verified_by TEXT,
		verified_at TEXT,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL,
		last_updated_at TEXT NOT NULL,
		last_updated_by TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS candidate_profiles (
		profile_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		headline TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		sectors_json TEXT NOT NULL DEFAULT '[]',
		bio TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		linkedin_url TEXT NOT NULL DEFAULT '',
		is_anonymized INTEGER NOT NULL,
		is_active INTEGER NOT NULL,
		is_completed INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL,
		last_updated_at TEXT NOT NULL,
		last_updated_by TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS credit_accounts (
		company_id TEXT PRIMARY KEY REFERENCES companies(company_id),
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS credit_ledger_entries (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_id TEXT NOT NULL UNIQUE,
		company_id TEXT NOT NULL REFERENCES credit_accounts(company_id),
		entry_type TEXT NOT NULL,
		delta INTEGER NOT NULL,
		resulting_balance INTEGER NOT NULL CHECK (resulting_balance >= 0),
		reason TEXT NOT NULL,
		admin_note TEXT,
		actor_id TEXT NOT NULL,
		related_profile_id TEXT REFERENCES candidate_profiles(profile_id),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_credit_ledger_company_sequence
		ON credit_ledger_entries(company_id, sequence);

	CREATE TABLE IF NOT EXISTS unlocked_profiles (
		company_id TEXT NOT NULL REFERENCES credit_accounts(company_id),
		profile_id TEXT NOT NULL REFERENCES candidate_profiles(profile_id),
		entry_id TEXT NOT NULL,
		unlocked_at TEXT NOT NULL,
		PRIMARY KEY (company_id, profile_id)
	);

	CREATE TRIGGER IF NOT EXISTS trg_credit_ledger_no_update
		BEFORE UPDATE ON credit_ledger_entries
		BEGIN SELECT RAISE(ABORT, 'credit_ledger_entries is append-only'); END;

	CREATE TRIGGER IF NOT EXISTS trg_credit_ledger_no_delete
		BEFORE DELETE ON credit_ledger_entries
		BEGIN SELECT RAISE(ABORT, 'credit_ledger_entries is append-only'); END;
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COMPANIES
// =============================================================================

const companyColumns = `c.company_id, c.name, c.verification_status, c.admin_notes, c.risk_score, c.verified_by,
	c.verified_at, c.created_at, c.created_by, c.last_updated_at, c.last_updated_by`

// SaveCompany writes the company, its account and the optional opening
// entry in one transaction.
func (s *Store) SaveCompany(ctx context.Context, company domain.Company, opening *domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	e := company.Enrichment
	_, err = tx.ExecContext(ctx, `
		INSERT INTO companies (company_id, name, verification_status, admin_notes, risk_score, verified_by,
			verified_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		company.CompanyID, company.Name, string(e.VerificationStatus), e.AdminNotes, nullInt(e.RiskScore), e.VerifiedBy,
		nullTime(e.VerifiedAt), formatTime(company.CreatedAt), company.CreatedBy,
		formatTime(company.LastUpdatedAt), company.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: company with ID %s already exists", apperrors.ErrDuplicate, company.CompanyID)
		}
		return nil, apperrors.Storage("insert company", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_accounts (company_id, balance, updated_at) VALUES (?, 0, ?)`,
		company.CompanyID, formatTime(company.CreatedAt),
	); err != nil {
		return nil, apperrors.Storage("insert credit account", err)
	}

	var entry *domain.LedgerEntry
	if opening != nil {
		in := *opening
		in.CompanyID = company.CompanyID
		if entry, err = s.appendTx(ctx, tx, in); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Storage("commit transaction", err)
	}
	return entry, nil
}

func (s *Store) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies c WHERE c.company_id = ?`, companyID)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Storage("find company", err)
	}
	return &company, nil
}

func (s *Store) ListCompanies(ctx context.Context, limit int, nextToken *string) ([]domain.CompanyWithBalance, *string, error) {
	cursor, err := pagination.DecodeCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + companyColumns + `, a.balance FROM companies c JOIN credit_accounts a ON a.company_id = c.company_id`
	args := []any{}
	if cursor != nil {
		query += ` WHERE (c.created_at, c.company_id) < (?, ?)`
		args = append(args, formatTime(cursor.CreatedAt), cursor.ID)
	}
	query += ` ORDER BY c.created_at DESC, c.company_id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.Storage("list companies", err)
	}
	defer rows.Close()

	out := make([]domain.CompanyWithBalance, 0, limit)
	for rows.Next() {
		var balance int64
		company, err := scanCompany(rows, &balance)
		if err != nil {
			return nil, nil, apperrors.Storage("scan company", err)
		}
		out = append(out, domain.CompanyWithBalance{Company: company, Balance: balance})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.Storage("iterate companies", err)
	}

	fetched := len(out)
	if fetched > limit {
		out = out[:limit]
	}
	var next *string
	if len(out) > 0 {
		last := out[len(out)-1]
		next = pagination.NextToken(fetched, limit, last.CreatedAt, last.CompanyID)
	}
	return out, next, nil
}

func (s *Store) UpdateEnrichment(ctx context.Context, companyID string, enrichment domain.CompanyEnrichment, actorID string, now time.Time) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE companies
		SET verification_status = ?, admin_notes = ?, risk_score = ?, verified_by = ?, verified_at = ?,
			last_updated_at = ?, last_updated_by = ?
		WHERE company_id = ?`,
		string(enrichment.VerificationStatus), enrichment.AdminNotes, nullInt(enrichment.RiskScore), enrichment.VerifiedBy,
		nullTime(enrichment.VerifiedAt), formatTime(now), actorID, companyID,
	)
	if err != nil {
		return nil, apperrors.Storage("update company enrichment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.ErrCompanyNotFound
	}

	company, err := scanCompany(s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies c WHERE c.company_id = ?`, companyID))
	if err != nil {
		return nil, apperrors.Storage("reload company", err)
	}
	return &company, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner, extra ...any) (domain.Company, error) {
	var (
		c                        domain.Company
		status                   string
		riskScore                sql.NullInt64
		verifiedBy, verifiedAt   sql.NullString
		createdAt, lastUpdatedAt string
	)
	dest := []any{
		&c.CompanyID, &c.Name, &status, &c.Enrichment.AdminNotes, &riskScore, &verifiedBy,
		&verifiedAt, &createdAt, &c.CreatedBy, &lastUpdatedAt, &c.LastUpdatedBy,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Company{}, err
	}
	c.Enrichment.VerificationStatus = domain.VerificationStatus(status)
	if riskScore.Valid {
		score := int(riskScore.Int64)
		c.Enrichment.RiskScore = &score
	}
	if verifiedBy.Valid {
		c.Enrichment.VerifiedBy = &verifiedBy.String
	}
	if verifiedAt.Valid {
		t := parseTime(verifiedAt.String)
		c.Enrichment.VerifiedAt = &t
	}
	c.CreatedAt = parseTime(createdAt)
	c.LastUpdatedAt = parseTime(lastUpdatedAt)
	return c, nil
}

// =============================================================================
// PROFILES
// =============================================================================

const profileColumns = `profile_id, display_name, headline, location, sectors_json, bio, email, phone, linkedin_url,
	is_anonymized, is_active, is_completed, created_at, created_by, last_updated_at, last_updated_by`

func (s *Store) SaveProfile(ctx context.Context, p domain.CandidateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sectors := p.Sectors
	if sectors == nil {
		sectors = []string{}
	}
	sectorsJSON, err := json.Marshal(sectors)
	if err != nil {
		return fmt.Errorf("%w: sectors: %v", apperrors.ErrValidation, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidate_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProfileID, p.DisplayName, p.Headline, p.Location, string(sectorsJSON), p.Bio, p.Email, p.Phone, p.LinkedInURL,
		p.IsAnonymized, p.IsActive, p.IsCompleted, formatTime(p.CreatedAt), p.CreatedBy,
		formatTime(p.LastUpdatedAt), p.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: profile with ID %s already exists", apperrors.ErrDuplicate, p.ProfileID)
		}
		return apperrors.Storage("insert profile", err)
	}
	return nil
}

func (s *Store) FindProfileByID(ctx context.Context, profileID string) (*domain.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM candidate_profiles WHERE profile_id = ?`, profileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Storage("find profile", err)
	}
	return &p, nil
}

func (s *Store) FindProfilesByIDs(ctx context.Context, profileIDs []string) ([]domain.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CandidateProfile, 0, len(profileIDs))
	for _, id := range profileIDs {
		p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM candidate_profiles WHERE profile_id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, apperrors.Storage("find profiles", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) ListActiveProfiles(ctx context.Context, limit int, nextToken *string) ([]domain.CandidateProfile, *string, error) {
	cursor, err := pagination.DecodeCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + profileColumns + ` FROM candidate_profiles WHERE is_active = 1`
	args := []any{}
	if cursor != nil {
		query += ` AND (created_at, profile_id) < (?, ?)`
		args = append(args, formatTime(cursor.CreatedAt), cursor.ID)
	}
	query += ` ORDER BY created_at DESC, profile_id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.Storage("list profiles", err)
	}
	defer rows.Close()

	out := make([]domain.CandidateProfile, 0, limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, nil, apperrors.Storage("scan profile", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.Storage("iterate profiles", err)
	}

	fetched := len(out)
	if fetched > limit {
		out = out[:limit]
	}
	var next *string
	if len(out) > 0 {
		last := out[len(out)-1]
		next = pagination.NextToken(fetched, limit, last.CreatedAt, last.ProfileID)
	}
	return out, next, nil
}

func (s *Store) UpdateProfileStatus(ctx context.Context, profileID string, isActive, isCompleted bool, actorID string, now time.Time) (*domain.CandidateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE candidate_profiles
		SET is_active = ?, is_completed = ?, last_updated_at = ?, last_updated_by = ?
		WHERE profile_id = ?`,
		isActive, isCompleted, formatTime(now), actorID, profileID,
	)
	if err != nil {
		return nil, apperrors.Storage("update profile status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.ErrProfileNotFound
	}

	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM candidate_profiles WHERE profile_id = ?`, profileID))
	if err != nil {
		return nil, apperrors.Storage("reload profile", err)
	}
	return &p, nil
}

func scanProfile(row scanner) (domain.CandidateProfile, error) {
	var (
		p                        domain.CandidateProfile
		sectorsJSON              string
		createdAt, lastUpdatedAt string
	)
	err := row.Scan(
		&p.ProfileID, &p.DisplayName, &p.Headline, &p.Location, &sectorsJSON, &p.Bio, &p.Email, &p.Phone, &p.LinkedInURL,
		&p.IsAnonymized, &p.IsActive, &p.IsCompleted, &createdAt, &p.CreatedBy, &lastUpdatedAt, &p.LastUpdatedBy,
	)
	if err != nil {
		return domain.CandidateProfile{}, err
	}
	if err := json.Unmarshal([]byte(sectorsJSON), &p.Sectors); err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("decode sectors of %s: %w", p.ProfileID, err)
	}
	p.CreatedAt = parseTime(createdAt)
	p.LastUpdatedAt = parseTime(lastUpdatedAt)
	return p, nil
}

// =============================================================================
// LEDGER
// =============================================================================

const entryColumns = `sequence, entry_id, company_id, entry_type, delta, resulting_balance, reason, admin_note,
	actor_id, related_profile_id, created_at`

// AppendEntry holds the write lock for the whole read-check-write cycle and
// runs the writes in one SQL transaction.
func (s *Store) AppendEntry(ctx context.Context, in domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	entry, err := s.appendTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Storage("commit transaction", err)
	}
	return entry, nil
}

// appendTx runs the read-check-write cycle of an append inside tx. The caller
// holds s.mu for writing and commits.
func (s *Store) appendTx(ctx context.Context, tx *sql.Tx, in domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `SELECT balance FROM credit_accounts WHERE company_id = ?`, in.CompanyID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Storage("read credit account", err)
	}

	alreadyUnlocked := false
	if in.EntryType == domain.EntryProfileUnlock && in.RelatedProfileID != nil {
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM unlocked_profiles WHERE company_id = ? AND profile_id = ?)`,
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

	entry := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		CompanyID:        in.CompanyID,
		EntryType:        in.EntryType,
		Delta:            delta,
		ResultingBalance: balance + delta,
		Reason:           in.Reason,
		AdminNote:        in.AdminNote,
		ActorID:          in.ActorID,
		CreatedAt:        s.now(),
	}
	if in.EntryType == domain.EntryProfileUnlock {
		entry.RelatedProfileID = in.RelatedProfileID
	}
	createdAt := formatTime(entry.CreatedAt)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO credit_ledger_entries (entry_id, company_id, entry_type, delta, resulting_balance, reason, admin_note,
			actor_id, related_profile_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.CompanyID, string(entry.EntryType), entry.Delta, entry.ResultingBalance, entry.Reason,
		entry.AdminNote, entry.ActorID, entry.RelatedProfileID, createdAt,
	)
	if err != nil {
		if isForeignKeyError(err) && in.EntryType == domain.EntryProfileUnlock {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Storage("insert ledger entry", err)
	}
	if entry.Sequence, err = res.LastInsertId(); err != nil {
		return nil, apperrors.Storage("read ledger sequence", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE credit_accounts SET balance = ?, updated_at = ? WHERE company_id = ?`,
		entry.ResultingBalance, createdAt, entry.CompanyID,
	); err != nil {
		return nil, apperrors.Storage("update credit account", err)
	}

	switch in.EntryType {
	case domain.EntryProfileUnlock:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO unlocked_profiles (company_id, profile_id, entry_id, unlocked_at) VALUES (?, ?, ?, ?)`,
			entry.CompanyID, *entry.RelatedProfileID, entry.EntryID, createdAt,
		)
	case domain.EntryUnlockReset:
		_, err = tx.ExecContext(ctx, `DELETE FROM unlocked_profiles WHERE company_id = ?`, entry.CompanyID)
	}
	if err != nil {
		return nil, apperrors.Storage("update unlocked profiles", err)
	}
	return &entry, nil
}

func (s *Store) GetCreditAccount(ctx context.Context, companyID string) (*domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT balance, updated_at FROM credit_accounts WHERE company_id = ?`, companyID,
	).Scan(&balance, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Storage("find credit account", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT profile_id FROM unlocked_profiles WHERE company_id = ?`, companyID)
	if err != nil {
		return nil, apperrors.Storage("list unlocked profiles", err)
	}
	defer rows.Close()

	acc := domain.NewCreditAccount(companyID)
	acc.Balance = balance
	acc.UpdatedAt = parseTime(updatedAt)
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

func (s *Store) IsProfileUnlocked(ctx context.Context, companyID, profileID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accountExists, unlocked bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM credit_accounts WHERE company_id = ?),
			EXISTS (SELECT 1 FROM unlocked_profiles WHERE company_id = ? AND profile_id = ?)`,
		companyID, companyID, profileID,
	).Scan(&accountExists, &unlocked)
	if err != nil {
		return false, apperrors.Storage("check unlocked profile", err)
	}
	if !accountExists {
		return false, apperrors.ErrCompanyNotFound
	}
	return unlocked, nil
}

func (s *Store) ListEntries(ctx context.Context, companyID string, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credit_ledger_entries WHERE company_id = ?`, companyID,
	).Scan(&total); err != nil {
		return nil, 0, apperrors.Storage("count ledger entries", err)
	}

	entries, err := s.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM credit_ledger_entries
		WHERE company_id = ? ORDER BY sequence DESC LIMIT ? OFFSET ?`,
		companyID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *Store) ListAllEntries(ctx context.Context, companyID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM credit_ledger_entries WHERE company_id = ? ORDER BY sequence ASC`, companyID)
}

func (s *Store) GetLedgerTotals(ctx context.Context, companyID string) (domain.LedgerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.LedgerTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN entry_type = 'admin_grant' THEN delta END), 0),
			COALESCE(-SUM(CASE WHEN entry_type = 'profile_unlock' THEN delta END), 0),
			COALESCE(-SUM(CASE WHEN entry_type IN ('admin_deduction', 'admin_reset') THEN delta END), 0),
			COUNT(*)
		FROM credit_ledger_entries WHERE company_id = ?`,
		companyID,
	).Scan(&totals.TotalGranted, &totals.TotalSpent, &totals.TotalDeducted, &totals.EntryCount)
	if err != nil {
		return domain.LedgerTotals{}, apperrors.Storage("aggregate ledger totals", err)
	}
	return totals, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage("list ledger entries", err)
	}
	defer rows.Close()

	out := []domain.LedgerEntry{}
	for rows.Next() {
		var (
			e                  domain.LedgerEntry
			entryType          string
			adminNote, related sql.NullString
			createdAt          string
		)
		if err := rows.Scan(
			&e.Sequence, &e.EntryID, &e.CompanyID, &entryType, &e.Delta, &e.ResultingBalance, &e.Reason, &adminNote,
			&e.ActorID, &related, &createdAt,
		); err != nil {
			return nil, apperrors.Storage("scan ledger entry", err)
		}
		e.EntryType = domain.EntryType(entryType)
		if adminNote.Valid {
			e.AdminNote = &adminNote.String
		}
		if related.Valid {
			e.RelatedProfileID = &related.String
		}
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("iterate ledger entries", err)
	}
	return out, nil
}

// Helper functions

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
