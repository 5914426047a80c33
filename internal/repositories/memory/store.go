// Package memory holds the in-process implementation of the repository
// ports. A single RWMutex serializes writers, which makes every ledger append
// atomic with its balance check. Data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	"github.com/pabg92/ned-project-bw-sub001/internal/utils/pagination"
)

// AppendHook runs inside an append before it becomes visible. Returning an
// error aborts the append.
type AppendHook func(ctx context.Context, entry domain.LedgerEntry) error

// Store implements the company, profile and ledger repositories in memory.
type Store struct {
	mu        sync.RWMutex
	companies map[string]domain.Company
	profiles  map[string]domain.CandidateProfile
	accounts  map[string]*domain.CreditAccount
	entries   map[string][]domain.LedgerEntry
	sequence  int64
	hook      AppendHook
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithAppendHook installs a hook that runs before each append commits.
func WithAppendHook(hook AppendHook) Option {
	return func(s *Store) { s.hook = hook }
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(options ...Option) *Store {
	s := &Store{
		companies: make(map[string]domain.Company),
		profiles:  make(map[string]domain.CandidateProfile),
		accounts:  make(map[string]*domain.CreditAccount),
		entries:   make(map[string][]domain.LedgerEntry),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{CompanyRepo: s, ProfileRepo: s, LedgerRepo: s}
}

var (
	_ portsrepo.CompanyRepositoryFacade = (*Store)(nil)
	_ portsrepo.ProfileRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade  = (*Store)(nil)
)

func copyAccount(acc *domain.CreditAccount) *domain.CreditAccount {
	out := *acc
	out.UnlockedProfileIDs = make(map[string]struct{}, len(acc.UnlockedProfileIDs))
	for id := range acc.UnlockedProfileIDs {
		out.UnlockedProfileIDs[id] = struct{}{}
	}
	return &out
}

func copyProfile(p domain.CandidateProfile) domain.CandidateProfile {
	p.Sectors = append([]string(nil), p.Sectors...)
	return p
}

// --- companies ---

func (s *Store) SaveCompany(ctx context.Context, company domain.Company, opening *domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[company.CompanyID]; exists {
		return nil, fmt.Errorf("company %s: %w", company.CompanyID, apperrors.ErrDuplicate)
	}
	acc := domain.NewCreditAccount(company.CompanyID)
	acc.UpdatedAt = company.CreatedAt

	var entry *domain.LedgerEntry
	if opening != nil {
		in := *opening
		in.CompanyID = company.CompanyID
		var err error
		if entry, err = s.appendLocked(ctx, &acc, in); err != nil {
			return nil, err
		}
	}

	s.companies[company.CompanyID] = company
	s.accounts[company.CompanyID] = &acc
	return entry, nil
}

func (s *Store) FindCompanyByID(_ context.Context, companyID string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.companies[companyID]
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}
	return &company, nil
}

func (s *Store) ListCompanies(_ context.Context, limit int, nextToken *string) ([]domain.CompanyWithBalance, *string, error) {
	cursor, err := pagination.DecodeCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.CompanyWithBalance, 0, len(s.companies))
	for _, c := range s.companies {
		if !cursor.Before(c.CreatedAt, c.CompanyID) {
			continue
		}
		rows = append(rows, domain.CompanyWithBalance{Company: c, Balance: s.accounts[c.CompanyID].Balance})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CompanyID > rows[j].CompanyID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	fetched := len(rows)
	if fetched > limit {
		rows = rows[:limit]
	}
	var next *string
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		next = pagination.NextToken(fetched, limit, last.CreatedAt, last.CompanyID)
	}
	return rows, next, nil
}

func (s *Store) UpdateEnrichment(_ context.Context, companyID string, enrichment domain.CompanyEnrichment, actorID string, now time.Time) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.companies[companyID]
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}
	company.Enrichment = enrichment
	company.LastUpdatedAt = now
	company.LastUpdatedBy = actorID
	s.companies[companyID] = company
	return &company, nil
}

// --- profiles ---

func (s *Store) SaveProfile(_ context.Context, profile domain.CandidateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.ProfileID]; exists {
		return fmt.Errorf("profile %s: %w", profile.ProfileID, apperrors.ErrDuplicate)
	}
	s.profiles[profile.ProfileID] = copyProfile(profile)
	return nil
}

func (s *Store) FindProfileByID(_ context.Context, profileID string) (*domain.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	p = copyProfile(p)
	return &p, nil
}

func (s *Store) FindProfilesByIDs(_ context.Context, profileIDs []string) ([]domain.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CandidateProfile, 0, len(profileIDs))
	for _, id := range profileIDs {
		if p, ok := s.profiles[id]; ok {
			out = append(out, copyProfile(p))
		}
	}
	return out, nil
}

func (s *Store) ListActiveProfiles(_ context.Context, limit int, nextToken *string) ([]domain.CandidateProfile, *string, error) {
	cursor, err := pagination.DecodeCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.CandidateProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if !p.IsActive || !cursor.Before(p.CreatedAt, p.ProfileID) {
			continue
		}
		rows = append(rows, copyProfile(p))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ProfileID > rows[j].ProfileID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	fetched := len(rows)
	if fetched > limit {
		rows = rows[:limit]
	}
	var next *string
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		next = pagination.NextToken(fetched, limit, last.CreatedAt, last.ProfileID)
	}
	return rows, next, nil
}

func (s *Store) UpdateProfileStatus(_ context.Context, profileID string, isActive, isCompleted bool, actorID string, now time.Time) (*domain.CandidateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	p.IsActive = isActive
	p.IsCompleted = isCompleted
	p.LastUpdatedAt = now
	p.LastUpdatedBy = actorID
	s.profiles[profileID] = p
	p = copyProfile(p)
	return &p, nil
}

// --- ledger ---

func (s *Store) AppendEntry(ctx context.Context, in domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[in.CompanyID]
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}
	return s.appendLocked(ctx, acc, in)
}

// appendLocked records in against acc. The caller holds s.mu for writing.
func (s *Store) appendLocked(ctx context.Context, acc *domain.CreditAccount, in domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	if in.EntryType == domain.EntryProfileUnlock && in.RelatedProfileID != nil {
		if _, ok := s.profiles[*in.RelatedProfileID]; !ok {
			return nil, apperrors.ErrProfileNotFound
		}
	}

	alreadyUnlocked := in.RelatedProfileID != nil && acc.IsUnlocked(*in.RelatedProfileID)
	delta, err := domain.PlanDelta(acc.Balance, alreadyUnlocked, in)
	if err != nil {
		return nil, err
	}

	entry := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		CompanyID:        in.CompanyID,
		Sequence:         s.sequence + 1,
		EntryType:        in.EntryType,
		Delta:            delta,
		ResultingBalance: acc.Balance + delta,
		Reason:           in.Reason,
		AdminNote:        in.AdminNote,
		ActorID:          in.ActorID,
		CreatedAt:        s.now(),
	}
	if in.EntryType == domain.EntryProfileUnlock {
		entry.RelatedProfileID = in.RelatedProfileID
	}

	if s.hook != nil {
		if err := s.hook(ctx, entry); err != nil {
			return nil, apperrors.Storage("append hook", err)
		}
	}

	// Nothing above mutated the store, so an error up to here leaves no trace.
	s.sequence = entry.Sequence
	acc.Apply(entry)
	s.entries[in.CompanyID] = append(s.entries[in.CompanyID], entry)
	return &entry, nil
}

func (s *Store) GetCreditAccount(_ context.Context, companyID string) (*domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[companyID]
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}
	return copyAccount(acc), nil
}

func (s *Store) IsProfileUnlocked(_ context.Context, companyID, profileID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[companyID]
	if !ok {
		return false, apperrors.ErrCompanyNotFound
	}
	return acc.IsUnlocked(profileID), nil
}

func (s *Store) ListEntries(_ context.Context, companyID string, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[companyID]
	total := int64(len(all))
	out := make([]domain.LedgerEntry, 0, limit)
	// Entries are stored oldest first; walk backwards for most-recent-first.
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, total, nil
}

func (s *Store) ListAllEntries(_ context.Context, companyID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.LedgerEntry(nil), s.entries[companyID]...), nil
}

func (s *Store) GetLedgerTotals(_ context.Context, companyID string) (domain.LedgerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.LedgerTotals
	for _, e := range s.entries[companyID] {
		totals.Add(e)
	}
	return totals, nil
}
