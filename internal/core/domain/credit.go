package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
)

// EntryType names the business event a ledger entry records.
type EntryType string

const (
	EntryAdminGrant     EntryType = "admin_grant"
	EntryAdminDeduction EntryType = "admin_deduction"
	EntryAdminReset     EntryType = "admin_reset"
	EntryProfileUnlock  EntryType = "profile_unlock"
	EntryUnlockReset    EntryType = "unlock_reset"
)

// SystemActorID is recorded as the actor of entries written on behalf of a company action.
const SystemActorID = "system"

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryAdminGrant, EntryAdminDeduction, EntryAdminReset, EntryProfileUnlock, EntryUnlockReset:
		return true
	}
	return false
}

// IsAdmin reports whether the entry type is written by the admin adjustment flow.
func (t EntryType) IsAdmin() bool {
	return t != EntryProfileUnlock && t.Valid()
}

// LedgerEntry is an immutable record of one credit-affecting event.
type LedgerEntry struct {
	EntryID          string    `json:"entryID"`
	CompanyID        string    `json:"companyID"`
	Sequence         int64     `json:"sequence"` // monotonically increasing per store, orders entries created in the same instant
	EntryType        EntryType `json:"entryType"`
	Delta            int64     `json:"delta"`
	ResultingBalance int64     `json:"resultingBalance"`
	Reason           string    `json:"reason"`
	AdminNote        *string   `json:"adminNote,omitempty"`
	ActorID          string    `json:"actorID"`
	RelatedProfileID *string   `json:"relatedProfileID,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// LedgerEntryInput is what a caller asks the ledger store to append. Delta is
// only meaningful for grant and deduction entries; the store derives it for the
// other types from the locked account state.
type LedgerEntryInput struct {
	CompanyID        string
	EntryType        EntryType
	Amount           int64
	Reason           string
	AdminNote        *string
	ActorID          string
	RelatedProfileID *string
}

// CreditAccount is the materialized (balance, unlocked set) pair of a company.
type CreditAccount struct {
	CompanyID          string              `json:"companyID"`
	Balance            int64               `json:"balance"`
	UnlockedProfileIDs map[string]struct{} `json:"-"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// NewCreditAccount returns the empty account every company starts with.
func NewCreditAccount(companyID string) CreditAccount {
	return CreditAccount{CompanyID: companyID, UnlockedProfileIDs: map[string]struct{}{}}
}

// IsUnlocked reports whether profileID is in the unlocked set.
func (a CreditAccount) IsUnlocked(profileID string) bool {
	_, ok := a.UnlockedProfileIDs[profileID]
	return ok
}

// UnlockedList returns the unlocked set as a sorted slice.
func (a CreditAccount) UnlockedList() []string {
	out := make([]string, 0, len(a.UnlockedProfileIDs))
	for id := range a.UnlockedProfileIDs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PlanDelta resolves the delta an input produces against the current balance.
// alreadyUnlocked is only consulted for profile_unlock entries. Every store
// calls this while holding the company's write lock, so the check and the
// write it guards are one atomic step.
func PlanDelta(balance int64, alreadyUnlocked bool, in LedgerEntryInput) (int64, error) {
	switch in.EntryType {
	case EntryAdminGrant:
		if in.Amount <= 0 {
			return 0, apperrors.ErrInvalidAmount
		}
		if in.Amount > math.MaxInt64-balance {
			return 0, fmt.Errorf("%w: balance %d cannot take %d more credits", apperrors.ErrInvalidAmount, balance, in.Amount)
		}
		return in.Amount, nil
	case EntryAdminDeduction:
		if in.Amount <= 0 {
			return 0, apperrors.ErrInvalidAmount
		}
		if balance < in.Amount {
			return 0, fmt.Errorf("%w: balance %d, requested %d", apperrors.ErrInsufficientCredits, balance, in.Amount)
		}
		return -in.Amount, nil
	case EntryAdminReset:
		return -balance, nil
	case EntryProfileUnlock:
		if in.RelatedProfileID == nil || *in.RelatedProfileID == "" {
			return 0, fmt.Errorf("%w: profile_unlock requires a related profile", apperrors.ErrValidation)
		}
		if alreadyUnlocked {
			return 0, apperrors.ErrAlreadyUnlocked
		}
		if balance < 1 {
			return 0, fmt.Errorf("%w: balance %d", apperrors.ErrInsufficientCredits, balance)
		}
		return -1, nil
	case EntryUnlockReset:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unknown entry type %q", apperrors.ErrValidation, in.EntryType)
	}
}

// Apply folds a recorded entry into the account.
func (a *CreditAccount) Apply(e LedgerEntry) {
	if a.UnlockedProfileIDs == nil {
		a.UnlockedProfileIDs = map[string]struct{}{}
	}
	a.Balance += e.Delta
	switch e.EntryType {
	case EntryProfileUnlock:
		if e.RelatedProfileID != nil {
			a.UnlockedProfileIDs[*e.RelatedProfileID] = struct{}{}
		}
	case EntryUnlockReset:
		a.UnlockedProfileIDs = map[string]struct{}{}
	}
	if e.CreatedAt.After(a.UpdatedAt) {
		a.UpdatedAt = e.CreatedAt
	}
}

// Replay folds entries, oldest first, starting from the empty account.
func Replay(companyID string, entries []LedgerEntry) CreditAccount {
	acc := NewCreditAccount(companyID)
	for _, e := range entries {
		acc.Apply(e)
	}
	return acc
}

// SameState reports whether two accounts hold the same balance and unlocked set.
func SameState(a, b CreditAccount) bool {
	if a.Balance != b.Balance || len(a.UnlockedProfileIDs) != len(b.UnlockedProfileIDs) {
		return false
	}
	for id := range a.UnlockedProfileIDs {
		if _, ok := b.UnlockedProfileIDs[id]; !ok {
			return false
		}
	}
	return true
}

// LedgerTotals aggregates a company's entries by type.
type LedgerTotals struct {
	TotalGranted  int64 `json:"totalGranted"`
	TotalSpent    int64 `json:"totalSpent"`
	TotalDeducted int64 `json:"totalDeducted"`
	EntryCount    int64 `json:"entryCount"`
}

// Add accumulates one entry into the totals.
func (t *LedgerTotals) Add(e LedgerEntry) {
	t.EntryCount++
	switch e.EntryType {
	case EntryAdminGrant:
		t.TotalGranted += e.Delta
	case EntryProfileUnlock:
		t.TotalSpent += -e.Delta
	case EntryAdminDeduction, EntryAdminReset:
		t.TotalDeducted += -e.Delta
	}
}

// CreditSummary is the reporting view of a company's credits.
type CreditSummary struct {
	CompanyID     string `json:"companyID"`
	Balance       int64  `json:"balance"`
	UnlockedCount int    `json:"unlockedCount"`
	LedgerTotals
}

// LedgerVerification is the outcome of replaying a company's ledger against
// its materialized account.
type LedgerVerification struct {
	CompanyID           string   `json:"companyID"`
	Consistent          bool     `json:"consistent"`
	MaterializedBalance int64    `json:"materializedBalance"`
	ReplayedBalance     int64    `json:"replayedBalance"`
	MaterializedSet     []string `json:"materializedUnlocked"`
	ReplayedSet         []string `json:"replayedUnlocked"`
	EntryCount          int      `json:"entryCount"`
}

// LedgerPage is one page of a company's history, most recent first.
type LedgerPage struct {
	Entries []LedgerEntry `json:"entries"`
	Total   int64         `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

// UnlockResult is what a company receives after unlocking a profile.
type UnlockResult struct {
	Profile CandidateProfile `json:"profile"`
	Charged bool             `json:"charged"`
	Balance int64            `json:"balance"`
	Entry   *LedgerEntry     `json:"entry,omitempty"`
}
