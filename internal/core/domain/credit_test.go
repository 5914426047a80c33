package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPlanDelta(t *testing.T) {
	tests := []struct {
		name            string
		balance         int64
		alreadyUnlocked bool
		input           domain.LedgerEntryInput
		want            int64
		wantErr         error
	}{
		{
			name:    "grant adds amount",
			balance: 3,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminGrant, Amount: 5},
			want:    5,
		},
		{
			name:    "grant rejects zero",
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminGrant},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "grant up to the largest balance",
			balance: 5,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminGrant, Amount: math.MaxInt64 - 5},
			want:    math.MaxInt64 - 5,
		},
		{
			name:    "grant past the largest balance",
			balance: 5,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminGrant, Amount: math.MaxInt64},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "deduction within balance",
			balance: 4,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminDeduction, Amount: 4},
			want:    -4,
		},
		{
			name:    "deduction beyond balance",
			balance: 2,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminDeduction, Amount: 3},
			wantErr: apperrors.ErrInsufficientCredits,
		},
		{
			name:    "deduction rejects negative amount",
			balance: 2,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminDeduction, Amount: -1},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "reset brings balance to zero",
			balance: 7,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryAdminReset},
			want:    -7,
		},
		{
			name:  "reset of empty balance is zero delta",
			input: domain.LedgerEntryInput{EntryType: domain.EntryAdminReset},
			want:  0,
		},
		{
			name:    "unlock costs one credit",
			balance: 1,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryProfileUnlock, RelatedProfileID: strPtr("p-1")},
			want:    -1,
		},
		{
			name:    "unlock without credits",
			input:   domain.LedgerEntryInput{EntryType: domain.EntryProfileUnlock, RelatedProfileID: strPtr("p-1")},
			wantErr: apperrors.ErrInsufficientCredits,
		},
		{
			name:            "unlock of unlocked profile",
			balance:         5,
			alreadyUnlocked: true,
			input:           domain.LedgerEntryInput{EntryType: domain.EntryProfileUnlock, RelatedProfileID: strPtr("p-1")},
			wantErr:         apperrors.ErrAlreadyUnlocked,
		},
		{
			name:    "unlock needs a profile",
			balance: 5,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryProfileUnlock},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "unlock reset leaves balance",
			balance: 5,
			input:   domain.LedgerEntryInput{EntryType: domain.EntryUnlockReset},
			want:    0,
		},
		{
			name:    "unknown type",
			input:   domain.LedgerEntryInput{EntryType: "refund"},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.PlanDelta(tt.balance, tt.alreadyUnlocked, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplay(t *testing.T) {
	now := time.Now()
	entries := []domain.LedgerEntry{
		{EntryType: domain.EntryAdminGrant, Delta: 10, CreatedAt: now},
		{EntryType: domain.EntryProfileUnlock, Delta: -1, RelatedProfileID: strPtr("a"), CreatedAt: now.Add(time.Second)},
		{EntryType: domain.EntryProfileUnlock, Delta: -1, RelatedProfileID: strPtr("b"), CreatedAt: now.Add(2 * time.Second)},
		{EntryType: domain.EntryUnlockReset, Delta: 0, CreatedAt: now.Add(3 * time.Second)},
		{EntryType: domain.EntryProfileUnlock, Delta: -1, RelatedProfileID: strPtr("a"), CreatedAt: now.Add(4 * time.Second)},
		{EntryType: domain.EntryAdminDeduction, Delta: -2, CreatedAt: now.Add(5 * time.Second)},
	}

	acc := domain.Replay("c-1", entries)

	assert.Equal(t, "c-1", acc.CompanyID)
	assert.Equal(t, int64(5), acc.Balance)
	assert.Equal(t, []string{"a"}, acc.UnlockedList())
	assert.True(t, acc.IsUnlocked("a"))
	assert.False(t, acc.IsUnlocked("b"))
	assert.Equal(t, now.Add(5*time.Second), acc.UpdatedAt)
}

func TestReplayOfEmptyLedger(t *testing.T) {
	acc := domain.Replay("c-1", nil)

	assert.Zero(t, acc.Balance)
	assert.Empty(t, acc.UnlockedList())
}

func TestSameState(t *testing.T) {
	a := domain.NewCreditAccount("c")
	b := domain.NewCreditAccount("c")
	assert.True(t, domain.SameState(a, b))

	a.Apply(domain.LedgerEntry{EntryType: domain.EntryAdminGrant, Delta: 2})
	assert.False(t, domain.SameState(a, b))

	b.Apply(domain.LedgerEntry{EntryType: domain.EntryAdminGrant, Delta: 2})
	a.Apply(domain.LedgerEntry{EntryType: domain.EntryProfileUnlock, Delta: -1, RelatedProfileID: strPtr("x")})
	b.Apply(domain.LedgerEntry{EntryType: domain.EntryProfileUnlock, Delta: -1, RelatedProfileID: strPtr("y")})
	assert.False(t, domain.SameState(a, b))
}

func TestLedgerTotals(t *testing.T) {
	var totals domain.LedgerTotals
	for _, e := range []domain.LedgerEntry{
		{EntryType: domain.EntryAdminGrant, Delta: 10},
		{EntryType: domain.EntryProfileUnlock, Delta: -1},
		{EntryType: domain.EntryProfileUnlock, Delta: -1},
		{EntryType: domain.EntryAdminDeduction, Delta: -3},
		{EntryType: domain.EntryAdminReset, Delta: -5},
		{EntryType: domain.EntryUnlockReset},
	} {
		totals.Add(e)
	}

	assert.Equal(t, domain.LedgerTotals{TotalGranted: 10, TotalSpent: 2, TotalDeducted: 8, EntryCount: 6}, totals)
}

func TestCandidateProfileViewFor(t *testing.T) {
	p := domain.CandidateProfile{
		ProfileID:    "3f2a9c1e-aaaa-bbbb-cccc-000000000000",
		DisplayName:  "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "+44 1234",
		LinkedInURL:  "https://linkedin.com/in/jane",
		Headline:     "Chair, audit committee",
		IsAnonymized: true,
	}

	locked := p.ViewFor(false)
	assert.False(t, locked.Unlocked)
	assert.Equal(t, "Candidate 3F2A9C1E", locked.DisplayName)
	assert.Empty(t, locked.Email)
	assert.Empty(t, locked.Phone)
	assert.Empty(t, locked.LinkedInURL)
	assert.Equal(t, "Chair, audit committee", locked.Headline)

	unlocked := p.ViewFor(true)
	assert.True(t, unlocked.Unlocked)
	assert.Equal(t, "Jane Doe", unlocked.DisplayName)
	assert.Equal(t, "jane@example.com", unlocked.Email)

	p.IsAnonymized = false
	assert.Equal(t, "Jane Doe", p.ViewFor(false).DisplayName)
}
