package models

import "time"

// LedgerEntry is a row of the append-only credit_ledger_entries table.
type LedgerEntry struct {
	EntryID          string    `db:"entry_id"`
	Sequence         int64     `db:"sequence"`
	CompanyID        string    `db:"company_id"`
	EntryType        string    `db:"entry_type"`
	Delta            int64     `db:"delta"`
	ResultingBalance int64     `db:"resulting_balance"`
	Reason           string    `db:"reason"`
	AdminNote        *string   `db:"admin_note"`
	ActorID          string    `db:"actor_id"`
	RelatedProfileID *string   `db:"related_profile_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// UnlockedProfile is a row of the unlocked_profiles table.
type UnlockedProfile struct {
	CompanyID  string    `db:"company_id"`
	ProfileID  string    `db:"profile_id"`
	EntryID    string    `db:"entry_id"`
	UnlockedAt time.Time `db:"unlocked_at"`
}
