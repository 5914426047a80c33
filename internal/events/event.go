// Package events carries committed ledger entries to Kafka, either directly
// after commit or through a River job enqueued in the append transaction.
package events

import (
	"encoding/json"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

var jsonMarshal = json.Marshal

type EventType string

const LedgerEntryRecorded EventType = "ledger_entry_recorded"

// Event is the message value written to the ledger topic.
type Event struct {
	Type       EventType          `json:"type"`
	Entry      domain.LedgerEntry `json:"entry"`
	OccurredAt time.Time          `json:"occurredAt"`
}

func newEvent(entry domain.LedgerEntry) Event {
	return Event{Type: LedgerEntryRecorded, Entry: entry, OccurredAt: entry.CreatedAt}
}
