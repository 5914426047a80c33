package dto

import (
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// AdjustCreditsRequest is the body of the admin grant and deduct endpoints.
// Amount and reason are validated by the service so the typed
// InvalidAmount and MissingReason codes reach the caller.
type AdjustCreditsRequest struct {
	Amount    int64   `json:"amount"`
	Reason    string  `json:"reason" binding:"max=500"`
	AdminNote *string `json:"adminNote" binding:"omitempty,max=2000"`
}

// ResetRequest is the optional body of the admin reset endpoints.
type ResetRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// HistoryParams defines the query parameters of the history endpoint.
type HistoryParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// LedgerEntryResponse defines the data returned for a ledger entry.
type LedgerEntryResponse struct {
	EntryID          string    `json:"entryID"`
	CompanyID        string    `json:"companyID"`
	EntryType        string    `json:"entryType"`
	Delta            int64     `json:"delta"`
	ResultingBalance int64     `json:"resultingBalance"`
	Reason           string    `json:"reason"`
	AdminNote        *string   `json:"adminNote,omitempty"`
	ActorID          string    `json:"actorID"`
	RelatedProfileID *string   `json:"relatedProfileID,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AdjustmentResponse is the success envelope of admin ledger operations.
type AdjustmentResponse struct {
	Entry   LedgerEntryResponse `json:"entry"`
	Balance int64               `json:"balance"`
}

// HistoryResponse wraps one page of ledger history.
type HistoryResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Total   int64                 `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// SummaryResponse defines the credit summary of a company.
type SummaryResponse struct {
	CompanyID     string `json:"companyID"`
	Balance       int64  `json:"balance"`
	UnlockedCount int    `json:"unlockedCount"`
	TotalGranted  int64  `json:"totalGranted"`
	TotalSpent    int64  `json:"totalSpent"`
	TotalDeducted int64  `json:"totalDeducted"`
	EntryCount    int64  `json:"entryCount"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to LedgerEntryResponse DTO
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:          e.EntryID,
		CompanyID:        e.CompanyID,
		EntryType:        string(e.EntryType),
		Delta:            e.Delta,
		ResultingBalance: e.ResultingBalance,
		Reason:           e.Reason,
		AdminNote:        e.AdminNote,
		ActorID:          e.ActorID,
		RelatedProfileID: e.RelatedProfileID,
		CreatedAt:        e.CreatedAt,
	}
}

// ToAdjustmentResponse wraps an appended entry with the balance it left.
func ToAdjustmentResponse(e *domain.LedgerEntry) AdjustmentResponse {
	return AdjustmentResponse{Entry: ToLedgerEntryResponse(e), Balance: e.ResultingBalance}
}

// ToHistoryResponse converts a ledger page.
func ToHistoryResponse(page *domain.LedgerPage) HistoryResponse {
	entries := make([]LedgerEntryResponse, len(page.Entries))
	for i := range page.Entries {
		entries[i] = ToLedgerEntryResponse(&page.Entries[i])
	}
	return HistoryResponse{Entries: entries, Total: page.Total, Limit: page.Limit, Offset: page.Offset}
}

// ToSummaryResponse converts a credit summary.
func ToSummaryResponse(s *domain.CreditSummary) SummaryResponse {
	return SummaryResponse{
		CompanyID:     s.CompanyID,
		Balance:       s.Balance,
		UnlockedCount: s.UnlockedCount,
		TotalGranted:  s.TotalGranted,
		TotalSpent:    s.TotalSpent,
		TotalDeducted: s.TotalDeducted,
		EntryCount:    s.EntryCount,
	}
}

// BalanceResponse is the lightweight balance view shown to a company.
type BalanceResponse struct {
	CompanyID          string   `json:"companyID"`
	Balance            int64    `json:"balance"`
	UnlockedProfileIDs []string `json:"unlockedProfileIDs"`
}
