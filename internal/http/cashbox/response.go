package cashbox

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/pettycash/internal/cashbox"
)

type boxResponse struct {
	ID             uuid.UUID     `json:"id"`
	Custodian      string        `json:"custodian"`
	ExternalID     string        `json:"external_id,omitempty"`
	Concept        string        `json:"concept,omitempty"`
	InitialAmount  int64         `json:"initial_amount"`
	OpenedAt       time.Time     `json:"opened_at"`
	State          cashbox.State `json:"state"`
	ConsolidatedAt *time.Time    `json:"consolidated_at,omitempty"`
	DocumentRef    string        `json:"document_ref,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      *time.Time    `json:"updated_at,omitempty"`
}

type summaryResponse struct {
	boxResponse
	TotalSpent         int64   `json:"total_spent"`
	AvailableBalance   int64   `json:"available_balance"`
	ConsumedRatio      float64 `json:"consumed_ratio"`
	ReadyToConsolidate bool    `json:"ready_to_consolidate"`
}

type expenseResponse struct {
	ID         uuid.UUID `json:"id"`
	BoxID      uuid.UUID `json:"box_id"`
	Date       time.Time `json:"date"`
	Payee      string    `json:"payee"`
	ExternalID string    `json:"external_id,omitempty"`
	Concept    string    `json:"concept,omitempty"`
	CostCenter string    `json:"cost_center,omitempty"`
	Amount     int64     `json:"amount"`
	VoucherRef string    `json:"voucher_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toBoxResponse(box *cashbox.Box) boxResponse {
	return boxResponse{
		ID:             box.ID,
		Custodian:      box.Custodian,
		ExternalID:     box.ExternalID,
		Concept:        box.Concept,
		InitialAmount:  box.InitialAmount,
		OpenedAt:       box.OpenedAt,
		State:          box.State,
		ConsolidatedAt: box.ConsolidatedAt,
		DocumentRef:    box.DocumentRef,
		CreatedAt:      box.CreatedAt,
		UpdatedAt:      box.UpdatedAt,
	}
}

func toSummaryResponse(s *cashbox.Summary, threshold float64) summaryResponse {
	return summaryResponse{
		boxResponse:        toBoxResponse(s.Box),
		TotalSpent:         s.TotalSpent,
		AvailableBalance:   s.AvailableBalance,
		ConsumedRatio:      s.ConsumedRatio,
		ReadyToConsolidate: s.Box.State == cashbox.StateOpen && threshold > 0 && s.ConsumedRatio >= threshold,
	}
}

func toExpenseResponse(e *cashbox.Expense) expenseResponse {
	return expenseResponse{
		ID:         e.ID,
		BoxID:      e.BoxID,
		Date:       e.Date,
		Payee:      e.Payee,
		ExternalID: e.ExternalID,
		Concept:    e.Concept,
		CostCenter: e.CostCenter,
		Amount:     e.Amount,
		VoucherRef: e.VoucherRef,
		CreatedAt:  e.CreatedAt,
	}
}

// statusForError maps ledger errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, cashbox.ErrNonPositiveAmount),
		errors.Is(err, cashbox.ErrExceedsHardCap),
		errors.Is(err, cashbox.ErrMissingCustodian):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cashbox.ErrActiveBoxExists),
		errors.Is(err, cashbox.ErrNotOpen),
		errors.Is(err, cashbox.ErrBoxFrozen),
		errors.Is(err, cashbox.ErrAlreadyInDeficit),
		errors.Is(err, cashbox.ErrInsufficientBalance),
		errors.Is(err, cashbox.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, cashbox.ErrNoActiveBox),
		errors.Is(err, cashbox.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
