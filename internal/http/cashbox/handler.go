package cashbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opsdesk/pettycash/internal/cashbox"
	"github.com/opsdesk/pettycash/internal/render"
)

type Handler struct {
	svc       *cashbox.Service
	threshold float64
}

// NewHandler wires the box/expense endpoints. threshold is the consumed
// fraction at which the current-box response flags readiness to consolidate.
func NewHandler(svc *cashbox.Service, threshold float64) *Handler {
	return &Handler{svc: svc, threshold: threshold}
}

func (h *Handler) BoxRoutes(r chi.Router) {
	r.Post("/", h.open)
	r.Get("/", h.list)
	r.Get("/current", h.current)
	r.Get("/{id}", h.get)
	r.Get("/{id}/expenses", h.expenses)
	r.Get("/{id}/ledger.xlsx", h.ledgerXLSX)
}

func (h *Handler) ExpenseRoutes(r chi.Router) {
	r.Post("/", h.register)
}

type openBoxRequest struct {
	Custodian     string     `json:"custodian"`
	ExternalID    string     `json:"external_id"`
	Concept       string     `json:"concept"`
	InitialAmount int64      `json:"initial_amount"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := cashbox.OpenBoxParams{
		Custodian:     req.Custodian,
		ExternalID:    req.ExternalID,
		Concept:       req.Concept,
		InitialAmount: req.InitialAmount,
	}
	if req.OpenedAt != nil {
		params.OpenedAt = *req.OpenedAt
	}

	box, err := h.svc.OpenBox(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusCreated, toBoxResponse(box))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.svc.ListBoxes(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]boxResponse, len(boxes))
	for i, box := range boxes {
		resp[i] = toBoxResponse(box)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	box, err := h.svc.CurrentBox(r.Context())
	if err != nil {
		if errors.Is(err, cashbox.ErrNoActiveBox) {
			http.Error(w, "no active box", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.writeSummary(w, r, box)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	box, ok := h.loadBox(w, r)
	if !ok {
		return
	}

	h.writeSummary(w, r, box)
}

func (h *Handler) writeSummary(w http.ResponseWriter, r *http.Request, box *cashbox.Box) {
	summary, err := h.svc.Summarize(r.Context(), box)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary, h.threshold))
}

func (h *Handler) expenses(w http.ResponseWriter, r *http.Request) {
	box, ok := h.loadBox(w, r)
	if !ok {
		return
	}

	expenses, err := h.svc.Expenses(r.Context(), box.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ledgerXLSX(w http.ResponseWriter, r *http.Request) {
	box, ok := h.loadBox(w, r)
	if !ok {
		return
	}

	expenses, err := h.svc.Expenses(r.Context(), box.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data, err := render.LedgerXLSX(box, expenses)
	if err != nil {
		slog.Error("failed to render ledger xlsx", "box_id", box.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	filename := fmt.Sprintf("ledger_%s.xlsx", box.OpenedAt.Format("2006_01"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write ledger xlsx", "error", err)
	}
}

type registerExpenseRequest struct {
	Date       *time.Time `json:"date,omitempty"`
	Payee      string     `json:"payee"`
	ExternalID string     `json:"external_id"`
	Concept    string     `json:"concept"`
	CostCenter string     `json:"cost_center"`
	Amount     int64      `json:"amount"`
	VoucherRef string     `json:"voucher_ref"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := cashbox.RegisterExpenseParams{
		Payee:      req.Payee,
		ExternalID: req.ExternalID,
		Concept:    req.Concept,
		CostCenter: req.CostCenter,
		Amount:     req.Amount,
		VoucherRef: req.VoucherRef,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	expense, err := h.svc.RegisterExpense(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (h *Handler) loadBox(w http.ResponseWriter, r *http.Request) (*cashbox.Box, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	box, err := h.svc.GetBox(r.Context(), id)
	if err != nil {
		if errors.Is(err, cashbox.ErrNotFound) {
			http.Error(w, "box not found", http.StatusNotFound)
			return nil, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	return box, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
