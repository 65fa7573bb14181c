package consolidation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opsdesk/pettycash/internal/cashbox"
	"github.com/opsdesk/pettycash/internal/consolidation"
)

type Handler struct {
	svc *consolidation.Service
}

func NewHandler(svc *consolidation.Service) *Handler {
	return &Handler{svc: svc}
}

// BoxRoutes mounts under /boxes alongside the ledger endpoints.
func (h *Handler) BoxRoutes(r chi.Router) {
	r.Post("/{id}/consolidate", h.consolidate)
}

// StatusRoutes mounts under /consolidation.
func (h *Handler) StatusRoutes(r chi.Router) {
	r.Get("/status", h.status)
}

type resultResponse struct {
	BoxID               uuid.UUID     `json:"box_id"`
	State               cashbox.State `json:"state"`
	TotalLegalized      int64         `json:"total_legalized"`
	BalanceToReturn     int64         `json:"balance_to_return"`
	CustodianOwes       int64         `json:"custodian_owes"`
	DocumentRef         string        `json:"document_ref"`
	ConsolidatedAt      *time.Time    `json:"consolidated_at,omitempty"`
	AlreadyConsolidated bool          `json:"already_consolidated,omitempty"`
}

func (h *Handler) consolidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Consolidate(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, cashbox.ErrNotFound):
			http.Error(w, "box not found", http.StatusNotFound)
		case errors.Is(err, cashbox.ErrConcurrentModification):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, consolidation.ErrDocumentGeneration),
			errors.Is(err, consolidation.ErrArchivePersist):
			// The box stays frozen; the operator retries once the
			// collaborator recovers.
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	resp := resultResponse{
		BoxID:               result.Box.ID,
		State:               result.Box.State,
		TotalLegalized:      result.Totals.TotalLegalized,
		BalanceToReturn:     result.Totals.BalanceToReturn,
		CustodianOwes:       result.Totals.CustodianOwes,
		DocumentRef:         result.DocumentRef,
		ConsolidatedAt:      result.Box.ConsolidatedAt,
		AlreadyConsolidated: result.AlreadyConsolidated,
	}

	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Incomplete bool           `json:"incomplete"`
	BoxID      *uuid.UUID     `json:"box_id,omitempty"`
	State      *cashbox.State `json:"state,omitempty"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := statusResponse{Incomplete: status.Incomplete}
	if status.ActiveBox != nil {
		resp.BoxID = &status.ActiveBox.ID
		resp.State = &status.ActiveBox.State
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
