package costcenter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/pettycash/internal/costcenter"
)

type Handler struct {
	svc *costcenter.Service
}

func NewHandler(svc *costcenter.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Payee      string `json:"payee"`
	CostCenter string `json:"cost_center"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	payee := r.URL.Query().Get("payee")
	if payee == "" {
		http.Error(w, "payee query parameter is required", http.StatusBadRequest)
		return
	}

	costCenter, err := h.svc.Suggest(r.Context(), payee)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(suggestResponse{
		Payee:      payee,
		CostCenter: costCenter,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type learnRequest struct {
	PayeePattern string `json:"payee_pattern"`
	CostCenter   string `json:"cost_center"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.PayeePattern == "" || req.CostCenter == "" {
		http.Error(w, "payee_pattern and cost_center are required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Learn(r.Context(), req.PayeePattern, req.CostCenter); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
