package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/pettycash/internal/cashbox"
	"github.com/opsdesk/pettycash/internal/importcsv"
)

type Handler struct {
	svc *importcsv.Service
}

func NewHandler(svc *importcsv.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type expenseDTO struct {
	Payee  string `json:"payee"`
	Amount int64  `json:"amount"`
	Date   string `json:"date"`
}

type importResponse struct {
	Registered int          `json:"registered"`
	Expenses   []expenseDTO `json:"expenses"`
	FailedRow  int          `json:"failed_row,omitempty"`
	Error      string       `json:"error,omitempty"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importResponse{
		Registered: len(result.Registered),
		Expenses:   toDTOs(result.Registered),
	}

	status := http.StatusCreated
	if result.Failed != nil {
		status = http.StatusConflict
		resp.FailedRow = result.Failed.Row
		resp.Error = result.Failed.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toDTOs(expenses []*cashbox.Expense) []expenseDTO {
	dtos := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, expenseDTO{
			Payee:  e.Payee,
			Amount: e.Amount,
			Date:   e.Date.Format("2006-01-02"),
		})
	}

	return dtos
}
