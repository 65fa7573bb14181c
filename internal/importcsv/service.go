package importcsv

import (
	"context"
	"fmt"
	"io"

	"github.com/opsdesk/pettycash/internal/cashbox"
)

// registrar is the slice of the expense service the importer needs.
type registrar interface {
	RegisterExpense(ctx context.Context, params cashbox.RegisterExpenseParams) (*cashbox.Expense, error)
}

// suggester fills in missing cost centers from learned payee mappings.
type suggester interface {
	Suggest(ctx context.Context, payee string) (string, error)
}

type Service struct {
	expenses    registrar
	costCenters suggester
}

func NewService(expenses registrar, costCenters suggester) *Service {
	return &Service{expenses: expenses, costCenters: costCenters}
}

// RowError reports the first row the ledger rejected.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result is the outcome of a bulk import. Registered expenses stand even when
// a later row fails; the ledger is append-only and rows already admitted were
// valid at the time.
type Result struct {
	Registered []*cashbox.Expense
	Failed     *RowError
}

// Import parses the CSV and registers each row against the open box in file
// order. Every row goes through normal expense validation, so the balance
// invariants hold row by row; the import stops at the first rejected row.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	params, err := Parse(r)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for i, p := range params {
		if p.CostCenter == "" && s.costCenters != nil {
			if suggested, err := s.costCenters.Suggest(ctx, p.Payee); err == nil {
				p.CostCenter = suggested
			}
		}

		expense, err := s.expenses.RegisterExpense(ctx, p)
		if err != nil {
			result.Failed = &RowError{Row: i + 2, Err: err}
			return result, nil
		}

		result.Registered = append(result.Registered, expense)
	}

	return result, nil
}
