package consolidation

import (
	"errors"

	"github.com/opsdesk/pettycash/internal/cashbox"
)

var (
	// ErrDocumentGeneration means the settlement document could not be
	// rendered. The box stays frozen; the attempt is retryable.
	ErrDocumentGeneration = errors.New("settlement document generation failed")
	// ErrArchivePersist means the rendered document could not be archived.
	// The box stays frozen; the attempt is retryable.
	ErrArchivePersist = errors.New("archiving settlement document failed")
)

// Totals are the settlement figures computed from the frozen expense set.
type Totals struct {
	TotalLegalized  int64
	BalanceToReturn int64
	CustodianOwes   int64
}

func computeTotals(box *cashbox.Box, expenses []*cashbox.Expense) Totals {
	var total int64
	for _, e := range expenses {
		total += e.Amount
	}

	t := Totals{TotalLegalized: total}

	if diff := box.InitialAmount - total; diff > 0 {
		t.BalanceToReturn = diff
	} else {
		t.CustodianOwes = -diff
	}

	return t
}

// Result is the outcome of a successful (or already completed) consolidation.
type Result struct {
	Box                 *cashbox.Box
	Totals              Totals
	DocumentRef         string
	AlreadyConsolidated bool
}

// Status describes whether a consolidation is mid-flight. A box stuck in
// consolidating has been frozen but not yet committed; operators resume it by
// calling Consolidate again, never by reverting the box to open.
type Status struct {
	ActiveBox  *cashbox.Box
	Incomplete bool
}
