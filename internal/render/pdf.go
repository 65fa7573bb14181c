// Package render produces settlement artifacts from a box and its expense
// ledger: the archived PDF settlement document and an on-demand XLSX export.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/opsdesk/pettycash/internal/cashbox"
	"github.com/opsdesk/pettycash/internal/consolidation"
)

// PDF renders settlement documents with gofpdf.
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

func (p *PDF) Render(_ context.Context, box *cashbox.Box, expenses []*cashbox.Expense, totals consolidation.Totals) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Petty Cash Settlement")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", consolidation.SettlementPeriod(box)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Custodian: %s (%s)", box.Custodian, box.ExternalID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Concept: %s", box.Concept))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Opened: %s", box.OpenedAt.Format(time.DateOnly)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Initial amount: %s", money(box.InitialAmount)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(22, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Payee", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Concept", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Cost center", "1", 0, "C", false, 0, "")
	pdf.CellFormat(33, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)

	for _, e := range expenses {
		pdf.CellFormat(22, 6, e.Date.Format(time.DateOnly), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, e.Payee, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, e.Concept, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, e.CostCenter, "1", 0, "L", false, 0, "")
		pdf.CellFormat(33, 6, money(e.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total legalized: %s", money(totals.TotalLegalized)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Balance to return: %s", money(totals.BalanceToReturn)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Custodian owes: %s", money(totals.CustodianOwes)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func money(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
