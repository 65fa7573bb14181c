package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/opsdesk/pettycash/internal/cashbox"
)

// LedgerXLSX renders a box's expense ledger as an XLSX workbook for download
// from the dashboard.
func LedgerXLSX(box *cashbox.Box, expenses []*cashbox.Expense) ([]byte, error) {
	f := excelize.NewFile()

	summarySheet := "summary"
	ledgerSheet := "ledger"
	f.SetSheetName("Sheet1", summarySheet)

	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return nil, fmt.Errorf("creating ledger sheet: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Petty Cash Box")
	_ = f.SetCellValue(summarySheet, "A3", "Custodian")
	_ = f.SetCellValue(summarySheet, "B3", box.Custodian)
	_ = f.SetCellValue(summarySheet, "A4", "External ID")
	_ = f.SetCellValue(summarySheet, "B4", box.ExternalID)
	_ = f.SetCellValue(summarySheet, "A5", "Concept")
	_ = f.SetCellValue(summarySheet, "B5", box.Concept)
	_ = f.SetCellValue(summarySheet, "A6", "Opened")
	_ = f.SetCellValue(summarySheet, "B6", box.OpenedAt.Format(time.DateOnly))
	_ = f.SetCellValue(summarySheet, "A7", "Initial amount")
	_ = f.SetCellValue(summarySheet, "B7", float64(box.InitialAmount)/100.0)
	_ = f.SetCellValue(summarySheet, "A8", "State")
	_ = f.SetCellValue(summarySheet, "B8", string(box.State))

	_ = f.SetCellValue(ledgerSheet, "A1", "Date")
	_ = f.SetCellValue(ledgerSheet, "B1", "Payee")
	_ = f.SetCellValue(ledgerSheet, "C1", "External ID")
	_ = f.SetCellValue(ledgerSheet, "D1", "Concept")
	_ = f.SetCellValue(ledgerSheet, "E1", "Cost center")
	_ = f.SetCellValue(ledgerSheet, "F1", "Amount")

	for i, e := range expenses {
		row := i + 2
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", row), e.Date.Format(time.DateOnly))
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", row), e.Payee)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("C%d", row), e.ExternalID)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("D%d", row), e.Concept)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", row), e.CostCenter)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", row), float64(e.Amount)/100.0)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing xlsx: %w", err)
	}

	return buf.Bytes(), nil
}
