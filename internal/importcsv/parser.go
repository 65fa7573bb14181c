package importcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opsdesk/pettycash/internal/cashbox"
	enc "github.com/opsdesk/pettycash/internal/encoding"
)

// Expected header columns. cost_center and voucher are optional; the rest are
// required for a file to be accepted.
const (
	colDate       = "date"
	colPayee      = "payee"
	colExternalID = "tax_id"
	colConcept    = "concept"
	colCostCenter = "cost_center"
	colAmount     = "amount"
	colVoucher    = "voucher"
)

var requiredCols = []string{colDate, colPayee, colConcept, colAmount}

var dateLayouts = []string{time.DateOnly, "02/01/2006", "2/1/2006"}

// Parse reads the dashboard's expense CSV template (semicolon-separated,
// header row required) and produces registration params in file order.
func Parse(r io.Reader) ([]cashbox.RegisterExpenseParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	cols, err := indexHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var params []cashbox.RegisterExpenseParams

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		if blankRow(row) {
			continue
		}

		date, err := parseDate(cellValue(row, cols[colDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		payee := cellValue(row, cols[colPayee])
		if payee == "" {
			return nil, fmt.Errorf("row %d: missing payee", rowNum)
		}

		amount, err := parseAmount(cellValue(row, cols[colAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		params = append(params, cashbox.RegisterExpenseParams{
			Date:       date,
			Payee:      payee,
			ExternalID: optional(row, cols, colExternalID),
			Concept:    cellValue(row, cols[colConcept]),
			CostCenter: optional(row, cols, colCostCenter),
			Amount:     amount,
			VoucherRef: optional(row, cols, colVoucher),
		})
	}

	return params, nil
}

type colIndex map[string]int

func indexHeader(header []string) (colIndex, error) {
	cols := make(colIndex)

	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name != "" {
			cols[name] = i
		}
	}

	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header", name)
		}
	}

	return cols, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func optional(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok {
		return ""
	}

	return cellValue(row, idx)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseAmount converts an amount cell to cents. Both "1.400.000,50" (thousand
// dots, decimal comma) and "1400000.50" are accepted.
func parseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(s, " ", "")
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q", s)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
