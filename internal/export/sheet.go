package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the only sheet in the exported workbook.
const SheetName = "Invoice"

// Rows returns the workbook content, one slice per row. The order is fixed:
// invoice header pairs, blank, client pairs, blank, item header, items,
// blank, then Subtotal, Discount %, Tax % and Total with the value in the
// last column. Amounts are decimals, written as numeric cells carrying every
// digit; nothing is currency-formatted.
func Rows(d *InvoiceDetails) [][]any {
	rows := [][]any{
		{"Invoice Number", d.InvoiceNumber},
		{"Issue Date", formatDate(d.IssueDate)},
		{"Due Date", formatDate(d.DueDate)},
		{"Status", string(d.Status)},
		{},
		{"Client", d.Client.Name},
		{"Email", d.Client.Email},
		{"Phone", d.Client.Phone},
		{"Address", d.Client.Address},
		{},
		{"Description", "Quantity", "Rate", "Amount"},
	}
	for _, it := range d.Items {
		rows = append(rows, []any{it.Description, it.Quantity, it.Rate, it.Amount})
	}
	rows = append(rows,
		[]any{},
		[]any{nil, nil, "Subtotal", d.Subtotal},
		[]any{nil, nil, "Discount %", d.Discount},
		[]any{nil, nil, "Tax %", d.Tax},
		[]any{nil, nil, "Total", d.Total},
	)
	return rows
}

// setRow writes one row. Decimals go through SetCellDefault: the cell is
// numeric and keeps the exact literal, past float64's 15 significant digits.
func setRow(f *excelize.File, row int, values []any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if d, ok := v.(decimal.Decimal); ok {
			err = f.SetCellDefault(SheetName, cell, d.String())
		} else {
			err = f.SetCellValue(SheetName, cell, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderSpreadsheet validates d and writes Rows into a single-sheet workbook.
func RenderSpreadsheet(d *InvoiceDetails) ([]byte, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	for i, row := range Rows(d) {
		if err := setRow(f, i+1, row); err != nil {
			return nil, fmt.Errorf("export: write row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(SheetName, "A", "A", 32)
	_ = f.SetColWidth(SheetName, "B", "D", 14)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook %s: %w", d.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// ReadSpreadsheet returns the raw cell values of the exported sheet, blank
// rows included, without applying number formats.
func ReadSpreadsheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("export: open workbook: %w", err)
	}
	defer f.Close()
	return f.GetRows(SheetName, excelize.Options{RawCellValue: true})
}
