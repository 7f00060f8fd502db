// Package export writes history lists as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ale3590/fares/internal/history"
	"github.com/ale3590/fares/internal/money"
)

const sheet = "Historial"

// Headers are the column titles of an exported history.
var Headers = []string{"Número", "Contraparte", "Fecha", "Estado", "Total"}

// WriteHistory writes records as an xlsx workbook to w. Dates are shown in loc.
func WriteHistory(w io.Writer, records []history.Record, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("export: style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}

	var total money.Cents
	for i, r := range records {
		row := []any{r.Number, r.Counterparty, r.Date.In(loc).Format("2006-01-02 15:04"), r.Status, r.Total.Float64()}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
		total += r.Total
	}
	if len(records) > 0 {
		last := len(records) + 2
		label, _ := excelize.CoordinatesToCellName(4, last)
		sum, _ := excelize.CoordinatesToCellName(5, last)
		_ = f.SetCellValue(sheet, label, "Total")
		if err := f.SetCellValue(sheet, sum, total.Float64()); err != nil {
			return fmt.Errorf("export: total: %w", err)
		}
		if err := f.SetCellStyle(sheet, "E2", sum, amount); err != nil {
			return fmt.Errorf("export: style: %w", err)
		}
	}
	_ = f.SetColWidth(sheet, "A", "B", 24)
	_ = f.SetColWidth(sheet, "C", "E", 16)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}
