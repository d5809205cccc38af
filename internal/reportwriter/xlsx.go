package reportwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
)

const (
	summarySheet = "Summary"
	itemsSheet   = "Items"
)

// itemColumns are the column headers of the items sheet.
var itemColumns = []interface{}{"Severity", "Row", "Description", "Location", "Value"}

// WriteXLSX renders r as a workbook with a summary sheet and an items sheet.
func WriteXLSX(w io.Writer, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, r); err != nil {
		return err
	}

	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("failed to create items sheet: %w", err)
	}
	if err := writeItemsSheet(f, r); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX report: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r *report.Report) error {
	rows := [][]interface{}{
		{"Report", r.ID},
		{"Source", r.Source},
		{"Date", r.Date.Format(time.RFC3339)},
		{"Result", string(r.Result)},
		{"Errors", r.Counters.Errors},
		{"Warnings", r.Counters.Warnings},
		{"Infos", r.Counters.Infos},
		{"Truncated", r.Truncated},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	return f.SetColWidth(summarySheet, "A", "B", 24)
}

func writeItemsSheet(f *excelize.File, r *report.Report) error {
	if err := f.SetSheetRow(itemsSheet, "A1", &itemColumns); err != nil {
		return fmt.Errorf("failed to write items header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(itemsSheet, "A1", "E1", style); err != nil {
		return fmt.Errorf("failed to style items header: %w", err)
	}

	row := 2
	for _, v := range r.Violations {
		if v.Severity == report.SeverityNone {
			continue
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{
			string(v.Severity),
			v.Line,
			v.Description(),
			v.Location(r.InputName),
			v.Value,
		}
		if err := f.SetSheetRow(itemsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write item row %d: %w", row, err)
		}
		row++
	}

	if err := f.SetColWidth(itemsSheet, "C", "C", 80); err != nil {
		return err
	}
	return f.SetColWidth(itemsSheet, "D", "D", 28)
}
