package floorplan

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFilename      = "filtered_floor_plans.csv"
	ExportContentType   = "text/csv"
	WorkbookFilename    = "filtered_floor_plans.xlsx"
	WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	WorkbookSheet       = "Floor Plans"
)

// SerializeCSV writes the header and every row of t in the format LoadCSV
// reads. Areas are written exactly as they were loaded.
func SerializeCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header()); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(row.ToRecord(len(t.Extra))); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeXLSX writes t as a single-sheet workbook. Areas that parse as
// numbers are stored as numeric cells, anything else as text.
func SerializeXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", WorkbookSheet); err != nil {
		return nil, err
	}

	header := t.Header()
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(WorkbookSheet, "A1", &cells); err != nil {
		return nil, err
	}

	for i, row := range t.Rows {
		record := row.ToRecord(len(t.Extra))
		cells := make([]interface{}, len(record))
		for j, v := range record {
			cells[j] = v
		}
		if area, err := row.AreaSqft(); err == nil {
			cells[colArea] = area
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(WorkbookSheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
