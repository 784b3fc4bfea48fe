package render

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"trendboard/pkg/synth"
)

const (
	tableSheet    = "Trend"
	periodDisplay = "2006-01"
)

// Row is one line of the raw-data view.
type Row struct {
	Period    string  `json:"period"`
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Total     float64 `json:"total"`
}

// Table is the raw-data view of a derived series.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// NewTable labels columns with the country's engine label for the primary series.
func NewTable(primaryLabel string, series synth.DerivedSeries) Table {
	return Table{
		Headers: []string{"Period", primaryLabel, SecondaryLabel, TotalLabel},
		Rows: lo.Map(series, func(p synth.Point, _ int) Row {
			return Row{
				Period:    p.Period.Format(periodDisplay),
				Primary:   p.Primary,
				Secondary: p.Secondary,
				Total:     p.Total,
			}
		}),
	}
}

// Summary is the line shown under the table.
func (t Table) Summary() string {
	return fmt.Sprintf("%d periods collected", len(t.Rows))
}

// WriteXLSX writes the table as a single-sheet workbook.
func (t Table) WriteXLSX(w io.Writer) error {
	if len(t.Rows) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", tableSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(tableSheet, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	if err := f.SetColWidth(tableSheet, "A", "D", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	for i, row := range t.Rows {
		values := []interface{}{row.Period, row.Primary, row.Secondary, row.Total}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(tableSheet, cell, v); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
