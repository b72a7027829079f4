package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/timetable"
)

const (
	xlsxSheet     = "Roster"
	xlsxHeaderRow = 3
)

// writeXLSX writes the grid as a single landscape worksheet laid out like
// the PDF: a title, a header of days, then one row per shift type with the
// names of a cell on separate lines.
func writeXLSX(w io.Writer, grid timetable.WeekGrid, opts Options) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	styles, err := newXLSXStyles(f)
	if err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(grid.Days) + 1)
	if err != nil {
		return err
	}

	values := map[string]string{
		"A1":                   opts.Title,
		"A2":                   rangeLabel(grid),
		cell(1, xlsxHeaderRow): "Shift",
	}
	for i, day := range grid.Days {
		values[cell(i+2, xlsxHeaderRow)] = day.Name + "\n" + calendar.FormatDate(day.Date)
	}
	for ref, value := range values {
		if err := f.SetCellValue(xlsxSheet, ref, value); err != nil {
			return fmt.Errorf("set %s: %w", ref, err)
		}
	}

	if err := f.MergeCell(xlsxSheet, "A1", lastCol+"1"); err != nil {
		return err
	}
	if err := f.MergeCell(xlsxSheet, "A2", lastCol+"2"); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A1", styles.title); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, cell(1, xlsxHeaderRow), lastCol+fmt.Sprint(xlsxHeaderRow), styles.header); err != nil {
		return err
	}
	if err := f.SetRowHeight(xlsxSheet, xlsxHeaderRow, 32); err != nil {
		return err
	}

	for r, st := range calendar.ShiftTypes() {
		row := xlsxHeaderRow + 1 + r
		if err := f.SetCellValue(xlsxSheet, cell(1, row), st.Label()); err != nil {
			return err
		}
		if err := f.SetCellStyle(xlsxSheet, cell(1, row), cell(1, row), styles.label); err != nil {
			return err
		}
		for i, day := range grid.Days {
			c := cellAt(day, st)
			ref := cell(i+2, row)
			if err := f.SetCellValue(xlsxSheet, ref, strings.Join(opts.Names.Names(c), "\n")); err != nil {
				return err
			}
			style := styles.body
			if !c.Available {
				style = styles.closed
			}
			if err := f.SetCellStyle(xlsxSheet, ref, ref, style); err != nil {
				return err
			}
		}
		if err := f.SetRowHeight(xlsxSheet, row, float64(timetable.MaxPositions)*16); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(xlsxSheet, "A", "A", 14); err != nil {
		return err
	}
	if len(grid.Days) > 0 {
		if err := f.SetColWidth(xlsxSheet, "B", lastCol, 22); err != nil {
			return err
		}
	}

	orientation := "landscape"
	paperSize := 9 // A4
	if err := f.SetPageLayout(xlsxSheet, &excelize.PageLayoutOptions{Orientation: &orientation, Size: &paperSize}); err != nil {
		return err
	}
	if err := f.SetHeaderFooter(xlsxSheet, &excelize.HeaderFooterOptions{
		OddFooter: "&L" + opts.Title + "&RGenerated " + opts.GeneratedAt.Format("02/01/06 15:04"),
	}); err != nil {
		return err
	}

	return f.Write(w)
}

type xlsxStyles struct {
	title, header, label, body, closed int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}

	var s xlsxStyles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, fmt.Errorf("title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Border:    border,
		Alignment: centered,
	}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border:    border,
		Alignment: centered,
	}); err != nil {
		return s, fmt.Errorf("label style: %w", err)
	}
	if s.body, err = f.NewStyle(&excelize.Style{Border: border, Alignment: centered}); err != nil {
		return s, fmt.Errorf("body style: %w", err)
	}
	if s.closed, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"C8C8C8"}, Pattern: 1},
		Border:    border,
		Alignment: centered,
	}); err != nil {
		return s, fmt.Errorf("closed style: %w", err)
	}
	return s, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
