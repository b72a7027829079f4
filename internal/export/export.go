// Package export renders a projected week grid as a printable document.
//
// Every renderer consumes the same timetable.WeekGrid so the on-screen grid
// and the printed copy cannot diverge.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/timetable"
)

// ErrUnknownFormat is returned for an unsupported document format.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format selects the output document type.
type Format string

const (
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
	HTML Format = "html"
)

// ParseFormat maps a query value to a Format; empty means PDF.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", PDF:
		return PDF, nil
	case XLSX:
		return XLSX, nil
	case HTML:
		return HTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case HTML:
		return "text/html; charset=utf-8"
	default:
		return "application/pdf"
	}
}

// Extension is the file extension without the dot.
func (f Format) Extension() string {
	if f == "" {
		return string(PDF)
	}
	return string(f)
}

// Options are presentation parameters shared by every renderer.
type Options struct {
	Title string
	Names timetable.NameFormat
	// GeneratedAt stamps the document; zero means now.
	GeneratedAt time.Time
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = "Weekly Roster"
	}
	if o.Names == "" {
		o.Names = timetable.FullName
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	return o
}

// Write renders grid in the given format to w.
func Write(w io.Writer, format Format, grid timetable.WeekGrid, opts Options) error {
	opts = opts.withDefaults()
	switch format {
	case PDF, "":
		return writePDF(w, grid, opts)
	case XLSX:
		return writeXLSX(w, grid, opts)
	case HTML:
		return writeHTML(w, grid, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Filename suggests a download name such as "roster-2024-09-01.pdf".
func Filename(grid timetable.WeekGrid, format Format) string {
	return fmt.Sprintf("roster-%s.%s", calendar.FormatISO(grid.Start), format.Extension())
}

func rangeLabel(grid timetable.WeekGrid) string {
	return calendar.FormatDate(grid.Start) + " - " + calendar.FormatDate(grid.End)
}

// cellAt returns the cell of day for shift type st.
func cellAt(day timetable.Day, st calendar.ShiftType) timetable.Cell {
	if i := st.Order(); i >= 0 && i < len(day.Cells) {
		return day.Cells[i]
	}
	return timetable.Cell{ShiftType: st}
}
