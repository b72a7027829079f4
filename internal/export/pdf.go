package export

import (
	_ "embed"
	"io"
	"unicode"

	"github.com/go-pdf/fpdf"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/timetable"
)

const (
	pdfMargin       = 10.0
	pdfLabelWidth   = 32.0
	pdfHeaderHeight = 14.0
	pdfLineHeight   = 6.0
	pdfRowPadding   = 2.0
	pdfFont         = "DejaVu"
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	fontOblique []byte
)

// writePDF lays the grid out as a landscape A4 table: one column per day,
// one row per shift type, one line per staffed position.
func writePDF(w io.Writer, grid timetable.WeekGrid, opts Options) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("staff-roster", true)
	pdf.SetCreationDate(opts.GeneratedAt)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddUTF8FontFromBytes(pdfFont, "", fontRegular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", fontBold)
	pdf.AddUTF8FontFromBytes(pdfFont, "I", fontOblique)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pdfMargin
	dayWidth := usable - pdfLabelWidth
	if n := len(grid.Days); n > 0 {
		dayWidth /= float64(n)
	}
	rowHeight := float64(timetable.MaxPositions)*pdfLineHeight + 2*pdfRowPadding

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(usable, 10, opts.Title, "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(usable, 6, rangeLabel(grid), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(pdfFont, "B", 10)
	pdf.SetFillColor(217, 225, 242)
	x0, y := pdf.GetXY()
	pdf.Rect(x0, y, pdfLabelWidth, pdfHeaderHeight, "FD")
	for i, day := range grid.Days {
		x := x0 + pdfLabelWidth + float64(i)*dayWidth
		pdf.Rect(x, y, dayWidth, pdfHeaderHeight, "FD")
		pdf.SetXY(x, y+1)
		pdf.CellFormat(dayWidth, pdfHeaderHeight/2-1, day.Name, "", 2, "C", false, 0, "")
		pdf.CellFormat(dayWidth, pdfHeaderHeight/2-1, calendar.FormatDate(day.Date), "", 0, "C", false, 0, "")
	}
	y += pdfHeaderHeight

	for _, st := range calendar.ShiftTypes() {
		pdf.SetFont(pdfFont, "B", 10)
		pdf.SetFillColor(242, 242, 242)
		pdf.SetXY(x0, y)
		pdf.CellFormat(pdfLabelWidth, rowHeight, st.Label(), "1", 0, "C", true, 0, "")

		pdf.SetFont(pdfFont, "", 9)
		for i, day := range grid.Days {
			x := x0 + pdfLabelWidth + float64(i)*dayWidth
			cell := cellAt(day, st)
			if cell.Available {
				pdf.Rect(x, y, dayWidth, rowHeight, "D")
			} else {
				pdf.SetFillColor(200, 200, 200)
				pdf.Rect(x, y, dayWidth, rowHeight, "FD")
			}
			for line, name := range opts.Names.Names(cell) {
				pdf.SetXY(x, y+pdfRowPadding+float64(line)*pdfLineHeight)
				writeName(pdf, dayWidth, name)
			}
		}
		y += rowHeight
	}

	pdf.SetXY(x0, y+4)
	pdf.SetFont(pdfFont, "I", 8)
	pdf.CellFormat(usable, 5, "Generated "+opts.GeneratedAt.Format("02/01/06 15:04"), "", 0, "R", false, 0, "")

	return pdf.Output(w)
}

// writeName prints one centred name, right to left when it is written in
// Hebrew.
func writeName(pdf *fpdf.Fpdf, width float64, name string) {
	if isRightToLeft(name) {
		pdf.RTL()
		defer pdf.LTR()
	}
	pdf.CellFormat(width, pdfLineHeight, name, "", 0, "C", false, 0, "")
}

func isRightToLeft(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hebrew, r) {
			return true
		}
	}
	return false
}
