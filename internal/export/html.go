package export

import (
	"html/template"
	"io"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/timetable"
)

var rosterTemplate = template.Must(template.New("roster").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4 landscape; margin: 10mm; }
body { font-family: Helvetica, Arial, sans-serif; }
h1 { text-align: center; margin-bottom: 0; }
p.range { text-align: center; margin-top: 4px; }
table { width: 100%; border-collapse: collapse; table-layout: fixed; }
th, td { border: 1px solid #000; padding: 4px; text-align: center; vertical-align: middle; }
thead th { background: #d9e1f2; }
th.shift { background: #f2f2f2; width: 12%; }
td.closed { background: #c8c8c8; }
td div { line-height: 1.5; }
footer { text-align: right; font-size: 0.75em; margin-top: 8px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="range">{{.Range}}</p>
<table>
<thead>
<tr><th class="shift"></th>{{range .Days}}<th>{{.Name}}<br>{{.Date}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr><th class="shift">{{.Label}}</th>{{range .Cells}}<td{{if not .Available}} class="closed"{{end}}>{{range .Names}}<div>{{.}}</div>{{end}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
<footer>Generated {{.GeneratedAt}}</footer>
</body>
</html>
`))

type htmlPage struct {
	Title       string
	Range       string
	GeneratedAt string
	Days        []htmlDay
	Rows        []htmlRow
}

type htmlDay struct {
	Name string
	Date string
}

type htmlRow struct {
	Label string
	Cells []htmlCell
}

type htmlCell struct {
	Available bool
	Names     []string
}

func writeHTML(w io.Writer, grid timetable.WeekGrid, opts Options) error {
	page := htmlPage{
		Title:       opts.Title,
		Range:       rangeLabel(grid),
		GeneratedAt: opts.GeneratedAt.Format("02/01/06 15:04"),
		Days:        make([]htmlDay, len(grid.Days)),
	}
	for i, day := range grid.Days {
		page.Days[i] = htmlDay{Name: day.Name, Date: calendar.FormatDate(day.Date)}
	}
	for _, st := range calendar.ShiftTypes() {
		row := htmlRow{Label: st.Label(), Cells: make([]htmlCell, len(grid.Days))}
		for i, day := range grid.Days {
			c := cellAt(day, st)
			row.Cells[i] = htmlCell{Available: c.Available, Names: opts.Names.Names(c)}
		}
		page.Rows = append(page.Rows, row)
	}
	return rosterTemplate.Execute(w, page)
}
