package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/staff-roster/internal/application"
	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/export"
	"github.com/example/staff-roster/internal/timetable"
)

type rangeService interface {
	RefreshRange(ctx context.Context, startDate, endDate string) (application.RefreshResult, error)
	ClearRange(ctx context.Context, startDate, endDate string) (int, error)
	SaveWeek(ctx context.Context, startDate, endDate string, tuples []application.AssignmentTuple) (application.SaveResult, error)
	ListRows(ctx context.Context, startDate, endDate string) ([]timetable.Row, error)
	WeekGrid(ctx context.Context, weekStart string) (timetable.WeekGrid, error)
}

type assignmentResolver interface {
	ResolveAndPersist(ctx context.Context, tuples []application.AssignmentTuple) (application.ResolveResult, error)
}

// ShiftHandler serves slot materialization, assignment batches and the week
// grid in JSON and printable form.
type ShiftHandler struct {
	ranges      rangeService
	resolver    assignmentResolver
	exportTitle string
	responder   responder
	logger      *slog.Logger
}

func NewShiftHandler(ranges rangeService, resolver assignmentResolver, exportTitle string, logger *slog.Logger) *ShiftHandler {
	base := defaultLogger(logger)
	return &ShiftHandler{
		ranges:      ranges,
		resolver:    resolver,
		exportTitle: exportTitle,
		responder:   newResponder(base),
		logger:      base,
	}
}

func (h *ShiftHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ShiftHandler", operation, attrs...)
}

func (h *ShiftHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.ranges == nil || h.resolver == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// RefreshRange clears the assignments of a range and materializes its slots.
func (h *ShiftHandler) RefreshRange(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	req, err := decodeRangeRequest(r)
	if err != nil {
		h.log(r.Context(), "RefreshRange", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode range request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.ranges.RefreshRange(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, refreshResponse{
		Message:  "Shift range refreshed successfully",
		Created:  result.Slots.Created,
		Existing: result.Slots.Existing,
		Cleared:  result.Cleared,
	})
}

// ClearRange deletes the assignments of a range. Slots are kept.
func (h *ShiftHandler) ClearRange(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	req, err := decodeRangeRequest(r)
	if err != nil {
		h.log(r.Context(), "ClearRange", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode range request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	deleted, err := h.ranges.ClearRange(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, clearResponse{
		Message: "Shifts deleted successfully",
		Deleted: deleted,
	})
}

// Assign resolves a batch of tuples against existing slots and employees.
func (h *ShiftHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req []assignmentTupleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Assign", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode assignment batch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.resolver.ResolveAndPersist(r.Context(), toAssignmentTuples(req))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResolveResponse(result))
}

// Save replaces the assignments of a range with the submitted batch.
func (h *ShiftHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode save request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.ranges.SaveWeek(r.Context(), req.StartDate, req.EndDate, toAssignmentTuples(req.Assignments))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, saveResponse{
		Message:         "Shifts saved successfully",
		Cleared:         result.Cleared,
		Created:         result.Slots.Created,
		Existing:        result.Slots.Existing,
		resolveResponse: toResolveResponse(result.Assignments),
	})
}

// List returns the joined assignment rows of ?startDate&endDate.
func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	query := r.URL.Query()
	rows, err := h.ranges.ListRows(r.Context(), query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]shiftRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toShiftRowDTO(row))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listShiftsResponse{Data: out})
}

// Week returns the projected grid of the week containing ?weekStart.
func (h *ShiftHandler) Week(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	query := r.URL.Query()
	names, err := timetable.ParseNameFormat(query.Get("names"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errUnknownNameMode)
		return
	}

	grid, err := h.ranges.WeekGrid(r.Context(), query.Get("weekStart"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeekGridDTO(grid, names))
}

// Export renders the week grid as a PDF, XLSX or HTML download.
func (h *ShiftHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	query := r.URL.Query()
	format, err := export.ParseFormat(query.Get("format"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errUnknownFormat)
		return
	}
	names, err := timetable.ParseNameFormat(query.Get("names"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errUnknownNameMode)
		return
	}

	grid, err := h.ranges.WeekGrid(r.Context(), query.Get("weekStart"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Export", "format", format, "week_start", calendar.FormatISO(grid.Start))

	var buf bytes.Buffer
	if err := export.Write(&buf, format, grid, export.Options{Title: h.exportTitle, Names: names}); err != nil {
		logger.ErrorContext(r.Context(), "export failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(grid, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.WarnContext(r.Context(), "export write interrupted", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "week exported", "bytes", buf.Len(), "assigned", grid.Assigned())
}

type rangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// decodeRangeRequest reads the range from the JSON body, falling back to
// query parameters for fields the body leaves empty.
func decodeRangeRequest(r *http.Request) (rangeRequest, error) {
	var req rangeRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return rangeRequest{}, err
		}
	}
	query := r.URL.Query()
	if req.StartDate == "" {
		req.StartDate = query.Get("startDate")
	}
	if req.EndDate == "" {
		req.EndDate = query.Get("endDate")
	}
	return req, nil
}

type saveRequest struct {
	StartDate   string               `json:"startDate"`
	EndDate     string               `json:"endDate"`
	Assignments []assignmentTupleDTO `json:"assignments"`
}

// assignmentTupleDTO accepts either the positional form
// [position, firstName, lastName, shiftType, date] or an object.
type assignmentTupleDTO struct {
	Position   tuplePosition `json:"position"`
	FirstName  string        `json:"firstName"`
	LastName   string        `json:"lastName"`
	ShiftType  string        `json:"shiftType"`
	Date       string        `json:"date"`
	EmployeeID string        `json:"employeeId"`
}

func (t *assignmentTupleDTO) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		type plain assignmentTupleDTO
		var obj plain
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		*t = assignmentTupleDTO(obj)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return fmt.Errorf("assignment tuple must have 5 elements, got %d", len(raw))
	}
	var out assignmentTupleDTO
	if err := out.Position.UnmarshalJSON(raw[0]); err != nil {
		return err
	}
	for i, dst := range []*string{&out.FirstName, &out.LastName, &out.ShiftType, &out.Date} {
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return fmt.Errorf("assignment tuple element %d: %w", i+1, err)
		}
	}
	*t = out
	return nil
}

// tuplePosition decodes a number or a numeric string. Anything else
// non-numeric becomes 0 and is reported by the resolver as invalid.
type tuplePosition int

func (p *tuplePosition) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = tuplePosition(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("position must be a number: %w", err)
	}
	n, _ = strconv.Atoi(strings.TrimSpace(s))
	*p = tuplePosition(n)
	return nil
}

func toAssignmentTuples(in []assignmentTupleDTO) []application.AssignmentTuple {
	out := make([]application.AssignmentTuple, 0, len(in))
	for _, t := range in {
		out = append(out, application.AssignmentTuple{
			Position:   int(t.Position),
			FirstName:  t.FirstName,
			LastName:   t.LastName,
			ShiftType:  t.ShiftType,
			Date:       t.Date,
			EmployeeID: t.EmployeeID,
		})
	}
	return out
}

type refreshResponse struct {
	Message  string `json:"message"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	Cleared  int    `json:"cleared"`
}

type clearResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

type skipDTO struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

type resolveResponse struct {
	Persisted  int       `json:"persisted"`
	Skipped    []skipDTO `json:"skipped"`
	Incomplete bool      `json:"incomplete"`
}

type saveResponse struct {
	Message  string `json:"message"`
	Cleared  int    `json:"cleared"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	resolveResponse
}

func toResolveResponse(result application.ResolveResult) resolveResponse {
	skipped := make([]skipDTO, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		skipped = append(skipped, skipDTO{Index: s.Index, Reason: string(s.Reason), Detail: s.Detail})
	}
	return resolveResponse{Persisted: result.Persisted, Skipped: skipped, Incomplete: result.Incomplete}
}

type shiftRowDTO struct {
	ShiftDate    string `json:"shiftDate"`
	ShiftType    string `json:"shiftType"`
	ShiftDay     string `json:"shiftDay"`
	EmployeeID   string `json:"employeeId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	WorkerNumber int    `json:"workerNumber"`
}

type listShiftsResponse struct {
	Data []shiftRowDTO `json:"data"`
}

func toShiftRowDTO(row timetable.Row) shiftRowDTO {
	return shiftRowDTO{
		ShiftDate:    calendar.FormatISO(row.Date),
		ShiftType:    string(row.ShiftType),
		ShiftDay:     calendar.DayName(row.Date),
		EmployeeID:   row.EmployeeID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		WorkerNumber: row.Position,
	}
}

type weekGridDTO struct {
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Days      []dayDTO `json:"days"`
	Dropped   int      `json:"dropped,omitempty"`
}

type dayDTO struct {
	Date   string    `json:"date"`
	Name   string    `json:"name"`
	Shifts []cellDTO `json:"shifts"`
}

type cellDTO struct {
	ShiftType string     `json:"shiftType"`
	Label     string     `json:"label"`
	Available bool       `json:"available"`
	Employees []entryDTO `json:"employees"`
}

type entryDTO struct {
	Position   int    `json:"position"`
	EmployeeID string `json:"employeeId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Display    string `json:"display"`
}

func toWeekGridDTO(grid timetable.WeekGrid, names timetable.NameFormat) weekGridDTO {
	out := weekGridDTO{
		StartDate: calendar.FormatDate(grid.Start),
		EndDate:   calendar.FormatDate(grid.End),
		Days:      make([]dayDTO, 0, len(grid.Days)),
		Dropped:   grid.Dropped,
	}
	for _, day := range grid.Days {
		d := dayDTO{Date: calendar.FormatDate(day.Date), Name: day.Name, Shifts: make([]cellDTO, 0, len(day.Cells))}
		for _, cell := range day.Cells {
			c := cellDTO{
				ShiftType: string(cell.ShiftType),
				Label:     cell.ShiftType.Label(),
				Available: cell.Available,
				Employees: make([]entryDTO, 0, len(cell.Entries)),
			}
			for _, e := range cell.Entries {
				c.Employees = append(c.Employees, entryDTO{
					Position:   e.Position,
					EmployeeID: e.EmployeeID,
					FirstName:  e.FirstName,
					LastName:   e.LastName,
					Display:    names.Format(e),
				})
			}
			d.Shifts = append(d.Shifts, c)
		}
		out.Days = append(out.Days, d)
	}
	return out
}
