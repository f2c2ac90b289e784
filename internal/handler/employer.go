// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/worklodge/wlp-go/internal/api"
	"github.com/worklodge/wlp-go/internal/cache"
	"github.com/worklodge/wlp-go/internal/middleware"
	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/render"
	"github.com/worklodge/wlp-go/internal/service"
)

// maxImportRows caps a single CSV worker import.
const maxImportRows = 500

// EmployerHandler handles the employer section: room requests and the
// worker roster.
type EmployerHandler struct {
	renderer     *render.Renderer
	summaries    *cache.SummaryCache
	eventService *service.EventService
}

// NewEmployerHandler creates a new EmployerHandler.
func NewEmployerHandler(db *sql.DB, renderer *render.Renderer, summaries *cache.SummaryCache) *EmployerHandler {
	return &EmployerHandler{
		renderer:     renderer,
		summaries:    summaries,
		eventService: service.NewEventService(db),
	}
}

// apiClient returns the request's token-bound API client.
func apiClient(r *http.Request) *api.Client {
	return middleware.GetStore(r).Client()
}

// sessionUserID returns the signed-in user's ID, or "" outside a session.
func sessionUserID(r *http.Request) string {
	snap := middleware.GetSnapshot(r)
	if snap.Identity == nil {
		return ""
	}
	return snap.Identity.ID
}

// employerOverviewData is the payload for the employer overview page.
type employerOverviewData struct {
	Stats  []model.Stat
	Recent []model.RoomRequest
}

// Overview renders the employer landing page with summary stats and the
// most recent requests.
func (h *EmployerHandler) Overview(w http.ResponseWriter, r *http.Request) {
	client := apiClient(r)

	stats, err := h.summaries.GetOrFetch(r.Context(), "employer", sessionUserID(r), func() ([]model.Stat, error) {
		return client.Summary(r.Context(), "employer")
	})
	if err != nil {
		slog.Error("failed to load employer summary", "error", err)
	}

	requests, err := client.EmployerRequests(r.Context())
	if err != nil {
		slog.Error("failed to load employer requests", "error", err)
	}
	if len(requests) > 5 {
		requests = requests[:5]
	}

	data := employerOverviewData{Stats: stats, Recent: requests}
	if err := h.renderer.Render(w, r, "employer/overview", pageData(r, "Employer overview", data)); err != nil {
		logAndInternalError(w, "failed to render employer overview", "error", err)
	}
}

// employerRequestsData is the payload for the request list page.
type employerRequestsData struct {
	Requests []model.RoomRequest
}

// Requests renders the employer's room request list.
func (h *EmployerHandler) Requests(w http.ResponseWriter, r *http.Request) {
	requests, err := apiClient(r).EmployerRequests(r.Context())
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployer, err, "failed to load requests")
		return
	}

	data := employerRequestsData{Requests: requests}
	if err := h.renderer.Render(w, r, "employer/requests", pageData(r, "Room requests", data)); err != nil {
		logAndInternalError(w, "failed to render request list", "error", err)
	}
}

// newRequestData is the payload for the new-request form.
type newRequestData struct {
	Hotels []model.Hotel
	Form   model.RoomRequest
}

// NewRequestForm renders the new room request form.
func (h *EmployerHandler) NewRequestForm(w http.ResponseWriter, r *http.Request) {
	hotels, err := apiClient(r).Hotels(r.Context())
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployerRequests, err, "failed to load hotels")
		return
	}

	data := newRequestData{Hotels: hotels}
	if err := h.renderer.Render(w, r, "employer/request_new", pageData(r, "New room request", data)); err != nil {
		logAndInternalError(w, "failed to render new-request form", "error", err)
	}
}

// CreateRequest validates and submits a new room request.
func (h *EmployerHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectEmployerRequestsNew) {
		return
	}

	headcount, _ := strconv.Atoi(r.FormValue("headcount"))
	singles, _ := strconv.Atoi(r.FormValue("single_rooms"))
	doubles, _ := strconv.Atoi(r.FormValue("double_rooms"))

	req := model.RoomRequest{
		HotelID:     r.FormValue("hotel_id"),
		StayStart:   r.FormValue("stay_start"),
		StayEnd:     r.FormValue("stay_end"),
		Headcount:   headcount,
		SingleRooms: singles,
		DoubleRooms: doubles,
		Notes:       r.FormValue("notes"),
	}

	if msg := validateRoomRequest(req); msg != "" {
		flashError(w, r, h.renderer, redirectEmployerRequestsNew, msg)
		return
	}

	if err := apiClient(r).CreateRoomRequest(r.Context(), req); err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployerRequestsNew, err, "failed to create request")
		return
	}

	userID := sessionUserID(r)
	h.summaries.Invalidate(r.Context(), "employer", userID)
	_ = h.eventService.LogLodgingEvent(r.Context(), model.EventLevelInfo, "Room request submitted", userID, clientIP(r), map[string]any{
		"hotel_id":  req.HotelID,
		"headcount": req.Headcount,
		"nights":    req.Nights(),
	})

	flashSuccess(w, r, h.renderer, redirectEmployerRequests, "Room request submitted")
}

// validateRoomRequest checks form-level constraints the backend would also
// reject, so the user gets one clear message instead of an API error.
func validateRoomRequest(req model.RoomRequest) string {
	if req.HotelID == "" {
		return "Please choose a hotel"
	}
	start, err1 := time.Parse("2006-01-02", req.StayStart)
	end, err2 := time.Parse("2006-01-02", req.StayEnd)
	if err1 != nil || err2 != nil {
		return "Stay dates must be valid dates"
	}
	if !end.After(start) {
		return "Check-out must be after check-in"
	}
	if req.Headcount < 1 {
		return "Headcount must be at least 1"
	}
	if req.SingleRooms < 0 || req.DoubleRooms < 0 {
		return "Room counts cannot be negative"
	}
	if req.Capacity() < req.Headcount {
		return fmt.Sprintf("The requested rooms sleep %d but %d workers are listed", req.Capacity(), req.Headcount)
	}
	return ""
}

// requestDetailsData is the payload for the request details page.
type requestDetailsData struct {
	Request model.RoomRequest
}

// RequestDetails renders one room request.
func (h *EmployerHandler) RequestDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := apiClient(r).EmployerRequest(r.Context(), id)
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployerRequests, err, "failed to load request")
		return
	}

	data := requestDetailsData{Request: req}
	if err := h.renderer.Render(w, r, "employer/request_details", pageData(r, "Request "+req.Ref(), data)); err != nil {
		logAndInternalError(w, "failed to render request details", "error", err)
	}
}

// workersData is the payload for the worker roster page.
type workersData struct {
	Roster api.WorkersResponse
	Filter api.WorkerFilter
}

// workerFilterFromQuery reads the roster filter from the query string.
func workerFilterFromQuery(r *http.Request) api.WorkerFilter {
	q := r.URL.Query()
	return api.WorkerFilter{
		Query:   q.Get("q"),
		HotelID: q.Get("hotel_id"),
		Status:  q.Get("status"),
		Start:   q.Get("start"),
		End:     q.Get("end"),
	}
}

// Workers renders the worker roster with bucket cards and filters.
func (h *EmployerHandler) Workers(w http.ResponseWriter, r *http.Request) {
	filter := workerFilterFromQuery(r)

	roster, err := apiClient(r).EmployerWorkers(r.Context(), filter)
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployer, err, "failed to load worker roster")
		return
	}

	data := workersData{Roster: roster, Filter: filter}
	if err := h.renderer.Render(w, r, "employer/workers", pageData(r, "Workers", data)); err != nil {
		logAndInternalError(w, "failed to render worker roster", "error", err)
	}
}

// AddWorker adds a single worker from the roster form.
func (h *EmployerHandler) AddWorker(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectEmployerWorkers) {
		return
	}

	worker := model.NewWorker{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Phone:      strings.TrimSpace(r.FormValue("phone")),
		GovIDType:  r.FormValue("gov_id_type"),
		GovIDLast4: r.FormValue("gov_id_last4"),
		Notes:      r.FormValue("notes"),
	}
	if worker.Name == "" {
		flashError(w, r, h.renderer, redirectEmployerWorkers, "Worker name is required")
		return
	}

	if err := apiClient(r).AddWorkers(r.Context(), []model.NewWorker{worker}); err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployerWorkers, err, "failed to add worker")
		return
	}

	h.summaries.Invalidate(r.Context(), "employer", sessionUserID(r))
	flashSuccess(w, r, h.renderer, redirectEmployerWorkers, "Worker added to the roster")
}

// ImportWorkers bulk-adds workers from an uploaded CSV file. The expected
// header is: name,phone,gov_id_type,gov_id_last4,notes.
func (h *EmployerHandler) ImportWorkers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2 << 20); err != nil {
		flashError(w, r, h.renderer, redirectEmployerWorkers, "Invalid upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		flashError(w, r, h.renderer, redirectEmployerWorkers, "Please choose a CSV file")
		return
	}
	defer file.Close()

	workers, problems, err := parseWorkerCSV(file)
	if err != nil {
		flashError(w, r, h.renderer, redirectEmployerWorkers, err.Error())
		return
	}
	if len(workers) == 0 {
		flashError(w, r, h.renderer, redirectEmployerWorkers, "The file contains no importable workers")
		return
	}

	if err := apiClient(r).AddWorkers(r.Context(), workers); err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployerWorkers, err, "failed to import workers")
		return
	}

	userID := sessionUserID(r)
	batchID := uuid.NewString()
	h.summaries.Invalidate(r.Context(), "employer", userID)
	_ = h.eventService.LogLodgingEvent(r.Context(), model.EventLevelInfo, "Workers imported from CSV", userID, clientIP(r), map[string]any{"count": len(workers), "skipped": len(problems), "batch_id": batchID})
	slog.Info("worker roster imported", "batch_id", batchID, "count", len(workers), "skipped", len(problems))

	msg := fmt.Sprintf("Imported %d workers", len(workers))
	if len(problems) > 0 {
		msg = fmt.Sprintf("%s, skipped %d rows: %s", msg, len(problems), strings.Join(problems, "; "))
	}
	flashSuccess(w, r, h.renderer, redirectEmployerWorkers, msg)
}

// parseWorkerCSV reads an import file. Rows without a name are dropped; rows
// failing validation are skipped and reported by line number, capped at the
// first few problems.
func parseWorkerCSV(f io.Reader) ([]model.NewWorker, []string, error) {
	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("the file is not a readable CSV")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	nameIdx, ok := col["name"]
	if !ok {
		return nil, nil, fmt.Errorf("the CSV needs a 'name' column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var workers []model.NewWorker
	var problems []string
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: malformed row", line))
			continue
		}
		if len(workers) >= maxImportRows {
			return nil, nil, fmt.Errorf("imports are limited to %d workers per file", maxImportRows)
		}

		name := ""
		if nameIdx < len(record) {
			name = strings.TrimSpace(record[nameIdx])
		}
		if name == "" {
			// Blank and nameless rows are dropped, not reported.
			continue
		}
		last4 := field(record, "gov_id_last4")
		if last4 != "" && len(last4) != 4 {
			problems = append(problems, fmt.Sprintf("line %d: gov_id_last4 must be 4 characters", line))
			continue
		}

		workers = append(workers, model.NewWorker{
			Name:       name,
			Phone:      field(record, "phone"),
			GovIDType:  field(record, "gov_id_type"),
			GovIDLast4: last4,
			Notes:      field(record, "notes"),
		})

		if len(problems) >= 10 {
			problems = append(problems, "further problems omitted")
			break
		}
	}

	return workers, problems, nil
}

// ExportWorkers streams the current roster view as a CSV download, honoring
// the same filters as the roster page.
func (h *EmployerHandler) ExportWorkers(w http.ResponseWriter, r *http.Request) {
	roster, err := apiClient(r).EmployerWorkers(r.Context(), workerFilterFromQuery(r))
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectEmployerWorkers, err, "failed to export workers")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="workers-`+time.Now().Format("2006-01-02")+`.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"name", "phone", "status", "hotel", "room_no", "checkin", "checkout", "gov_id_type", "gov_id_last4", "notes"})
	for _, worker := range roster.Workers {
		_ = writer.Write([]string{
			worker.Name,
			worker.Phone,
			worker.Status,
			worker.Hotel,
			worker.RoomNo,
			worker.CheckinTS,
			worker.CheckoutTS,
			worker.GovIDType,
			worker.GovIDLast4,
			worker.Notes,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Error("failed to write worker CSV", "error", err)
	}
}
