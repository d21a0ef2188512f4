/*
handlers.go - HTTP handlers for the attendance engine

PURPOSE:
  Exposes the engine over REST. Inbound signal delivery and outbound
  read-only queries, plus settings management and the duplicate-day
  cleanup admin operation.

ENDPOINTS:
  Signals:
    POST /api/signals/enter    Entered office region (body: lat/lng)
    POST /api/signals/exit     Exited office region

  Queries:
    GET  /api/status           In-office flag + current visit
    GET  /api/visits           Visit history (?valid=true filters)
    GET  /api/progress         Current-month progress + pace
    GET  /api/trend            ?days=N or ?months=N, zero-filled
    GET  /api/streak           Consecutive-month streak

  Settings:
    GET  /api/settings
    PUT  /api/settings
    GET  /api/holidays         Resolved holiday dates (?year=)

  Admin:
    POST /api/admin/consolidate Merge same-day duplicate visits

ERROR HANDLING:
  The engine itself has no recoverable errors; signals always succeed and
  queries degrade to safe values. HTTP-level failures (bad JSON, invalid
  parameters, store write failures) map to 400/422/500 with a JSON body.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// maxOfficeLocations caps the configured office list. The limit mirrors
// what the settings surface allows; the Visit model itself doesn't care.
const maxOfficeLocations = 2

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker *attendance.Tracker
	Store   attendance.SettingsStore // nil disables settings persistence
	Clock   attendance.Clock

	mu       sync.RWMutex
	settings attendance.Settings
}

// NewHandler creates a handler around a tracker and a settings snapshot.
func NewHandler(tracker *attendance.Tracker, store attendance.SettingsStore, settings attendance.Settings, clock attendance.Clock) *Handler {
	if clock == nil {
		clock = attendance.SystemClock()
	}
	settings.MigrateLegacyLocation()
	return &Handler{Tracker: tracker, Store: store, Clock: clock, settings: settings}
}

func (h *Handler) currentSettings() attendance.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings.Clone()
}

func (h *Handler) calculator() *attendance.Calculator {
	return attendance.NewCalculator(h.currentSettings(), h.Clock)
}

// =============================================================================
// SIGNAL HANDLERS
// =============================================================================

// EnterSignal handles an "entered office region" signal.
func (h *Handler) EnterSignal(w http.ResponseWriter, r *http.Request) {
	var req SignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	point := attendance.GeoPoint{Latitude: req.Lat, Longitude: req.Lng}

	// The OS geofence normally only fires inside a configured region;
	// this re-check guards against stale regions after a settings change.
	settings := h.currentSettings()
	if len(settings.OfficeLocations) > 0 && settings.LocationContaining(point) == nil {
		signalsTotal.WithLabelValues("enter", "rejected").Inc()
		writeError(w, http.StatusUnprocessableEntity, "Coordinate outside all configured office regions", nil)
		return
	}

	transition := h.Tracker.StartVisit(point)
	signalsTotal.WithLabelValues("enter", string(transition)).Inc()
	writeJSON(w, http.StatusOK, SignalResponse{Transition: string(transition)})
}

// ExitSignal handles an "exited office region" signal.
func (h *Handler) ExitSignal(w http.ResponseWriter, r *http.Request) {
	transition := h.Tracker.EndVisit()
	signalsTotal.WithLabelValues("exit", string(transition)).Inc()
	writeJSON(w, http.StatusOK, SignalResponse{Transition: string(transition)})
}

// =============================================================================
// QUERY HANDLERS
// =============================================================================

// GetStatus returns the live in-office state.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusDTO{InOffice: h.Tracker.IsCurrentlyInOffice()}
	if v := h.Tracker.CurrentVisit(); v != nil {
		dto := toVisitDTO(*v)
		status.CurrentVisit = &dto
	}
	writeJSON(w, http.StatusOK, status)
}

// ListVisits returns visit history, newest last. ?valid=true restricts to
// valid visits, the filter history views use.
func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	validOnly := r.URL.Query().Get("valid") == "true"

	visits := h.Tracker.Visits()
	dtos := make([]VisitDTO, 0, len(visits))
	for _, v := range visits {
		if validOnly && !v.IsValidVisit() {
			continue
		}
		dtos = append(dtos, toVisitDTO(v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProgress returns current-month progress and pace.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	calc := h.calculator()
	visits := h.Tracker.Visits()
	progress := calc.CurrentMonthProgress(visits)

	writeJSON(w, http.StatusOK, ProgressDTO{
		Current:    progress.Current,
		Goal:       progress.Goal,
		Percentage: progress.Percentage,
		Pace:       toPaceDTO(calc.PaceToGoal(visits)),
	})
}

// GetTrend returns a zero-filled trend series. Exactly one of ?days= or
// ?months= selects the bucket granularity; the default is 30 days.
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	calc := h.calculator()
	visits := h.Tracker.Visits()

	if monthsParam := r.URL.Query().Get("months"); monthsParam != "" {
		months, err := strconv.Atoi(monthsParam)
		if err != nil || months < 1 || months > 120 {
			writeError(w, http.StatusBadRequest, "months must be an integer in [1, 120]", err)
			return
		}
		writeJSON(w, http.StatusOK, toTrendDTO(calc.VisitTrendByMonths(visits, months)))
		return
	}

	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		d, err := strconv.Atoi(daysParam)
		if err != nil || d < 1 || d > 366 {
			writeError(w, http.StatusBadRequest, "days must be an integer in [1, 366]", err)
			return
		}
		days = d
	}
	writeJSON(w, http.StatusOK, toTrendDTO(calc.VisitTrendByDays(visits, days)))
}

// GetStreak returns the consecutive-month streak.
func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StreakDTO{Months: h.calculator().MonthlyStreak(h.Tracker.Visits())})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current settings snapshot.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentSettings())
}

// UpdateSettings replaces the settings snapshot.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings attendance.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(settings.OfficeLocations) > maxOfficeLocations {
		writeError(w, http.StatusBadRequest, "At most two office locations may be configured", nil)
		return
	}
	if settings.TrackingDays.Count() == 0 {
		writeError(w, http.StatusBadRequest, "At least one tracking day is required", nil)
		return
	}
	settings.MigrateLegacyLocation()

	if h.Store != nil {
		if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
			return
		}
	}

	h.mu.Lock()
	h.settings = settings
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, settings)
}

// ListHolidays returns the resolved holiday dates for a year (?year=,
// default: the clock's current year).
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.Clock.Now().Year()
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		y, err := strconv.Atoi(yearParam)
		if err != nil || y < 1900 || y > 2200 {
			writeError(w, http.StatusBadRequest, "year must be an integer in [1900, 2200]", err)
			return
		}
		year = y
	}

	settings := h.currentSettings()
	resolved := settings.Holidays.DatesInYear(year)
	dtos := make([]HolidayDTO, len(resolved))
	for i, rh := range resolved {
		dtos[i] = HolidayDTO{Date: rh.Date.Format("2006-01-02"), Name: rh.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Consolidate merges same-day duplicate visits.
func (h *Handler) Consolidate(w http.ResponseWriter, r *http.Request) {
	merged := h.Tracker.ConsolidateDuplicates(r.Context())
	visitsMergedTotal.Add(float64(merged))
	writeJSON(w, http.StatusOK, ConsolidateResponse{Merged: merged})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
