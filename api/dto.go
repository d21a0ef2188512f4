/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  engine's internal model from the external contract consumed by the
  widget/UI collaborators.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Validation happens in handlers; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SignalRequest is the body of an "entered office region" signal.
// Exit signals carry no body; the engine acts on current state.
type SignalRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SessionDTO is one entry/exit interval.
type SessionDTO struct {
	EntryTime string  `json:"entry_time"`
	ExitTime  *string `json:"exit_time,omitempty"`
}

// VisitDTO is a visit in API responses.
type VisitDTO struct {
	ID              string               `json:"id"`
	Date            string               `json:"date"`
	Sessions        []SessionDTO         `json:"sessions"`
	Coordinate      *attendance.GeoPoint `json:"coordinate,omitempty"`
	Active          bool                 `json:"active"`
	Valid           bool                 `json:"valid"`
	DurationMinutes *int                 `json:"duration_minutes,omitempty"`
}

// StatusDTO reports the live in-office state.
type StatusDTO struct {
	InOffice     bool      `json:"in_office"`
	CurrentVisit *VisitDTO `json:"current_visit,omitempty"`
}

// SignalResponse reports what a signal did to the state machine.
type SignalResponse struct {
	Transition string `json:"transition"`
}

// PaceDTO is the pace-to-goal result. DaysPerWeek is set only when the
// goal is still reachable; the other kinds are displayable sentinels.
type PaceDTO struct {
	Kind        string   `json:"kind"`
	DaysPerWeek *float64 `json:"days_per_week,omitempty"`
}

// ProgressDTO is the current-month progress plus pace.
type ProgressDTO struct {
	Current    int     `json:"current"`
	Goal       int     `json:"goal"`
	Percentage float64 `json:"percentage"`
	Pace       PaceDTO `json:"pace"`
}

// TrendPointDTO is one chart bucket.
type TrendPointDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TrendDTO is a fixed-length trend series.
type TrendDTO struct {
	Points        []TrendPointDTO `json:"points"`
	HasEnoughData bool            `json:"has_enough_data"`
}

// StreakDTO is the consecutive-month streak.
type StreakDTO struct {
	Months int `json:"months"`
}

// HolidayDTO is one resolved holiday date.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// ConsolidateResponse reports a duplicate-day cleanup run.
type ConsolidateResponse struct {
	Merged int `json:"merged"`
}

// ErrorResponse is the error body for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toVisitDTO(v attendance.Visit) VisitDTO {
	dto := VisitDTO{
		ID:         v.ID,
		Date:       v.Date.Format("2006-01-02"),
		Sessions:   make([]SessionDTO, len(v.Sessions)),
		Coordinate: v.Coordinate,
		Active:     v.IsActiveSession(),
		Valid:      v.IsValidVisit(),
	}
	for i, s := range v.Sessions {
		dto.Sessions[i] = SessionDTO{EntryTime: s.EntryTime.Format(time.RFC3339)}
		if s.ExitTime != nil {
			exit := s.ExitTime.Format(time.RFC3339)
			dto.Sessions[i].ExitTime = &exit
		}
	}
	if d, ok := v.Duration(); ok {
		minutes := int(d.Minutes())
		dto.DurationMinutes = &minutes
	}
	return dto
}

func toPaceDTO(p attendance.Pace) PaceDTO {
	dto := PaceDTO{Kind: string(p.Kind)}
	if p.Kind == attendance.PaceOnTrack {
		rate := p.DaysPerWeek.InexactFloat64()
		dto.DaysPerWeek = &rate
	}
	return dto
}

func toTrendDTO(points []attendance.TrendPoint) TrendDTO {
	dto := TrendDTO{
		Points:        make([]TrendPointDTO, len(points)),
		HasEnoughData: attendance.HasEnoughChartData(points),
	}
	for i, p := range points {
		dto.Points[i] = TrendPointDTO{Date: p.Date.Format("2006-01-02"), Count: p.Count}
	}
	return dto
}
