package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-tracker/internal/api"
	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/services"
)

// Handler holds the HTTP endpoint implementations over the API facade.
type Handler struct {
	api    *api.API
	logger logging.Logger
}

// NewHandler creates a new handler set.
func NewHandler(a *api.API, logger logging.Logger) *Handler {
	return &Handler{api: a, logger: logger}
}

type taskPayload struct {
	TaskName string   `json:"task_name" binding:"required"`
	Hours    *float64 `json:"hours" binding:"omitempty,gt=0"`
}

type clockPayload struct {
	Action    string        `json:"action" binding:"required,clockaction"`
	Timestamp *time.Time    `json:"timestamp"`
	Tasks     []taskPayload `json:"tasks" binding:"omitempty,dive"`
}

type breakPayload struct {
	Start time.Time  `json:"start" binding:"required"`
	End   *time.Time `json:"end"`
}

type sessionPayload struct {
	ClockIn  time.Time      `json:"clock_in" binding:"required"`
	ClockOut *time.Time     `json:"clock_out"`
	Breaks   []breakPayload `json:"breaks" binding:"omitempty,dive"`
	Tasks    []taskPayload  `json:"tasks" binding:"omitempty,dive"`
}

type replaceDayPayload struct {
	Sessions []sessionPayload `json:"sessions" binding:"omitempty,dive"`
}

type stateResponse struct {
	State domain.ClockState `json:"state"`
}

type breakResponse struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

type taskResponse struct {
	TaskName string   `json:"task_name"`
	Hours    *float64 `json:"hours,omitempty"`
}

type sessionResponse struct {
	ClockIn  time.Time       `json:"clock_in"`
	ClockOut *time.Time      `json:"clock_out,omitempty"`
	Breaks   []breakResponse `json:"breaks,omitempty"`
	Tasks    []taskResponse  `json:"tasks,omitempty"`
}

type dayResponse struct {
	Date     string            `json:"date"`
	Sessions []sessionResponse `json:"sessions"`
	Totals   domain.DayTotals  `json:"totals"`
}

type monthResponse struct {
	Period string        `json:"period"`
	Closed bool          `json:"closed"`
	Days   []dayResponse `json:"days"`
}

// Clock handles POST /clock.
func (h *Handler) Clock(c *gin.Context) {
	var payload clockPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, errors.NewValidationError("invalid clock request: "+err.Error(), err))
		return
	}

	state, err := h.api.Clock(c.Request.Context(), services.ClockRequest{
		UserID:    currentUserID(c),
		Action:    services.ClockAction(payload.Action),
		Timestamp: payload.Timestamp,
		Tasks:     tasksFromPayload(payload.Tasks),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, stateResponse{State: state})
}

// State handles GET /state.
func (h *Handler) State(c *gin.Context) {
	state, err := h.api.CurrentState(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stateResponse{State: state})
}

// GetDay handles GET /days/:date. A day with no stored data renders as an
// empty day rather than a 404.
func (h *Handler) GetDay(c *gin.Context) {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		respondError(c, errors.NewInvalidFormatError(c.Param("date")))
		return
	}

	record, err := h.api.GetDay(c.Request.Context(), currentUserID(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		empty := domain.NewAttendanceRecord(currentUserID(c), date)
		respondOK(c, http.StatusOK, dayFromRecord(*empty))
		return
	}

	respondOK(c, http.StatusOK, dayFromRecord(*record))
}

// ReplaceDay handles PUT /days/:date.
func (h *Handler) ReplaceDay(c *gin.Context) {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		respondError(c, errors.NewInvalidFormatError(c.Param("date")))
		return
	}

	var payload replaceDayPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, errors.NewValidationError("invalid replacement: "+err.Error(), err))
		return
	}

	sessions := make([]domain.WorkSession, 0, len(payload.Sessions))
	for _, p := range payload.Sessions {
		sessions = append(sessions, sessionFromPayload(p))
	}

	if err := h.api.ReplaceDay(c.Request.Context(), currentUserID(c), date, sessions); err != nil {
		respondError(c, err)
		return
	}

	record, err := h.api.GetDay(c.Request.Context(), currentUserID(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, dayFromRecord(*record))
}

// GetMonth handles GET /months/:period.
func (h *Handler) GetMonth(c *gin.Context) {
	userID := currentUserID(c)
	period := c.Param("period")

	records, err := h.api.GetMonth(c.Request.Context(), userID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	closed, err := h.api.IsMonthClosed(c.Request.Context(), userID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	days := make([]dayResponse, 0, len(records))
	for _, record := range records {
		days = append(days, dayFromRecord(record))
	}

	respondOK(c, http.StatusOK, monthResponse{Period: period, Closed: closed, Days: days})
}

// CloseMonth handles POST /months/:period/close.
func (h *Handler) CloseMonth(c *gin.Context) {
	userID := currentUserID(c)
	period := c.Param("period")

	if err := h.api.CloseMonth(c.Request.Context(), userID, period); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"period": period, "closed": true})
}

func tasksFromPayload(payloads []taskPayload) []domain.TaskAnnotation {
	if len(payloads) == 0 {
		return nil
	}
	tasks := make([]domain.TaskAnnotation, len(payloads))
	for i, p := range payloads {
		tasks[i] = domain.TaskAnnotation{TaskName: p.TaskName, Hours: p.Hours}
	}
	return tasks
}

func sessionFromPayload(p sessionPayload) domain.WorkSession {
	session := domain.WorkSession{
		ClockIn: p.ClockIn.UTC(),
		Tasks:   tasksFromPayload(p.Tasks),
	}
	if p.ClockOut != nil {
		out := p.ClockOut.UTC()
		session.ClockOut = &out
	}
	for _, bp := range p.Breaks {
		brk := domain.Break{Start: bp.Start.UTC()}
		if bp.End != nil {
			end := bp.End.UTC()
			brk.End = &end
		}
		session.Breaks = append(session.Breaks, brk)
	}
	return session
}

func dayFromRecord(record domain.AttendanceRecord) dayResponse {
	sessions := make([]sessionResponse, 0, len(record.Sessions))
	for _, session := range record.Sessions {
		sr := sessionResponse{ClockIn: session.ClockIn, ClockOut: session.ClockOut}
		for _, brk := range session.Breaks {
			sr.Breaks = append(sr.Breaks, breakResponse{Start: brk.Start, End: brk.End})
		}
		for _, task := range session.Tasks {
			sr.Tasks = append(sr.Tasks, taskResponse{TaskName: task.TaskName, Hours: task.Hours})
		}
		sessions = append(sessions, sr)
	}

	return dayResponse{
		Date:     domain.FormatDate(record.Date),
		Sessions: sessions,
		Totals:   record.Totals,
	}
}
