package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "billable/internal/errors"
	"billable/internal/pagination"
	"billable/internal/services"
)

// TimeEntryHandler handles time-entry requests, including the timer.
type TimeEntryHandler struct {
	timeEntryService services.TimeEntryServicer
	auditService     services.AuditServicer
}

// NewTimeEntryHandler creates a new TimeEntryHandler.
func NewTimeEntryHandler(timeEntryService services.TimeEntryServicer, auditService services.AuditServicer) *TimeEntryHandler {
	return &TimeEntryHandler{timeEntryService: timeEntryService, auditService: auditService}
}

// CreateTimeEntryRequest represents the request payload for logging time
type CreateTimeEntryRequest struct {
	ProjectID   string  `json:"project_id" binding:"required,uuid"`
	Date        *string `json:"date"`
	StartTime   string  `json:"start_time" binding:"omitempty,clock_time"`
	EndTime     string  `json:"end_time" binding:"omitempty,clock_time"`
	Duration    *int    `json:"duration" binding:"omitempty,gte=0"`
	Description string  `json:"description" binding:"max=2000"`
	IsBillable  *bool   `json:"is_billable"`
}

// UpdateTimeEntryRequest represents the request payload for updating a time entry.
type UpdateTimeEntryRequest struct {
	Date        *string `json:"date"`
	StartTime   *string `json:"start_time" binding:"omitempty,clock_time"`
	EndTime     *string `json:"end_time" binding:"omitempty,clock_time"`
	Duration    *int    `json:"duration" binding:"omitempty,gte=0"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsBillable  *bool   `json:"is_billable"`
}

// StartTimerRequest represents the request payload for starting a timer.
type StartTimerRequest struct {
	ProjectID   string `json:"project_id" binding:"required,uuid"`
	Description string `json:"description" binding:"max=2000"`
}

// ListTimeEntriesQuery holds the query parameters for listing time entries.
type ListTimeEntriesQuery struct {
	pagination.PageRequest
	ProjectID  string `form:"project_id" binding:"omitempty,uuid"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	IsBillable *bool  `form:"is_billable"`
	IsBilled   *bool  `form:"is_billed"`
}

// CreateTimeEntry handles logging a new time entry
// @Summary     Log a time entry
// @Description Log time against a project; duration is derived from clock times when omitted
// @Tags        time-entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTimeEntryRequest true "Time entry details"
// @Success     201 {object} models.TimeEntry "Time entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /time-entries [post]
func (h *TimeEntryHandler) CreateTimeEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if parsed, err := parseOptionalDate(req.Date, "date"); err != nil {
		respondWithError(c, err)
		return
	} else if parsed != nil {
		date = *parsed
	}

	entry, err := h.timeEntryService.CreateTimeEntry(userID, services.TimeEntryInput{
		ProjectID:   req.ProjectID,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    req.Duration,
		Description: req.Description,
		IsBillable:  req.IsBillable,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"time_entry": entry})
}

// ListTimeEntries returns the user's time entries
// @Summary     List time entries
// @Description Get a paginated, filtered list of the authenticated user's time entries
// @Tags        time-entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       project_id query string false "Filter by project"
// @Param       start_date query string false "Filter by start date (YYYY-MM-DD)"
// @Param       end_date query string false "Filter by end date (YYYY-MM-DD)"
// @Param       is_billable query bool false "Filter by billable flag"
// @Param       is_billed query bool false "Filter by billed flag"
// @Success     200 {object} pagination.PageResponse[models.TimeEntry] "Time entries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /time-entries [get]
func (h *TimeEntryHandler) ListTimeEntries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListTimeEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TimeEntryFilter{
		IsBillable: query.IsBillable,
		IsBilled:   query.IsBilled,
	}
	if query.ProjectID != "" {
		filter.ProjectID = &query.ProjectID
	}
	if query.StartDate != "" {
		start, err := parseDate(query.StartDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format"))
			return
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := parseDate(query.EndDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date format"))
			return
		}
		filter.EndDate = &end
	}

	result, err := h.timeEntryService.GetUserTimeEntries(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTimeEntry returns a single time entry
// @Summary     Get a time entry
// @Description Get a time entry by ID
// @Tags        time-entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Time entry ID"
// @Success     200 {object} models.TimeEntry "Time entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Time entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /time-entries/{id} [get]
func (h *TimeEntryHandler) GetTimeEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.timeEntryService.GetTimeEntryByID(userID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_entry": entry})
}

// UpdateTimeEntry updates an unbilled time entry
// @Summary     Update a time entry
// @Description Update an unbilled time entry; billed entries are immutable
// @Tags        time-entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Time entry ID"
// @Param       request body UpdateTimeEntryRequest true "Fields to update"
// @Success     200 {object} models.TimeEntry "Updated time entry"
// @Failure     400 {object} ErrorResponse "Invalid input or entry billed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Time entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /time-entries/{id} [put]
func (h *TimeEntryHandler) UpdateTimeEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.TimeEntryUpdateFields{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    req.Duration,
		Description: req.Description,
		IsBillable:  req.IsBillable,
	}
	if parsed, err := parseOptionalDate(req.Date, "date"); err != nil {
		respondWithError(c, err)
		return
	} else if parsed != nil {
		fields.Date = parsed
	}

	entry, err := h.timeEntryService.UpdateTimeEntry(userID, entryID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_entry": entry})
}

// DeleteTimeEntry deletes an unbilled time entry
// @Summary     Delete a time entry
// @Description Delete an unbilled time entry; billed entries cannot be deleted
// @Tags        time-entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Time entry ID"
// @Success     204 "Time entry deleted"
// @Failure     400 {object} ErrorResponse "Entry billed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Time entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /time-entries/{id} [delete]
func (h *TimeEntryHandler) DeleteTimeEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.timeEntryService.DeleteTimeEntry(userID, entryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// StartTimer starts a running time entry
// @Summary     Start a timer
// @Description Start a running time entry anchored at the current time
// @Tags        time-entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body StartTimerRequest true "Timer details"
// @Success     201 {object} models.TimeEntry "Timer started"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /time-entries/timer/start [post]
func (h *TimeEntryHandler) StartTimer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req StartTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.timeEntryService.StartTimer(userID, req.ProjectID, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"time_entry": entry})
}

// StopTimer stops a running time entry
// @Summary     Stop a timer
// @Description Stop a running time entry, deriving its duration
// @Tags        time-entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Time entry ID"
// @Success     200 {object} models.TimeEntry "Timer stopped"
// @Failure     400 {object} ErrorResponse "Timer not running or entry billed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Time entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /time-entries/timer/{id}/stop [put]
func (h *TimeEntryHandler) StopTimer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.timeEntryService.StopTimer(userID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_entry": entry})
}
