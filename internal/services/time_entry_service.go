package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "billable/internal/errors"
	"billable/internal/models"
	"billable/internal/pagination"
)

// minutesPerDay is used when a time range crosses midnight.
const minutesPerDay = 24 * 60

// timeEntryService handles time-entry business logic, including the
// billed-state guard: a billed entry rejects every mutation until the
// invoice that billed it is deleted.
type timeEntryService struct {
	db             *gorm.DB
	projectService ProjectServicer
}

// NewTimeEntryService creates a new TimeEntryServicer.
func NewTimeEntryService(db *gorm.DB, projectService ProjectServicer) TimeEntryServicer {
	return &timeEntryService{db: db, projectService: projectService}
}

// parseClock parses a wall-clock time in HH:MM form into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, use HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// deriveDuration computes the duration in minutes between two clock
// times. A negative span means the entry crossed midnight, so a full day
// is added.
func deriveDuration(startTime, endTime string) (int, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return 0, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return 0, err
	}

	duration := end - start
	if duration < 0 {
		duration += minutesPerDay
	}
	return duration, nil
}

// CreateTimeEntry creates a time entry on one of the user's projects.
// When start and end times are given without an explicit duration, the
// duration is derived from the clock times.
func (s *timeEntryService) CreateTimeEntry(userID string, input TimeEntryInput) (*models.TimeEntry, error) {
	if input.ProjectID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "project ID is required")
	}

	if _, err := s.projectService.GetProjectByID(userID, input.ProjectID); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	duration := 0
	switch {
	case input.Duration != nil:
		if *input.Duration < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration must not be negative")
		}
		duration = *input.Duration
	case input.StartTime != "" && input.EndTime != "":
		derived, err := deriveDuration(input.StartTime, input.EndTime)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		duration = derived
	}

	isBillable := true
	if input.IsBillable != nil {
		isBillable = *input.IsBillable
	}

	entry := &models.TimeEntry{
		UserID:      userID,
		ProjectID:   input.ProjectID,
		Date:        date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Duration:    duration,
		Description: input.Description,
		IsBillable:  isBillable,
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return entry, nil
}

// GetUserTimeEntries retrieves a paginated, filtered list of the user's time entries.
func (s *timeEntryService) GetUserTimeEntries(userID string, page pagination.PageRequest, filter TimeEntryFilter) (*pagination.PageResponse[models.TimeEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.TimeEntry{}).Where("user_id = ?", userID)
	if filter.ProjectID != nil {
		base = base.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.StartDate != nil {
		base = base.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		base = base.Where("date <= ?", *filter.EndDate)
	}
	if filter.IsBillable != nil {
		base = base.Where("is_billable = ?", *filter.IsBillable)
	}
	if filter.IsBilled != nil {
		base = base.Where("is_billed = ?", *filter.IsBilled)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.TimeEntry
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Project").
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTimeEntryByID retrieves a time entry by ID for a specific user.
func (s *timeEntryService) GetTimeEntryByID(userID, entryID string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTimeEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// UpdateTimeEntry updates an unbilled time entry. The billed guard runs
// before any field validation. When either clock time changes and no
// explicit duration is supplied, the duration is re-derived.
func (s *timeEntryService) UpdateTimeEntry(userID, entryID string, fields TimeEntryUpdateFields) (*models.TimeEntry, error) {
	entry, err := s.GetTimeEntryByID(userID, entryID)
	if err != nil {
		return nil, err
	}

	if entry.IsBilled {
		return nil, apperrors.ErrTimeEntryBilled
	}

	updates := make(map[string]interface{})
	if fields.Date != nil {
		updates["date"] = *fields.Date
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.IsBillable != nil {
		updates["is_billable"] = *fields.IsBillable
	}

	startTime := entry.StartTime
	endTime := entry.EndTime
	timesChanged := false
	if fields.StartTime != nil {
		startTime = *fields.StartTime
		updates["start_time"] = *fields.StartTime
		timesChanged = true
	}
	if fields.EndTime != nil {
		endTime = *fields.EndTime
		updates["end_time"] = *fields.EndTime
		timesChanged = true
	}

	switch {
	case fields.Duration != nil:
		if *fields.Duration < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration must not be negative")
		}
		updates["duration"] = *fields.Duration
	case timesChanged && startTime != "" && endTime != "":
		derived, err := deriveDuration(startTime, endTime)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		updates["duration"] = derived
	}

	if len(updates) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no fields to update")
	}

	if err := s.db.Model(entry).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("id = ?", entryID).First(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return entry, nil
}

// DeleteTimeEntry deletes an unbilled time entry.
func (s *timeEntryService) DeleteTimeEntry(userID, entryID string) error {
	entry, err := s.GetTimeEntryByID(userID, entryID)
	if err != nil {
		return err
	}

	if entry.IsBilled {
		return apperrors.ErrTimeEntryBilled
	}

	if err := s.db.Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// StartTimer creates a running time entry anchored at the current time.
func (s *timeEntryService) StartTimer(userID, projectID, description string) (*models.TimeEntry, error) {
	if projectID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "project ID is required")
	}

	if _, err := s.projectService.GetProjectByID(userID, projectID); err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &models.TimeEntry{
		UserID:      userID,
		ProjectID:   projectID,
		Date:        now,
		StartTime:   now.Format("15:04"),
		Duration:    0,
		Description: description,
		IsBillable:  true,
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return entry, nil
}

// StopTimer stops a running time entry, stamping the end time and
// deriving the duration from the clock times.
func (s *timeEntryService) StopTimer(userID, entryID string) (*models.TimeEntry, error) {
	entry, err := s.GetTimeEntryByID(userID, entryID)
	if err != nil {
		return nil, err
	}

	if entry.IsBilled {
		return nil, apperrors.ErrTimeEntryBilled
	}
	if entry.StartTime == "" || entry.EndTime != "" {
		return nil, apperrors.ErrTimerNotRunning
	}

	endTime := time.Now().Format("15:04")
	duration, err := deriveDuration(entry.StartTime, endTime)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"end_time": endTime,
		"duration": duration,
	}
	if err := s.db.Model(entry).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	entry.EndTime = endTime
	entry.Duration = duration

	return entry, nil
}
