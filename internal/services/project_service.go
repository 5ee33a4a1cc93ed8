package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "billable/internal/errors"
	"billable/internal/models"
	"billable/internal/pagination"
)

// projectService handles project-related business logic.
type projectService struct {
	db            *gorm.DB
	clientService ClientServicer
}

// NewProjectService creates a new ProjectServicer.
func NewProjectService(db *gorm.DB, clientService ClientServicer) ProjectServicer {
	return &projectService{db: db, clientService: clientService}
}

// CreateProject creates a new project under one of the user's clients.
func (s *projectService) CreateProject(userID, clientID, name, description string, budgetType models.BudgetType, hourlyRate, fixedPrice float64, color string) (*models.Project, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "project name is required")
	}
	if clientID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "client ID is required")
	}
	if hourlyRate < 0 || fixedPrice < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rates must not be negative")
	}

	// Verify the client exists and belongs to the user.
	if _, err := s.clientService.GetClientByID(userID, clientID); err != nil {
		return nil, err
	}

	if budgetType == "" {
		budgetType = models.BudgetTypeHourly
	}

	project := &models.Project{
		UserID:      userID,
		ClientID:    clientID,
		Name:        name,
		Description: description,
		Status:      models.ProjectStatusActive,
		BudgetType:  budgetType,
		HourlyRate:  hourlyRate,
		FixedPrice:  fixedPrice,
		Color:       color,
	}

	if err := s.db.Create(project).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return project, nil
}

// GetUserProjects retrieves a paginated, filtered list of the user's projects.
func (s *projectService) GetUserProjects(userID string, page pagination.PageRequest, filter ProjectFilter) (*pagination.PageResponse[models.Project], error) {
	page.Defaults()

	base := s.db.Model(&models.Project{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		base = base.Where("client_id = ?", *filter.ClientID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var projects []models.Project
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Client").
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(projects, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProjectByID retrieves a project by ID for a specific user.
func (s *projectService) GetProjectByID(userID, projectID string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Where("id = ? AND user_id = ?", projectID, userID).
		Preload("Client").
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &project, nil
}

// UpdateProject updates the mutable fields of a project.
func (s *projectService) UpdateProject(userID, projectID string, fields ProjectUpdateFields) (*models.Project, error) {
	project, err := s.GetProjectByID(userID, projectID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.BudgetType != nil {
		updates["budget_type"] = *fields.BudgetType
	}
	if fields.HourlyRate != nil && *fields.HourlyRate >= 0 {
		updates["hourly_rate"] = *fields.HourlyRate
	}
	if fields.FixedPrice != nil && *fields.FixedPrice >= 0 {
		updates["fixed_price"] = *fields.FixedPrice
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}

	if len(updates) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no fields to update")
	}

	if err := s.db.Model(project).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("id = ?", projectID).First(project).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return project, nil
}

// DeleteProject permanently deletes a project. Time entries keep their
// project reference; billed history stays intact on the invoice side.
func (s *projectService) DeleteProject(userID, projectID string) error {
	project, err := s.GetProjectByID(userID, projectID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(project).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
