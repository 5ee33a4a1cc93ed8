package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "billable/internal/errors"
	"billable/internal/models"
	"billable/internal/pagination"
	"billable/internal/services"
)

// ProjectHandler handles project-related requests.
type ProjectHandler struct {
	projectService services.ProjectServicer
	auditService   services.AuditServicer
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService services.ProjectServicer, auditService services.AuditServicer) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, auditService: auditService}
}

// CreateProjectRequest represents the request payload for creating a project
type CreateProjectRequest struct {
	ClientID    string  `json:"client_id" binding:"required,uuid"`
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	BudgetType  string  `json:"budget_type" binding:"omitempty,budget_type"`
	HourlyRate  float64 `json:"hourly_rate" binding:"gte=0"`
	FixedPrice  float64 `json:"fixed_price" binding:"gte=0"`
	Color       string  `json:"color" binding:"omitempty,hex_color"`
}

// UpdateProjectRequest represents the request payload for updating a project.
type UpdateProjectRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Status      *string  `json:"status" binding:"omitempty,project_status"`
	BudgetType  *string  `json:"budget_type" binding:"omitempty,budget_type"`
	HourlyRate  *float64 `json:"hourly_rate" binding:"omitempty,gte=0"`
	FixedPrice  *float64 `json:"fixed_price" binding:"omitempty,gte=0"`
	Color       *string  `json:"color" binding:"omitempty,hex_color"`
}

// ListProjectsQuery holds the query parameters for listing projects.
type ListProjectsQuery struct {
	pagination.PageRequest
	Status   string `form:"status" binding:"omitempty,project_status"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
}

// CreateProject handles the creation of a new project
// @Summary     Create a project
// @Description Create a new project under one of the user's clients
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateProjectRequest true "Project details"
// @Success     201 {object} models.Project "Project created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(userID, req.ClientID, req.Name, req.Description,
		models.BudgetType(req.BudgetType), req.HourlyRate, req.FixedPrice, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PROJECT", "project", project.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "client_id": req.ClientID})

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// ListProjects returns the user's projects
// @Summary     List projects
// @Description Get a paginated list of the authenticated user's projects
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       status query string false "Filter by status"
// @Param       client_id query string false "Filter by client"
// @Success     200 {object} pagination.PageResponse[models.Project] "Projects"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListProjectsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.ProjectFilter{}
	if query.Status != "" {
		status := models.ProjectStatus(query.Status)
		filter.Status = &status
	}
	if query.ClientID != "" {
		filter.ClientID = &query.ClientID
	}

	result, err := h.projectService.GetUserProjects(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProject returns a single project
// @Summary     Get a project
// @Description Get a project by ID
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {object} models.Project "Project"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	project, err := h.projectService.GetProjectByID(userID, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// UpdateProject updates a project
// @Summary     Update a project
// @Description Update a project's details or status
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Param       request body UpdateProjectRequest true "Fields to update"
// @Success     200 {object} models.Project "Updated project"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.ProjectUpdateFields{
		Name:        req.Name,
		Description: req.Description,
		HourlyRate:  req.HourlyRate,
		FixedPrice:  req.FixedPrice,
		Color:       req.Color,
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		fields.Status = &status
	}
	if req.BudgetType != nil {
		budgetType := models.BudgetType(*req.BudgetType)
		fields.BudgetType = &budgetType
	}

	project, err := h.projectService.UpdateProject(userID, projectID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PROJECT", "project", project.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// DeleteProject deletes a project
// @Summary     Delete a project
// @Description Permanently delete a project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     204 "Project deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.projectService.DeleteProject(userID, projectID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PROJECT", "project", projectID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
