package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "billable/internal/errors"
	"billable/internal/pagination"
	"billable/internal/services"
)

// ClientHandler handles client-related requests.
type ClientHandler struct {
	clientService services.ClientServicer
	auditService  services.AuditServicer
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService services.ClientServicer, auditService services.AuditServicer) *ClientHandler {
	return &ClientHandler{clientService: clientService, auditService: auditService}
}

// CreateClientRequest represents the request payload for creating a client
type CreateClientRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=200"`
	Company    string  `json:"company" binding:"max=200"`
	Email      string  `json:"email" binding:"omitempty,email,max=255"`
	Phone      string  `json:"phone" binding:"max=50"`
	Address    string  `json:"address" binding:"max=500"`
	Notes      string  `json:"notes" binding:"max=2000"`
	HourlyRate float64 `json:"hourly_rate" binding:"gte=0"`
}

// UpdateClientRequest represents the request payload for updating a client.
type UpdateClientRequest struct {
	Name       *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Company    *string  `json:"company" binding:"omitempty,max=200"`
	Email      *string  `json:"email" binding:"omitempty,email,max=255"`
	Phone      *string  `json:"phone" binding:"omitempty,max=50"`
	Address    *string  `json:"address" binding:"omitempty,max=500"`
	Notes      *string  `json:"notes" binding:"omitempty,max=2000"`
	HourlyRate *float64 `json:"hourly_rate" binding:"omitempty,gte=0"`
}

// ListClientsQuery holds the query parameters for listing clients.
type ListClientsQuery struct {
	pagination.PageRequest
	IncludeArchived bool `form:"include_archived"`
}

// CreateClient handles the creation of a new client
// @Summary     Create a client
// @Description Create a new client for the authenticated user
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateClientRequest true "Client details"
// @Success     201 {object} models.Client "Client created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	client, err := h.clientService.CreateClient(userID, req.Name, req.Company, req.Email, req.Phone, req.Address, req.Notes, req.HourlyRate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CLIENT", "client", client.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// ListClients returns the user's clients
// @Summary     List clients
// @Description Get a paginated list of the authenticated user's clients
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       include_archived query bool false "Include archived clients"
// @Success     200 {object} pagination.PageResponse[models.Client] "Clients"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.clientService.GetUserClients(userID, query.PageRequest, query.IncludeArchived)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetClient returns a single client
// @Summary     Get a client
// @Description Get a client by ID
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Client ID"
// @Success     200 {object} models.Client "Client"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	clientID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	client, err := h.clientService.GetClientByID(userID, clientID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

// UpdateClient updates a client
// @Summary     Update a client
// @Description Update a client's details
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Client ID"
// @Param       request body UpdateClientRequest true "Fields to update"
// @Success     200 {object} models.Client "Updated client"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	clientID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	client, err := h.clientService.UpdateClient(userID, clientID, services.ClientUpdateFields{
		Name:       req.Name,
		Company:    req.Company,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Notes:      req.Notes,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CLIENT", "client", client.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"client": client})
}

// ArchiveClient archives a client
// @Summary     Archive a client
// @Description Archive a client; historical data is untouched
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Client ID"
// @Success     200 {object} models.Client "Updated client"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /clients/{id}/archive [post]
func (h *ClientHandler) ArchiveClient(c *gin.Context) {
	h.setArchived(c, true, "ARCHIVE_CLIENT")
}

// UnarchiveClient restores an archived client
// @Summary     Unarchive a client
// @Description Restore an archived client
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Client ID"
// @Success     200 {object} models.Client "Updated client"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /clients/{id}/unarchive [post]
func (h *ClientHandler) UnarchiveClient(c *gin.Context) {
	h.setArchived(c, false, "UNARCHIVE_CLIENT")
}

func (h *ClientHandler) setArchived(c *gin.Context, archived bool, action string) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	clientID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	client, err := h.clientService.SetClientArchived(userID, clientID, archived)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, action, "client", client.ID, c.ClientIP(),
		map[string]interface{}{"archived": archived})

	c.JSON(http.StatusOK, gin.H{"client": client})
}
