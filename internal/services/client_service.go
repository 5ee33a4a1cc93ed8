package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "billable/internal/errors"
	"billable/internal/models"
	"billable/internal/pagination"
)

// clientService handles client-related business logic.
type clientService struct {
	db *gorm.DB
}

// NewClientService creates a new ClientServicer.
func NewClientService(db *gorm.DB) ClientServicer {
	return &clientService{db: db}
}

// CreateClient creates a new client for a user.
func (s *clientService) CreateClient(userID, name, company, email, phone, address, notes string, hourlyRate float64) (*models.Client, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "client name is required")
	}
	if hourlyRate < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "hourly rate must not be negative")
	}

	client := &models.Client{
		UserID:     userID,
		Name:       name,
		Company:    company,
		Email:      email,
		Phone:      phone,
		Address:    address,
		Notes:      notes,
		HourlyRate: hourlyRate,
	}

	if err := s.db.Create(client).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return client, nil
}

// GetUserClients retrieves a paginated list of clients for a user.
// Archived clients are excluded unless includeArchived is set.
func (s *clientService) GetUserClients(userID string, page pagination.PageRequest, includeArchived bool) (*pagination.PageResponse[models.Client], error) {
	page.Defaults()

	base := s.db.Model(&models.Client{}).Where("user_id = ?", userID)
	if !includeArchived {
		base = base.Where("is_archived = ?", false)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var clients []models.Client
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&clients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(clients, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetClientByID retrieves a client by ID for a specific user.
func (s *clientService) GetClientByID(userID, clientID string) (*models.Client, error) {
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &client, nil
}

// UpdateClient updates the mutable fields of a client.
func (s *clientService) UpdateClient(userID, clientID string, fields ClientUpdateFields) (*models.Client, error) {
	client, err := s.GetClientByID(userID, clientID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Company != nil {
		updates["company"] = *fields.Company
	}
	if fields.Email != nil {
		updates["email"] = *fields.Email
	}
	if fields.Phone != nil {
		updates["phone"] = *fields.Phone
	}
	if fields.Address != nil {
		updates["address"] = *fields.Address
	}
	if fields.Notes != nil {
		updates["notes"] = *fields.Notes
	}
	if fields.HourlyRate != nil && *fields.HourlyRate >= 0 {
		updates["hourly_rate"] = *fields.HourlyRate
	}

	if len(updates) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no fields to update")
	}

	if err := s.db.Model(client).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("id = ?", clientID).First(client).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return client, nil
}

// SetClientArchived archives or unarchives a client. Archiving never
// touches the client's projects, time entries, or invoices.
func (s *clientService) SetClientArchived(userID, clientID string, archived bool) (*models.Client, error) {
	client, err := s.GetClientByID(userID, clientID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(client).Update("is_archived", archived).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	client.IsArchived = archived

	return client, nil
}
