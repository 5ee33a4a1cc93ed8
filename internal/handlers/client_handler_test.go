package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "billable/internal/errors"
	"billable/internal/models"
	"billable/internal/pagination"
	"billable/internal/services"
)

// --- mock client service ---

type mockClientService struct {
	createClientFn      func(userID, name, company, email, phone, address, notes string, hourlyRate float64) (*models.Client, error)
	getUserClientsFn    func(userID string, page pagination.PageRequest, includeArchived bool) (*pagination.PageResponse[models.Client], error)
	getClientByIDFn     func(userID, clientID string) (*models.Client, error)
	updateClientFn      func(userID, clientID string, fields services.ClientUpdateFields) (*models.Client, error)
	setClientArchivedFn func(userID, clientID string, archived bool) (*models.Client, error)
}

func (m *mockClientService) CreateClient(userID, name, company, email, phone, address, notes string, hourlyRate float64) (*models.Client, error) {
	if m.createClientFn != nil {
		return m.createClientFn(userID, name, company, email, phone, address, notes, hourlyRate)
	}
	return &models.Client{Base: models.Base{ID: testClientID}, UserID: userID, Name: name}, nil
}

func (m *mockClientService) GetUserClients(userID string, page pagination.PageRequest, includeArchived bool) (*pagination.PageResponse[models.Client], error) {
	if m.getUserClientsFn != nil {
		return m.getUserClientsFn(userID, page, includeArchived)
	}
	resp := pagination.NewPageResponse([]models.Client{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockClientService) GetClientByID(userID, clientID string) (*models.Client, error) {
	if m.getClientByIDFn != nil {
		return m.getClientByIDFn(userID, clientID)
	}
	return &models.Client{Base: models.Base{ID: clientID}, UserID: userID}, nil
}

func (m *mockClientService) UpdateClient(userID, clientID string, fields services.ClientUpdateFields) (*models.Client, error) {
	if m.updateClientFn != nil {
		return m.updateClientFn(userID, clientID, fields)
	}
	return &models.Client{Base: models.Base{ID: clientID}, UserID: userID}, nil
}

func (m *mockClientService) SetClientArchived(userID, clientID string, archived bool) (*models.Client, error) {
	if m.setClientArchivedFn != nil {
		return m.setClientArchivedFn(userID, clientID, archived)
	}
	return &models.Client{Base: models.Base{ID: clientID}, UserID: userID, IsArchived: archived}, nil
}

// verify interface compliance
var _ services.ClientServicer = (*mockClientService)(nil)

func setupClientRouter(handler *ClientHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/clients", handler.CreateClient)
	auth.GET("/clients", handler.ListClients)
	auth.GET("/clients/:id", handler.GetClient)
	auth.PUT("/clients/:id", handler.UpdateClient)
	auth.POST("/clients/:id/archive", handler.ArchiveClient)
	auth.POST("/clients/:id/unarchive", handler.UnarchiveClient)
	return r
}

func TestClientHandler_ArchiveClient(t *testing.T) {
	t.Run("archives without a body", func(t *testing.T) {
		clientSvc := &mockClientService{
			setClientArchivedFn: func(userID, clientID string, archived bool) (*models.Client, error) {
				if !archived {
					t.Error("expected archived=true")
				}
				return &models.Client{Base: models.Base{ID: clientID}, UserID: userID, IsArchived: true}, nil
			},
		}
		handler := NewClientHandler(clientSvc, &mockAuditService{})
		r := setupClientRouter(handler)

		rec := doRequest(r, "POST", "/clients/"+testClientID+"/archive", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		client := parseJSON(t, rec)["client"].(map[string]interface{})
		if client["is_archived"] != true {
			t.Errorf("expected is_archived true, got %v", client["is_archived"])
		}
	})

	t.Run("returns 404 on unknown client", func(t *testing.T) {
		clientSvc := &mockClientService{
			setClientArchivedFn: func(_, _ string, _ bool) (*models.Client, error) {
				return nil, apperrors.ErrClientNotFound
			},
		}
		handler := NewClientHandler(clientSvc, &mockAuditService{})
		r := setupClientRouter(handler)

		rec := doRequest(r, "POST", "/clients/"+testClientID+"/archive", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CLIENT_NOT_FOUND")
	})
}

func TestClientHandler_UnarchiveClient(t *testing.T) {
	clientSvc := &mockClientService{
		setClientArchivedFn: func(userID, clientID string, archived bool) (*models.Client, error) {
			if archived {
				t.Error("expected archived=false")
			}
			return &models.Client{Base: models.Base{ID: clientID}, UserID: userID, IsArchived: false}, nil
		},
	}
	handler := NewClientHandler(clientSvc, &mockAuditService{})
	r := setupClientRouter(handler)

	rec := doRequest(r, "POST", "/clients/"+testClientID+"/unarchive", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	client := parseJSON(t, rec)["client"].(map[string]interface{})
	if client["is_archived"] != false {
		t.Errorf("expected is_archived false, got %v", client["is_archived"])
	}
}
