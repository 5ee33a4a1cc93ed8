package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"billable/internal/handlers"
	"billable/internal/logger"
	"billable/internal/middleware"
	"billable/internal/models"
	"billable/internal/services"
	"billable/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.TimeEntry{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	clientService := services.NewClientService(db)
	projectService := services.NewProjectService(db, clientService)
	timeEntryService := services.NewTimeEntryService(db, projectService)
	invoiceService := services.NewInvoiceService(db)
	dashboardService := services.NewDashboardService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	clientHandler := handlers.NewClientHandler(clientService, auditService)
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	timeEntryHandler := handlers.NewTimeEntryHandler(timeEntryService, auditService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	clients := protected.Group("/clients")
	clients.POST("", clientHandler.CreateClient)
	clients.GET("", clientHandler.ListClients)
	clients.GET("/:id", clientHandler.GetClient)
	clients.PUT("/:id", clientHandler.UpdateClient)
	clients.POST("/:id/archive", clientHandler.ArchiveClient)
	clients.POST("/:id/unarchive", clientHandler.UnarchiveClient)

	projects := protected.Group("/projects")
	projects.POST("", projectHandler.CreateProject)
	projects.GET("", projectHandler.ListProjects)
	projects.GET("/:id", projectHandler.GetProject)
	projects.PUT("/:id", projectHandler.UpdateProject)
	projects.DELETE("/:id", projectHandler.DeleteProject)

	timeEntries := protected.Group("/time-entries")
	timeEntries.POST("", timeEntryHandler.CreateTimeEntry)
	timeEntries.GET("", timeEntryHandler.ListTimeEntries)
	timeEntries.POST("/timer/start", timeEntryHandler.StartTimer)
	timeEntries.GET("/:id", timeEntryHandler.GetTimeEntry)
	timeEntries.PUT("/:id", timeEntryHandler.UpdateTimeEntry)
	timeEntries.DELETE("/:id", timeEntryHandler.DeleteTimeEntry)
	timeEntries.PUT("/timer/:id/stop", timeEntryHandler.StopTimer)

	invoices := protected.Group("/invoices")
	invoices.POST("", invoiceHandler.CreateInvoice)
	invoices.GET("", invoiceHandler.ListInvoices)
	invoices.GET("/next-number", invoiceHandler.NextNumber)
	invoices.GET("/:id", invoiceHandler.GetInvoice)
	invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
	invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
	invoices.PUT("/:id/mark-paid", invoiceHandler.MarkPaid)

	protected.GET("/dashboard/summary", dashboardHandler.GetSummary)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// createClient creates a client and returns its ID.
func (app *testApp) createClient(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/clients",
		fmt.Sprintf(`{"name":%q,"hourly_rate":100}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client failed: %d %s", rec.Code, rec.Body.String())
	}
	client := parseJSON(t, rec)["client"].(map[string]interface{})
	return client["id"].(string)
}

// createProject creates a project under a client and returns its ID.
func (app *testApp) createProject(t *testing.T, token, clientID, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/projects",
		fmt.Sprintf(`{"client_id":%q,"name":%q,"hourly_rate":100}`, clientID, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project failed: %d %s", rec.Code, rec.Body.String())
	}
	project := parseJSON(t, rec)["project"].(map[string]interface{})
	return project["id"].(string)
}

// logTime creates a time entry and returns its ID.
func (app *testApp) logTime(t *testing.T, token, projectID string, duration int) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/time-entries",
		fmt.Sprintf(`{"project_id":%q,"duration":%d,"description":"work"}`, projectID, duration), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create time entry failed: %d %s", rec.Code, rec.Body.String())
	}
	entry := parseJSON(t, rec)["time_entry"].(map[string]interface{})
	return entry["id"].(string)
}
