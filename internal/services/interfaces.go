package services

import (
	"time"

	"billable/internal/billing"
	"billable/internal/models"
	"billable/internal/pagination"
)

// ProfileUpdateFields holds the optional profile fields a user may change.
// Nil pointers leave the stored value untouched.
type ProfileUpdateFields struct {
	FirstName         *string
	LastName          *string
	BusinessName      *string
	Currency          *string
	InvoicePrefix     *string
	DefaultTaxRate    *float64
	DefaultHourlyRate *float64
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateProfile(userID string, fields ProfileUpdateFields) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// ClientUpdateFields holds the mutable fields of a client.
type ClientUpdateFields struct {
	Name       *string
	Company    *string
	Email      *string
	Phone      *string
	Address    *string
	Notes      *string
	HourlyRate *float64
}

// ClientServicer defines the contract for client-related business logic.
type ClientServicer interface {
	CreateClient(userID, name, company, email, phone, address, notes string, hourlyRate float64) (*models.Client, error)
	GetUserClients(userID string, page pagination.PageRequest, includeArchived bool) (*pagination.PageResponse[models.Client], error)
	GetClientByID(userID, clientID string) (*models.Client, error)
	UpdateClient(userID, clientID string, fields ClientUpdateFields) (*models.Client, error)
	SetClientArchived(userID, clientID string, archived bool) (*models.Client, error)
}

// ProjectFilter holds optional filter parameters for listing projects.
type ProjectFilter struct {
	Status   *models.ProjectStatus
	ClientID *string
}

// ProjectUpdateFields holds the mutable fields of a project.
type ProjectUpdateFields struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	BudgetType  *models.BudgetType
	HourlyRate  *float64
	FixedPrice  *float64
	Color       *string
}

// ProjectServicer defines the contract for project-related business logic.
type ProjectServicer interface {
	CreateProject(userID, clientID, name, description string, budgetType models.BudgetType, hourlyRate, fixedPrice float64, color string) (*models.Project, error)
	GetUserProjects(userID string, page pagination.PageRequest, filter ProjectFilter) (*pagination.PageResponse[models.Project], error)
	GetProjectByID(userID, projectID string) (*models.Project, error)
	UpdateProject(userID, projectID string, fields ProjectUpdateFields) (*models.Project, error)
	DeleteProject(userID, projectID string) error
}

// TimeEntryInput holds the fields for creating a time entry.
type TimeEntryInput struct {
	ProjectID   string
	Date        time.Time
	StartTime   string
	EndTime     string
	Duration    *int
	Description string
	IsBillable  *bool
}

// TimeEntryUpdateFields holds the mutable fields of a time entry.
type TimeEntryUpdateFields struct {
	Date        *time.Time
	StartTime   *string
	EndTime     *string
	Duration    *int
	Description *string
	IsBillable  *bool
}

// TimeEntryFilter holds optional filter parameters for listing time entries.
type TimeEntryFilter struct {
	ProjectID  *string
	StartDate  *time.Time
	EndDate    *time.Time
	IsBillable *bool
	IsBilled   *bool
}

// TimeEntryServicer defines the contract for time-entry business logic.
type TimeEntryServicer interface {
	CreateTimeEntry(userID string, input TimeEntryInput) (*models.TimeEntry, error)
	GetUserTimeEntries(userID string, page pagination.PageRequest, filter TimeEntryFilter) (*pagination.PageResponse[models.TimeEntry], error)
	GetTimeEntryByID(userID, entryID string) (*models.TimeEntry, error)
	UpdateTimeEntry(userID, entryID string, fields TimeEntryUpdateFields) (*models.TimeEntry, error)
	DeleteTimeEntry(userID, entryID string) error
	StartTimer(userID, projectID, description string) (*models.TimeEntry, error)
	StopTimer(userID, entryID string) (*models.TimeEntry, error)
}

// InvoiceInput holds the fields for creating an invoice.
type InvoiceInput struct {
	ClientID       string
	InvoiceDate    time.Time
	DueDate        *time.Time
	LineItems      []billing.LineInput
	TaxRate        float64
	DiscountAmount float64
	Notes          string
	TimeEntryIDs   []string
}

// InvoiceFilter holds optional filter parameters for listing invoices.
type InvoiceFilter struct {
	Status    *models.InvoiceStatus
	ClientID  *string
	StartDate *time.Time
	EndDate   *time.Time
}

// InvoiceUpdateFields holds the mutable fields of an invoice. Patching
// the financial fields does not recompute them from line items; callers
// own consistency when they touch subtotal/tax_amount/total directly.
type InvoiceUpdateFields struct {
	InvoiceDate    *time.Time
	DueDate        *time.Time
	Status         *models.InvoiceStatus
	Notes          *string
	Subtotal       *float64
	TaxRate        *float64
	TaxAmount      *float64
	DiscountAmount *float64
	Total          *float64
	PaymentDate    *time.Time
	PaymentAmount  *float64
	PaymentNotes   *string
}

// InvoiceServicer defines the contract for invoice business logic.
type InvoiceServicer interface {
	NextInvoiceNumber(userID string) (string, error)
	CreateInvoice(userID string, input InvoiceInput) (*models.Invoice, error)
	GetUserInvoices(userID string, page pagination.PageRequest, filter InvoiceFilter) (*pagination.PageResponse[models.Invoice], error)
	GetInvoiceByID(userID, invoiceID string) (*models.Invoice, error)
	UpdateInvoice(userID, invoiceID string, fields InvoiceUpdateFields) (*models.Invoice, error)
	MarkInvoicePaid(userID, invoiceID string, paymentDate *time.Time, paymentAmount float64, paymentNotes string) (*models.Invoice, error)
	DeleteInvoice(userID, invoiceID string) error
}

// DashboardSummary aggregates headline numbers for the dashboard.
type DashboardSummary struct {
	UnbilledMinutes    int64   `json:"unbilled_minutes"`
	UnbilledAmount     float64 `json:"unbilled_amount"`
	OutstandingAmount  float64 `json:"outstanding_amount"`
	PaidAmount         float64 `json:"paid_amount"`
	DraftInvoiceCount  int64   `json:"draft_invoice_count"`
	ActiveProjectCount int64   `json:"active_project_count"`
	ClientCount        int64   `json:"client_count"`
}

// DashboardServicer defines the contract for dashboard aggregates.
type DashboardServicer interface {
	GetSummary(userID string) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
