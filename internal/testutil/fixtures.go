package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"billable/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email, and
// invoicing defaults.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:             email,
		Password:          string(hash),
		Currency:          "USD",
		InvoicePrefix:     "INV",
		InvoiceNextNumber: 1,
		IsActive:          true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestClient creates a client for the given user.
func CreateTestClient(t *testing.T, db *gorm.DB, userID string) *models.Client {
	t.Helper()

	client := &models.Client{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Client %d", nextID()),
		HourlyRate: 100,
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}
	return client
}

// CreateTestProject creates an active hourly project under the given client.
func CreateTestProject(t *testing.T, db *gorm.DB, userID, clientID string) *models.Project {
	t.Helper()

	project := &models.Project{
		UserID:     userID,
		ClientID:   clientID,
		Name:       fmt.Sprintf("Test Project %d", nextID()),
		Status:     models.ProjectStatusActive,
		BudgetType: models.BudgetTypeHourly,
		HourlyRate: 100,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTestTimeEntry creates an unbilled billable time entry with the
// given duration in minutes.
func CreateTestTimeEntry(t *testing.T, db *gorm.DB, userID, projectID string, duration int) *models.TimeEntry {
	t.Helper()

	entry := &models.TimeEntry{
		UserID:     userID,
		ProjectID:  projectID,
		Date:       time.Now(),
		Duration:   duration,
		IsBillable: true,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test time entry: %v", err)
	}
	return entry
}

// CreateTestInvoice creates a draft invoice with one line item.
func CreateTestInvoice(t *testing.T, db *gorm.DB, userID, clientID string) *models.Invoice {
	t.Helper()
	return CreateTestInvoiceWithStatus(t, db, userID, clientID, models.InvoiceStatusDraft)
}

// CreateTestInvoiceWithStatus creates an invoice in the given status.
func CreateTestInvoiceWithStatus(t *testing.T, db *gorm.DB, userID, clientID string, status models.InvoiceStatus) *models.Invoice {
	t.Helper()

	invoice := &models.Invoice{
		UserID:        userID,
		ClientID:      clientID,
		InvoiceNumber: fmt.Sprintf("TST-%04d", nextID()),
		InvoiceDate:   time.Now(),
		Status:        status,
		Subtotal:      100,
		Total:         100,
	}
	if err := db.Create(invoice).Error; err != nil {
		t.Fatalf("failed to create test invoice: %v", err)
	}

	lineItem := &models.InvoiceLineItem{
		InvoiceID:   invoice.ID,
		Description: "Test work",
		Quantity:    1,
		Rate:        100,
		Amount:      100,
	}
	if err := db.Create(lineItem).Error; err != nil {
		t.Fatalf("failed to create test line item: %v", err)
	}

	return invoice
}
