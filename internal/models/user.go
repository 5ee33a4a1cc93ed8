package models

import "time"

// User represents a tenant of the application. Each user owns their
// clients, projects, time entries, and invoices.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BusinessName string `json:"business_name"`
	Currency     string `gorm:"not null;default:'USD'" json:"currency"`

	// Invoicing defaults. InvoiceNextNumber is the per-user sequence
	// counter; it is advanced only by the invoice service under a row
	// lock and is never reused.
	InvoicePrefix     string  `gorm:"not null;default:'INV'" json:"invoice_prefix"`
	InvoiceNextNumber int     `gorm:"not null;default:1" json:"invoice_next_number"`
	DefaultTaxRate    float64 `gorm:"not null;default:0" json:"default_tax_rate"`
	DefaultHourlyRate float64 `gorm:"not null;default:0" json:"default_hourly_rate"`

	IsActive         bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	Clients     []Client    `gorm:"foreignKey:UserID" json:"clients,omitempty"`
	Projects    []Project   `gorm:"foreignKey:UserID" json:"projects,omitempty"`
	TimeEntries []TimeEntry `gorm:"foreignKey:UserID" json:"time_entries,omitempty"`
	Invoices    []Invoice   `gorm:"foreignKey:UserID" json:"invoices,omitempty"`
}
