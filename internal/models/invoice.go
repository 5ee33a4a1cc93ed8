package models

import "time"

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice represents a bill issued to a client. Totals are computed once
// at creation from the line items; the generic update path patches the
// stored values directly and does not recompute.
type Invoice struct {
	Base
	UserID        string        `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_user_number" json:"user_id"`
	ClientID      string        `gorm:"type:uuid;not null;index" json:"client_id"`
	InvoiceNumber string        `gorm:"not null;uniqueIndex:idx_invoices_user_number" json:"invoice_number"`
	InvoiceDate   time.Time     `gorm:"not null" json:"invoice_date"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Status        InvoiceStatus `gorm:"not null;default:'draft';index" json:"status"`

	Subtotal       float64 `gorm:"not null;default:0" json:"subtotal"`
	TaxRate        float64 `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount      float64 `gorm:"not null;default:0" json:"tax_amount"`
	DiscountAmount float64 `gorm:"not null;default:0" json:"discount_amount"`
	Total          float64 `gorm:"not null;default:0" json:"total"`

	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentAmount float64    `gorm:"not null;default:0" json:"payment_amount"`
	PaymentNotes  string     `json:"payment_notes"`
	Notes         string     `json:"notes"`

	Client      *Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	LineItems   []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items,omitempty"`
	TimeEntries []TimeEntry       `gorm:"foreignKey:InvoiceID" json:"time_entries,omitempty"`
}

// InvoiceLineItem represents a single line on an invoice. Line items are
// created atomically with their parent and never mutated afterwards.
type InvoiceLineItem struct {
	Base
	InvoiceID   string  `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    float64 `gorm:"not null;default:0" json:"quantity"`
	Rate        float64 `gorm:"not null;default:0" json:"rate"`
	Amount      float64 `gorm:"not null;default:0" json:"amount"`
	Position    int     `gorm:"not null;default:0" json:"position"`
}
