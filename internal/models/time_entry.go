package models

import "time"

// TimeEntry represents a block of tracked work on a project.
//
// A billed entry (IsBilled true) always carries the ID of the invoice
// that billed it, and becomes immutable until that invoice is deleted.
// The invoice service is the only writer of the billed direction, and
// invoice deletion is the only writer of the unbilled direction.
type TimeEntry struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID   string    `gorm:"type:uuid;not null;index" json:"project_id"`
	Date        time.Time `gorm:"not null" json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Duration    int       `gorm:"not null;default:0" json:"duration"` // minutes
	Description string    `json:"description"`
	IsBillable  bool      `gorm:"default:true" json:"is_billable"`
	IsBilled    bool      `gorm:"default:false;index" json:"is_billed"`
	InvoiceID   *string   `gorm:"type:uuid;index" json:"invoice_id,omitempty"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}
