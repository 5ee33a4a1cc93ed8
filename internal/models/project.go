package models

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// BudgetType represents how a project is billed
type BudgetType string

const (
	BudgetTypeHourly     BudgetType = "hourly"
	BudgetTypeFixedPrice BudgetType = "fixed_price"
)

// Project represents a body of work for a client
type Project struct {
	Base
	UserID      string        `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID    string        `gorm:"type:uuid;not null;index" json:"client_id"`
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `gorm:"not null;default:'active'" json:"status"`
	BudgetType  BudgetType    `gorm:"not null;default:'hourly'" json:"budget_type"`
	HourlyRate  float64       `gorm:"not null;default:0" json:"hourly_rate"`
	FixedPrice  float64       `gorm:"not null;default:0" json:"fixed_price"`
	Color       string        `json:"color"`

	Client      *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	TimeEntries []TimeEntry `gorm:"foreignKey:ProjectID" json:"time_entries,omitempty"`
}
