package models

// Client represents a customer a freelancer bills. Clients are archived
// rather than deleted so that existing invoices keep a valid reference.
type Client struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string  `gorm:"not null" json:"name"`
	Company    string  `json:"company"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	Notes      string  `json:"notes"`
	HourlyRate float64 `gorm:"not null;default:0" json:"hourly_rate"`
	IsArchived bool    `gorm:"default:false" json:"is_archived"`

	Projects []Project `gorm:"foreignKey:ClientID" json:"projects,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`
}
