package services

import (
	"gorm.io/gorm"

	"billable/internal/billing"
	apperrors "billable/internal/errors"
	"billable/internal/models"
)

// dashboardService aggregates headline numbers across the user's data.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetSummary computes the dashboard aggregates for a user. Unbilled
// amounts are estimated from project hourly rates; fixed-price projects
// contribute time but no amount.
func (s *dashboardService) GetSummary(userID string) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	var unbilledMinutes *int64
	if err := s.db.Model(&models.TimeEntry{}).
		Where("user_id = ? AND is_billable = ? AND is_billed = ?", userID, true, false).
		Select("SUM(duration)").
		Scan(&unbilledMinutes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if unbilledMinutes != nil {
		summary.UnbilledMinutes = *unbilledMinutes
	}

	var unbilledAmount *float64
	if err := s.db.Model(&models.TimeEntry{}).
		Joins("JOIN projects ON projects.id = time_entries.project_id").
		Where("time_entries.user_id = ? AND time_entries.is_billable = ? AND time_entries.is_billed = ?", userID, true, false).
		Where("projects.budget_type = ?", models.BudgetTypeHourly).
		Select("SUM(time_entries.duration / 60.0 * projects.hourly_rate)").
		Scan(&unbilledAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if unbilledAmount != nil {
		summary.UnbilledAmount = billing.Round2(*unbilledAmount)
	}

	var outstanding *float64
	if err := s.db.Model(&models.Invoice{}).
		Where("user_id = ? AND status IN ?", userID,
			[]models.InvoiceStatus{models.InvoiceStatusSent, models.InvoiceStatusOverdue}).
		Select("SUM(total)").
		Scan(&outstanding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if outstanding != nil {
		summary.OutstandingAmount = billing.Round2(*outstanding)
	}

	var paid *float64
	if err := s.db.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPaid).
		Select("SUM(total)").
		Scan(&paid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if paid != nil {
		summary.PaidAmount = billing.Round2(*paid)
	}

	if err := s.db.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusDraft).
		Count(&summary.DraftInvoiceCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.Project{}).
		Where("user_id = ? AND status = ?", userID, models.ProjectStatusActive).
		Count(&summary.ActiveProjectCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.Client{}).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Count(&summary.ClientCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return summary, nil
}
