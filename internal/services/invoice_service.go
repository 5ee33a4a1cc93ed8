package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"billable/internal/billing"
	apperrors "billable/internal/errors"
	"billable/internal/models"
	"billable/internal/pagination"
)

// invoiceService owns invoice numbering, the creation transaction, and
// the invoice lifecycle. It is the only writer of the billed direction
// on time entries; DeleteInvoice is the only writer of the unbilled
// direction.
type invoiceService struct {
	db *gorm.DB
}

// NewInvoiceService creates a new InvoiceServicer.
func NewInvoiceService(db *gorm.DB) InvoiceServicer {
	return &invoiceService{db: db}
}

// formatInvoiceNumber renders a sequence number as {prefix}-{0-padded sequence}.
func formatInvoiceNumber(prefix string, seq int) string {
	if prefix == "" {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// allocateInvoiceNumber reads the user's counter under an exclusive row
// lock held for the rest of the enclosing transaction, then increments
// it before any other statement can fail. Two concurrent creations for
// the same user therefore never observe the same sequence value, and a
// rollback undoes the increment so committed numbers stay gapless.
//
// SQLite does not support SELECT ... FOR UPDATE; its write transactions
// are single-writer, which gives the same guarantee in tests.
func (s *invoiceService) allocateInvoiceNumber(tx *gorm.DB, userID string) (string, int, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user models.User
	if err := q.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, apperrors.ErrUserNotFound
		}
		return "", 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seq := user.InvoiceNextNumber
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("invoice_next_number", seq+1).Error; err != nil {
		return "", 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return formatInvoiceNumber(user.InvoicePrefix, seq), seq, nil
}

// NextInvoiceNumber previews the next invoice number without consuming it.
func (s *invoiceService) NextInvoiceNumber(userID string) (string, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return formatInvoiceNumber(user.InvoicePrefix, user.InvoiceNextNumber), nil
}

// CreateInvoice creates a draft invoice from manual line items and
// optionally flips the named time entries to billed, all in one
// transaction. Any failure rolls the whole attempt back: no invoice, no
// line items, no billed flags, and the counter increment is undone.
//
// Line items are never derived from time entries here; callers populate
// line items themselves and pass time entry IDs only to mark them billed.
func (s *invoiceService) CreateInvoice(userID string, input InvoiceInput) (*models.Invoice, error) {
	if input.ClientID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "client ID is required")
	}
	if len(input.LineItems) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one line item is required")
	}
	for i, item := range input.LineItems {
		if item.Description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("line item %d is missing a description", i+1))
		}
	}

	invoiceDate := input.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	var invoice *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Client ownership check; filtering by user makes a foreign
		// client indistinguishable from a missing one.
		var client models.Client
		if err := tx.Where("id = ? AND user_id = ?", input.ClientID, userID).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrClientNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		number, _, err := s.allocateInvoiceNumber(tx, userID)
		if err != nil {
			return err
		}

		totals := billing.ComputeTotals(input.LineItems, input.TaxRate, input.DiscountAmount)

		invoice = &models.Invoice{
			UserID:         userID,
			ClientID:       client.ID,
			InvoiceNumber:  number,
			InvoiceDate:    invoiceDate,
			DueDate:        input.DueDate,
			Status:         models.InvoiceStatusDraft,
			Subtotal:       totals.Subtotal,
			TaxRate:        input.TaxRate,
			TaxAmount:      totals.TaxAmount,
			DiscountAmount: totals.DiscountAmount,
			Total:          totals.Total,
			Notes:          input.Notes,
		}
		if err := tx.Create(invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateInvoiceNumber
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for i, item := range input.LineItems {
			lineItem := &models.InvoiceLineItem{
				InvoiceID:   invoice.ID,
				Description: item.Description,
				Quantity:    item.Quantity.Float64(),
				Rate:        item.Rate.Float64(),
				Amount:      item.Amount(),
				Position:    i,
			}
			if err := tx.Create(lineItem).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		// Flip the named entries to billed. The filter silently skips
		// IDs the user does not own and entries already billed; this is
		// a bulk update, not per-row validation.
		if len(input.TimeEntryIDs) > 0 {
			if err := tx.Model(&models.TimeEntry{}).
				Where("id IN ? AND user_id = ? AND is_billed = ?", input.TimeEntryIDs, userID, false).
				Updates(map[string]interface{}{
					"is_billed":  true,
					"invoice_id": invoice.ID,
				}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoiceByID(userID, invoice.ID)
}

// sweepOverdue flips the user's sent invoices whose due date has passed
// to overdue. Running it twice in a row changes nothing the second time.
func (s *invoiceService) sweepOverdue(userID string) error {
	if err := s.db.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?",
			userID, models.InvoiceStatusSent, time.Now()).
		Update("status", models.InvoiceStatusOverdue).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserInvoices retrieves a paginated, filtered list of the user's
// invoices. The overdue sweep runs first, so overdue status is as fresh
// as the latest list read.
func (s *invoiceService) GetUserInvoices(userID string, page pagination.PageRequest, filter InvoiceFilter) (*pagination.PageResponse[models.Invoice], error) {
	if err := s.sweepOverdue(userID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Invoice{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		base = base.Where("client_id = ?", *filter.ClientID)
	}
	if filter.StartDate != nil {
		base = base.Where("invoice_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		base = base.Where("invoice_date <= ?", *filter.EndDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invoices []models.Invoice
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Client").
		Order("invoice_date DESC, invoice_number DESC").
		Find(&invoices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(invoices, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetInvoiceByID retrieves an invoice with its line items and the time
// entries it bills.
func (s *invoiceService) GetInvoiceByID(userID, invoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Where("id = ? AND user_id = ?", invoiceID, userID).
		Preload("Client").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("TimeEntries").
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &invoice, nil
}

// UpdateInvoice patches the mutable fields of an invoice. Financial
// fields are stored as given and are not recomputed from line items;
// a caller patching subtotal or tax_amount owns the arithmetic.
func (s *invoiceService) UpdateInvoice(userID, invoiceID string, fields InvoiceUpdateFields) (*models.Invoice, error) {
	invoice, err := s.GetInvoiceByID(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.InvoiceDate != nil {
		updates["invoice_date"] = *fields.InvoiceDate
	}
	if fields.DueDate != nil {
		updates["due_date"] = *fields.DueDate
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.Notes != nil {
		updates["notes"] = *fields.Notes
	}
	if fields.Subtotal != nil {
		updates["subtotal"] = billing.Round2(*fields.Subtotal)
	}
	if fields.TaxRate != nil {
		updates["tax_rate"] = *fields.TaxRate
	}
	if fields.TaxAmount != nil {
		updates["tax_amount"] = billing.Round2(*fields.TaxAmount)
	}
	if fields.DiscountAmount != nil {
		updates["discount_amount"] = billing.Round2(*fields.DiscountAmount)
	}
	if fields.Total != nil {
		updates["total"] = billing.Round2(*fields.Total)
	}
	if fields.PaymentDate != nil {
		updates["payment_date"] = *fields.PaymentDate
	}
	if fields.PaymentAmount != nil {
		updates["payment_amount"] = billing.Round2(*fields.PaymentAmount)
	}
	if fields.PaymentNotes != nil {
		updates["payment_notes"] = *fields.PaymentNotes
	}

	if len(updates) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no fields to update")
	}

	if err := s.db.Model(invoice).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetInvoiceByID(userID, invoiceID)
}

// MarkInvoicePaid records a payment against an invoice and moves it to
// paid. The payment amount is recorded as given; over- and underpayment
// are both accepted.
func (s *invoiceService) MarkInvoicePaid(userID, invoiceID string, paymentDate *time.Time, paymentAmount float64, paymentNotes string) (*models.Invoice, error) {
	invoice, err := s.GetInvoiceByID(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if paymentDate != nil {
		date = *paymentDate
	}

	updates := map[string]interface{}{
		"status":         models.InvoiceStatusPaid,
		"payment_date":   date,
		"payment_amount": billing.Round2(paymentAmount),
		"payment_notes":  paymentNotes,
	}
	if err := s.db.Model(invoice).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetInvoiceByID(userID, invoiceID)
}

// DeleteInvoice deletes an unpaid invoice and returns its time entries
// to the unbilled pool. The status is re-read under a row lock inside
// the transaction, so a mark-paid committing after the lookup cannot
// slip past the guard. Unbilling happens before the row delete, in the
// same transaction, so a failure can never leave entries pointing at a
// missing invoice.
func (s *invoiceService) DeleteInvoice(userID, invoiceID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var invoice models.Invoice
		if err := q.Where("id = ? AND user_id = ?", invoiceID, userID).First(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInvoiceNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if invoice.Status == models.InvoiceStatusPaid {
			return apperrors.ErrInvoicePaid
		}

		if err := tx.Model(&models.TimeEntry{}).
			Where("invoice_id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"is_billed":  false,
				"invoice_id": nil,
			}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Unscoped().Where("invoice_id = ?", invoice.ID).
			Delete(&models.InvoiceLineItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Unscoped().Delete(&invoice).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return nil
	})
}
