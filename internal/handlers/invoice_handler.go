package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"billable/internal/billing"
	apperrors "billable/internal/errors"
	"billable/internal/models"
	"billable/internal/pagination"
	"billable/internal/services"
)

// InvoiceHandler handles invoice-related requests.
type InvoiceHandler struct {
	invoiceService services.InvoiceServicer
	auditService   services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceServicer, auditService services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, auditService: auditService}
}

// CreateInvoiceRequest represents the request payload for creating an invoice.
// Quantities and rates accept JSON numbers or numeric strings; unparsable
// or negative values coerce to zero.
type CreateInvoiceRequest struct {
	ClientID       string              `json:"client_id" binding:"required,uuid"`
	InvoiceDate    *string             `json:"invoice_date"`
	DueDate        *string             `json:"due_date"`
	LineItems      []billing.LineInput `json:"line_items" binding:"required,min=1,dive"`
	TaxRate        float64             `json:"tax_rate" binding:"gte=0,lte=100"`
	DiscountAmount float64             `json:"discount_amount" binding:"gte=0"`
	Notes          string              `json:"notes" binding:"max=2000"`
	TimeEntryIDs   []string            `json:"time_entry_ids" binding:"omitempty,dive,uuid"`
}

// UpdateInvoiceRequest represents the request payload for updating an invoice.
type UpdateInvoiceRequest struct {
	InvoiceDate    *string  `json:"invoice_date"`
	DueDate        *string  `json:"due_date"`
	Status         *string  `json:"status" binding:"omitempty,invoice_status"`
	Notes          *string  `json:"notes" binding:"omitempty,max=2000"`
	Subtotal       *float64 `json:"subtotal" binding:"omitempty,gte=0"`
	TaxRate        *float64 `json:"tax_rate" binding:"omitempty,gte=0,lte=100"`
	TaxAmount      *float64 `json:"tax_amount" binding:"omitempty,gte=0"`
	DiscountAmount *float64 `json:"discount_amount" binding:"omitempty,gte=0"`
	Total          *float64 `json:"total"`
	PaymentDate    *string  `json:"payment_date"`
	PaymentAmount  *float64 `json:"payment_amount" binding:"omitempty,gte=0"`
	PaymentNotes   *string  `json:"payment_notes" binding:"omitempty,max=2000"`
}

// MarkPaidRequest represents the request payload for marking an invoice paid.
// The payment amount is recorded as given without validation against the total.
type MarkPaidRequest struct {
	PaymentDate   *string `json:"payment_date"`
	PaymentAmount float64 `json:"payment_amount" binding:"gte=0"`
	PaymentNotes  string  `json:"payment_notes" binding:"max=2000"`
}

// ListInvoicesQuery holds the query parameters for listing invoices.
type ListInvoicesQuery struct {
	pagination.PageRequest
	Status    string `form:"status" binding:"omitempty,invoice_status"`
	ClientID  string `form:"client_id" binding:"omitempty,uuid"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// NextNumber previews the next invoice number
// @Summary     Preview next invoice number
// @Description Get the invoice number the next created invoice will receive, without consuming it
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Next invoice number"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/next-number [get]
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	number, err := h.invoiceService.NextInvoiceNumber(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"next_number": number})
}

// CreateInvoice handles the creation of a new invoice
// @Summary     Create an invoice
// @Description Create a draft invoice from line items, optionally marking time entries as billed
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvoiceRequest true "Invoice details"
// @Success     201 {object} models.Invoice "Invoice created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Failure     409 {object} ErrorResponse "Invoice number collision"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var invoiceDate time.Time
	if parsed, err := parseOptionalDate(req.InvoiceDate, "invoice_date"); err != nil {
		respondWithError(c, err)
		return
	} else if parsed != nil {
		invoiceDate = *parsed
	}

	dueDate, err := parseOptionalDate(req.DueDate, "due_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(userID, services.InvoiceInput{
		ClientID:       req.ClientID,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
		LineItems:      req.LineItems,
		TaxRate:        req.TaxRate,
		DiscountAmount: req.DiscountAmount,
		Notes:          req.Notes,
		TimeEntryIDs:   req.TimeEntryIDs,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INVOICE", "invoice", invoice.ID, c.ClientIP(),
		map[string]interface{}{"invoice_number": invoice.InvoiceNumber, "total": invoice.Total})

	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

// ListInvoices returns the user's invoices
// @Summary     List invoices
// @Description Get a paginated, filtered list of invoices; sent invoices past their due date are flipped to overdue first
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       status query string false "Filter by status"
// @Param       client_id query string false "Filter by client"
// @Param       start_date query string false "Filter by invoice date from (YYYY-MM-DD)"
// @Param       end_date query string false "Filter by invoice date to (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Invoice] "Invoices"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.InvoiceFilter{}
	if query.Status != "" {
		status := models.InvoiceStatus(query.Status)
		filter.Status = &status
	}
	if query.ClientID != "" {
		filter.ClientID = &query.ClientID
	}
	if query.StartDate != "" {
		start, err := parseDate(query.StartDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format"))
			return
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := parseDate(query.EndDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date format"))
			return
		}
		filter.EndDate = &end
	}

	result, err := h.invoiceService.GetUserInvoices(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetInvoice returns a single invoice
// @Summary     Get an invoice
// @Description Get an invoice with its line items and billed time entries
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.Invoice "Invoice"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(userID, invoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// UpdateInvoice updates an invoice
// @Summary     Update an invoice
// @Description Patch invoice fields, including status transitions
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Param       request body UpdateInvoiceRequest true "Fields to update"
// @Success     200 {object} models.Invoice "Updated invoice"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.InvoiceUpdateFields{
		Notes:          req.Notes,
		Subtotal:       req.Subtotal,
		TaxRate:        req.TaxRate,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Total:          req.Total,
		PaymentAmount:  req.PaymentAmount,
		PaymentNotes:   req.PaymentNotes,
	}
	if req.Status != nil {
		status := models.InvoiceStatus(*req.Status)
		fields.Status = &status
	}
	if parsed, err := parseOptionalDate(req.InvoiceDate, "invoice_date"); err != nil {
		respondWithError(c, err)
		return
	} else if parsed != nil {
		fields.InvoiceDate = parsed
	}
	if parsed, err := parseOptionalDate(req.DueDate, "due_date"); err != nil {
		respondWithError(c, err)
		return
	} else if parsed != nil {
		fields.DueDate = parsed
	}
	if parsed, err := parseOptionalDate(req.PaymentDate, "payment_date"); err != nil {
		respondWithError(c, err)
		return
	} else if parsed != nil {
		fields.PaymentDate = parsed
	}

	invoice, err := h.invoiceService.UpdateInvoice(userID, invoiceID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INVOICE", "invoice", invoice.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// MarkPaid marks an invoice as paid
// @Summary     Mark an invoice paid
// @Description Record a payment against an invoice and move it to paid status
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Param       request body MarkPaidRequest true "Payment details"
// @Success     200 {object} models.Invoice "Paid invoice"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/{id}/mark-paid [put]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	paymentDate, err := parseOptionalDate(req.PaymentDate, "payment_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.MarkInvoicePaid(userID, invoiceID, paymentDate, req.PaymentAmount, req.PaymentNotes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "MARK_INVOICE_PAID", "invoice", invoice.ID, c.ClientIP(),
		map[string]interface{}{"payment_amount": req.PaymentAmount})

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// DeleteInvoice deletes an unpaid invoice
// @Summary     Delete an invoice
// @Description Delete an unpaid invoice, returning its time entries to the unbilled pool
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     204 "Invoice deleted"
// @Failure     400 {object} ErrorResponse "Invoice is paid"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.invoiceService.DeleteInvoice(userID, invoiceID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INVOICE", "invoice", invoiceID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
