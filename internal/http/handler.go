package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/askhat/rentflow/internal/http/middleware"
	"github.com/askhat/rentflow/internal/model"
	"github.com/askhat/rentflow/internal/repository"
	"github.com/askhat/rentflow/internal/service"
)

type Handler struct {
	billing  *service.BillingService
	invoices *service.InvoiceService
	log      zerolog.Logger
}

func NewHandler(billing *service.BillingService, invoices *service.InvoiceService, log zerolog.Logger) *Handler {
	return &Handler{billing: billing, invoices: invoices, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/invoices/generate", h.generateInvoices)
	protected.POST("/contracts/:id/invoices", h.generateForContract)
	protected.GET("/invoices", h.listInvoices)
	protected.GET("/invoices/export", h.exportRegister)
	protected.GET("/invoices/:id", h.getInvoice)
	protected.GET("/invoices/:id/pdf", h.exportInvoicePDF)
	protected.POST("/invoices/:id/void", h.voidInvoice)
	protected.DELETE("/invoices/:id", h.deleteDraftInvoice)
	protected.POST("/invoices/:id/publish", h.publishInvoice)
	protected.POST("/invoices/publish-all", h.publishAllDrafts)
	protected.POST("/invoices/:id/payments", h.recordPayment)
	protected.POST("/invoices/:id/adjustments", h.addAdjustment)
	protected.GET("/meters/pending", h.listPendingMeters)
}

type generateInvoicesRequest struct {
	RunDate     string `json:"run_date"`
	AutoPublish bool   `json:"auto_publish"`
}

func (h *Handler) generateInvoices(c *gin.Context) {
	principal, ok := h.landlord(c)
	if !ok {
		return
	}

	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	runDate := time.Now().UTC()
	if req.RunDate != "" {
		parsed, err := parseDate(req.RunDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run_date"})
			return
		}
		runDate = parsed
	}

	count, err := h.billing.GenerateMonthlyInvoices(c.Request.Context(), principal.TenantID, runDate, req.AutoPublish)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated": count})
}

type generateForContractRequest struct {
	TargetDate  string `json:"target_date"`
	AutoPublish bool   `json:"auto_publish"`
}

func (h *Handler) generateForContract(c *gin.Context) {
	principal, ok := h.landlord(c)
	if !ok {
		return
	}
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req generateForContractRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	targetDate := time.Now().UTC()
	if req.TargetDate != "" {
		parsed, err := parseDate(req.TargetDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_date"})
			return
		}
		targetDate = parsed
	}

	invoice, err := h.billing.GenerateInvoiceForContract(c.Request.Context(), principal.TenantID, contractID, targetDate, req.AutoPublish)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if invoice == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, invoiceResponseFrom(*invoice))
}

func (h *Handler) listInvoices(c *gin.Context) {
	principal, ok := h.landlord(c)
	if !ok {
		return
	}
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.invoices.ListRegister(c.Request.Context(), principal.TenantID, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	listing := make([]registerRowResponse, 0, len(rows))
	for _, row := range rows {
		listing = append(listing, registerRowResponseFrom(row))
	}
	c.JSON(http.StatusOK, gin.H{"invoices": listing})
}

func (h *Handler) getInvoice(c *gin.Context) {
	principal, invoiceID, ok := h.landlordWithInvoiceID(c)
	if !ok {
		return
	}
	invoice, err := h.invoices.GetInvoice(c.Request.Context(), principal.TenantID, invoiceID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponseFrom(*invoice))
}

func (h *Handler) voidInvoice(c *gin.Context) {
	principal, invoiceID, ok := h.landlordWithInvoiceID(c)
	if !ok {
		return
	}
	if err := h.invoices.VoidInvoice(c.Request.Context(), principal.TenantID, invoiceID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteDraftInvoice(c *gin.Context) {
	principal, invoiceID, ok := h.landlordWithInvoiceID(c)
	if !ok {
		return
	}
	if err := h.invoices.DeleteDraftInvoice(c.Request.Context(), principal.TenantID, invoiceID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) publishInvoice(c *gin.Context) {
	principal, invoiceID, ok := h.landlordWithInvoiceID(c)
	if !ok {
		return
	}
	if err := h.invoices.PublishInvoice(c.Request.Context(), principal.TenantID, invoiceID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) publishAllDrafts(c *gin.Context) {
	principal, ok := h.landlord(c)
	if !ok {
		return
	}
	count, err := h.invoices.PublishAllDrafts(c.Request.Context(), principal.TenantID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": count})
}

type paymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func (h *Handler) recordPayment(c *gin.Context) {
	principal, invoiceID, ok := h.landlordWithInvoiceID(c)
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	invoice, err := h.invoices.RecordPayment(c.Request.Context(), principal.TenantID, invoiceID, amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponseFrom(*invoice))
}

type adjustmentRequest struct {
	Kind        string `json:"kind" binding:"required"`
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

func (h *Handler) addAdjustment(c *gin.Context) {
	principal, invoiceID, ok := h.landlordWithInvoiceID(c)
	if !ok {
		return
	}
	var req adjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	kind := service.AdjustmentKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	invoice, err := h.invoices.AddAdjustment(c.Request.Context(), principal.TenantID, invoiceID, kind, req.Description, amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponseFrom(*invoice))
}

func (h *Handler) exportInvoicePDF(c *gin.Context) {
	principal, invoiceID, ok := h.landlordWithInvoiceID(c)
	if !ok {
		return
	}
	result, err := h.invoices.ExportInvoicePDF(c.Request.Context(), principal.TenantID, invoiceID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) exportRegister(c *gin.Context) {
	principal, ok := h.landlord(c)
	if !ok {
		return
	}
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.invoices.ExportRegister(c.Request.Context(), principal.TenantID, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) listPendingMeters(c *gin.Context) {
	principal, ok := h.landlord(c)
	if !ok {
		return
	}
	period := time.Now().UTC()
	if raw := c.Query("period"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
			return
		}
		period = parsed
	}
	pending, err := h.billing.ListPendingMeters(c.Request.Context(), principal.TenantID, period)
	if err != nil {
		h.handleError(c, err)
		return
	}
	listing := make([]pendingMeterResponse, 0, len(pending))
	for _, meter := range pending {
		listing = append(listing, pendingMeterResponse{
			UnitServiceID: meter.UnitServiceID,
			ServiceName:   meter.ServiceName,
			UnitID:        meter.UnitID,
			UnitNumber:    meter.UnitNumber,
		})
	}
	c.JSON(http.StatusOK, gin.H{"pending_meters": listing})
}

func (h *Handler) landlord(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, false
	}
	if !principal.IsLandlord() {
		c.JSON(http.StatusForbidden, gin.H{"error": "landlord role required"})
		return model.Principal{}, false
	}
	return principal, true
}

func (h *Handler) landlordWithInvoiceID(c *gin.Context) (model.Principal, uuid.UUID, bool) {
	principal, ok := h.landlord(c)
	if !ok {
		return model.Principal{}, uuid.Nil, false
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return model.Principal{}, uuid.Nil, false
	}
	return principal, invoiceID, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvoicePaid),
		errors.Is(err, service.ErrInvoiceVoid),
		errors.Is(err, service.ErrInvoicePublished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type invoiceItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	ItemType        string     `json:"item_type"`
	Description     string     `json:"description"`
	Amount          string     `json:"amount"`
	ContractAddOnID *uuid.UUID `json:"contract_add_on_id,omitempty"`
	UnitServiceID   *uuid.UUID `json:"unit_service_id,omitempty"`
}

type invoiceResponse struct {
	ID           uuid.UUID             `json:"id"`
	ContractID   uuid.UUID             `json:"contract_id"`
	OccupantID   uuid.UUID             `json:"occupant_id"`
	InvoiceDate  string                `json:"invoice_date"`
	DueDate      string                `json:"due_date"`
	BillingYear  int                   `json:"billing_year"`
	BillingMonth int                   `json:"billing_month"`
	TotalAmount  string                `json:"total_amount"`
	AmountPaid   string                `json:"amount_paid"`
	BalanceDue   string                `json:"balance_due"`
	Status       string                `json:"status"`
	IsPublished  bool                  `json:"is_published"`
	Items        []invoiceItemResponse `json:"items"`
}

func invoiceResponseFrom(invoice model.Invoice) invoiceResponse {
	items := make([]invoiceItemResponse, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, invoiceItemResponse{
			ID:              item.ID,
			ItemType:        string(item.ItemType),
			Description:     item.Description,
			Amount:          item.Amount.StringFixed(2),
			ContractAddOnID: item.ContractAddOnID,
			UnitServiceID:   item.UnitServiceID,
		})
	}
	return invoiceResponse{
		ID:           invoice.ID,
		ContractID:   invoice.ContractID,
		OccupantID:   invoice.OccupantID,
		InvoiceDate:  invoice.InvoiceDate.Format("2006-01-02"),
		DueDate:      invoice.DueDate.Format("2006-01-02"),
		BillingYear:  invoice.BillingYear,
		BillingMonth: invoice.BillingMonth,
		TotalAmount:  invoice.TotalAmount.StringFixed(2),
		AmountPaid:   invoice.AmountPaid.StringFixed(2),
		BalanceDue:   invoice.BalanceDue().StringFixed(2),
		Status:       string(invoice.Status),
		IsPublished:  invoice.IsPublished,
		Items:        items,
	}
}

type registerRowResponse struct {
	InvoiceID    uuid.UUID `json:"invoice_id"`
	InvoiceDate  string    `json:"invoice_date"`
	DueDate      string    `json:"due_date"`
	UnitNumber   string    `json:"unit_number"`
	BuildingName string    `json:"building_name"`
	OccupantName string    `json:"occupant_name"`
	Status       string    `json:"status"`
	IsPublished  bool      `json:"is_published"`
	TotalAmount  string    `json:"total_amount"`
	AmountPaid   string    `json:"amount_paid"`
	BalanceDue   string    `json:"balance_due"`
}

func registerRowResponseFrom(row model.InvoiceRegisterRow) registerRowResponse {
	return registerRowResponse{
		InvoiceID:    row.InvoiceID,
		InvoiceDate:  row.InvoiceDate.Format("2006-01-02"),
		DueDate:      row.DueDate.Format("2006-01-02"),
		UnitNumber:   row.UnitNumber,
		BuildingName: row.BuildingName,
		OccupantName: row.OccupantName,
		Status:       string(row.Status),
		IsPublished:  row.IsPublished,
		TotalAmount:  row.TotalAmount.StringFixed(2),
		AmountPaid:   row.AmountPaid.StringFixed(2),
		BalanceDue:   row.TotalAmount.Sub(row.AmountPaid).StringFixed(2),
	}
}

type pendingMeterResponse struct {
	UnitServiceID uuid.UUID `json:"unit_service_id"`
	ServiceName   string    `json:"service_name"`
	UnitID        uuid.UUID `json:"unit_id"`
	UnitNumber    string    `json:"unit_number"`
}

func parseInvoiceFilter(c *gin.Context) (repository.InvoiceFilter, error) {
	var filter repository.InvoiceFilter
	if raw := c.Query("status"); raw != "" {
		status := model.InvoiceStatus(strings.ToUpper(strings.TrimSpace(raw)))
		if err := status.Validate(); err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.UnitID = unitID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.DateTo = to
	}
	return filter, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
