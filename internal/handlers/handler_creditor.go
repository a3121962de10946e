package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/core/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/middleware"
)

// creditorHandler handles HTTP requests for the creditors subledger:
// entities, creditor relations, invoices, payments and allocations.
type creditorHandler struct {
	relationService   portssvc.RelationSvcFacade
	invoiceService    portssvc.InvoiceSvcFacade
	allocationService portssvc.AllocationSvcFacade
}

func newCreditorHandler(rs portssvc.RelationSvcFacade, is portssvc.InvoiceSvcFacade, as portssvc.AllocationSvcFacade) *creditorHandler {
	return &creditorHandler{
		relationService:   rs,
		invoiceService:    is,
		allocationService: as,
	}
}

// registerCreditorRoutes registers the creditors subledger routes.
func registerCreditorRoutes(rg *gin.RouterGroup, relationService portssvc.RelationSvcFacade, invoiceService portssvc.InvoiceSvcFacade, allocationService portssvc.AllocationSvcFacade) {
	h := newCreditorHandler(relationService, invoiceService, allocationService)

	entities := rg.Group("/entities")
	{
		entities.POST("", h.createEntity)
	}

	creditors := rg.Group("/creditors")
	{
		creditors.POST("", h.createCreditor)
		creditors.GET("/:id", h.getCreditor)
		creditors.POST("/:id/invoices", h.createInvoice)
		creditors.GET("/:id/invoices", h.listInvoices)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.GET("/:id", h.getInvoice)
		invoices.POST("/:id/recompute-unpaid", h.recomputeUnpaid)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.createPayment)
		payments.POST("/:id/allocate", h.allocatePayment)
	}
}

func (h *creditorHandler) createEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntity", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entity, err := h.relationService.CreateEntity(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEntityCodeTaken), errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCodeSpaceExhausted):
			logger.Warn("Entity code space exhausted", slog.String("name", req.Name))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create entity in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create entity"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntityResponse(entity))
}

func (h *creditorHandler) createCreditor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCreditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCreditor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	relation, err := h.relationService.CreateCreditor(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		case errors.Is(err, services.ErrAlreadyCreditor), errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create creditor in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create creditor"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreditorResponse(relation))
}

func (h *creditorHandler) getCreditor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	relationID := c.Param("id")

	relation, err := h.relationService.GetCreditor(c.Request.Context(), relationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Creditor not found"})
		} else {
			logger.Error("Failed to get creditor from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve creditor"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditorResponse(relation))
}

func (h *creditorHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.RelationID = c.Param("id")

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Creditor not found"})
		case errors.Is(err, services.ErrInvoiceNumberTaken), errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvoiceLineTotal),
			errors.Is(err, services.ErrUnknownAccount),
			errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Rejected invoice", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create invoice in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		}
		return
	}

	logger.Info("Invoice created", slog.String("invoice_id", invoice.InvoiceID))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

func (h *creditorHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	relationID := c.Param("id")
	openOnly, _ := strconv.ParseBool(c.DefaultQuery("open", "false"))

	var (
		invoices []domain.Invoice
		err      error
	)
	if openOnly {
		invoices, err = h.invoiceService.ListOpenInvoices(c.Request.Context(), relationID)
	} else {
		invoices, err = h.invoiceService.ListInvoices(c.Request.Context(), relationID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Creditor not found"})
		} else {
			logger.Error("Failed to list invoices", slog.String("error", err.Error()), slog.String("relation_id", relationID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invoices"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": dto.ToInvoiceResponses(invoices)})
}

// getInvoice retrieves one invoice with the allocations held against it.
// The settled flag is recomputed from the ledger, not read from the cache.
func (h *creditorHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")

	settled, err := h.invoiceService.IsSettled(c.Request.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		} else {
			logger.Error("Failed to get invoice", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoice"})
		}
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		logger.Error("Failed to load invoice", slog.String("error", err.Error()), slog.String("invoice_id", invoiceID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoice"})
		return
	}

	allocations, err := h.allocationService.ListInvoiceAllocations(c.Request.Context(), invoiceID)
	if err != nil {
		logger.Error("Failed to load invoice allocations", slog.String("error", err.Error()), slog.String("invoice_id", invoiceID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice":     dto.ToInvoiceResponse(invoice),
		"allocations": dto.ToAllocationResponses(allocations),
		"isSettled":   settled,
	})
}

// recomputeUnpaid re-derives an invoice's outstanding balance from the
// backing transaction and its allocations.
func (h *creditorHandler) recomputeUnpaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")

	unpaid, err := h.invoiceService.RecomputeOutstanding(c.Request.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		} else {
			logger.Error("Failed to recompute unpaid", slog.String("error", err.Error()), slog.String("invoice_id", invoiceID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute outstanding balance"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoiceID": invoiceID, "unpaid": unpaid})
}

func (h *creditorHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.relationService.CreatePayment(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create payment in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// allocatePayment distributes a payment's value across the creditor's open
// invoices, oldest first. Re-running replaces the previous allocation.
func (h *creditorHandler) allocatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AllocatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	allocations, err := h.allocationService.Allocate(c.Request.Context(), paymentID, req.Value, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, services.ErrNoAllocatableValue), errors.Is(err, services.ErrNegativeAllocation):
			logger.Warn("Rejected allocation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to allocate payment", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocations": dto.ToAllocationResponses(allocations)})
}
