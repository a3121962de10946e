package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/elena/open-accounting/internal/apperrors"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/core/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/middleware"
)

// statementHandler handles HTTP requests for bank accounts, statement
// imports and bank line reconciliation.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
}

func newStatementHandler(ss portssvc.StatementSvcFacade) *statementHandler {
	return &statementHandler{statementService: ss}
}

// registerStatementRoutes registers bank account and statement routes. The
// import endpoint carries the rate limiter: statement parsing and
// reconciliation is the expensive surface.
func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade, importLimiter *limiter.Limiter) {
	h := newStatementHandler(statementService)

	bankAccounts := rg.Group("/bank-accounts")
	{
		bankAccounts.POST("", h.createBankAccount)
		bankAccounts.GET("", h.listBankAccounts)
		bankAccounts.GET("/:id/lines", h.listBankLines)
		bankAccounts.POST("/:id/statement", middleware.RateLimit(importLimiter), h.importStatement)
	}

	bankLines := rg.Group("/bank-lines")
	{
		bankLines.POST("/:id/reconcile", h.reconcileBankLine)
	}
}

func (h *statementHandler) createBankAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBankAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bankAccount, err := h.statementService.CreateBankAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotBankAccount), errors.Is(err, apperrors.ErrConfiguration):
			logger.Warn("Rejected bank account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger account not found"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create bank account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bank account"})
		}
		return
	}

	logger.Info("Bank account created", slog.String("bank_account_id", bankAccount.BankAccountID))
	c.JSON(http.StatusCreated, dto.ToBankAccountResponse(bankAccount))
}

func (h *statementHandler) listBankAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.statementService.ListBankAccounts(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list bank accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bank accounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bankAccounts": dto.ToBankAccountResponses(accounts)})
}

// importStatement accepts one raw statement dump and reconciles it day by
// day. The response carries only the lines this import actually inserted.
func (h *statementHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bankAccountID := c.Param("id")

	var req dto.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	importerUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Importer user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	inserted, err := h.statementService.ImportStatement(c.Request.Context(), bankAccountID, req.RawText, importerUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank account not found"})
		case errors.Is(err, services.ErrEmptyStatement), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Rejected statement dump", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConfiguration):
			logger.Error("Statement importer misconfigured", slog.String("error", err.Error()), slog.String("bank_account_id", bankAccountID))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to import statement", slog.String("error", err.Error()), slog.String("bank_account_id", bankAccountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import statement"})
		}
		return
	}

	logger.Info("Statement imported", slog.String("bank_account_id", bankAccountID), slog.Int("inserted", len(inserted)))
	c.JSON(http.StatusCreated, gin.H{"inserted": dto.ToBankLineResponses(inserted)})
}

func (h *statementHandler) listBankLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bankAccountID := c.Param("id")
	unreconciledOnly, _ := strconv.ParseBool(c.DefaultQuery("unreconciled", "false"))

	lines, err := h.statementService.ListBankLines(c.Request.Context(), bankAccountID, unreconciledOnly)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank account not found"})
		} else {
			logger.Error("Failed to list bank lines", slog.String("error", err.Error()), slog.String("bank_account_id", bankAccountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bank lines"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines": dto.ToBankLineResponses(lines)})
}

// reconcileBankLine creates the ledger transaction explaining one bank line
// and links it.
func (h *statementHandler) reconcileBankLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bankLineID := c.Param("id")

	var req dto.ReconcileBankLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReconcileBankLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	line, err := h.statementService.ReconcileBankLine(c.Request.Context(), bankLineID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank line not found"})
		case errors.Is(err, services.ErrAlreadyReconciled), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUnknownAccount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reconcile bank line", slog.String("error", err.Error()), slog.String("bank_line_id", bankLineID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile bank line"})
		}
		return
	}

	logger.Info("Bank line reconciled", slog.String("bank_line_id", bankLineID))
	c.JSON(http.StatusOK, dto.ToBankLineResponse(line))
}
