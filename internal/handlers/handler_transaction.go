package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elena/open-accounting/internal/apperrors"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/core/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/middleware"
)

// transactionHandler handles HTTP requests against the ledger itself.
type transactionHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	accountService portssvc.AccountSvcFacade
}

func newTransactionHandler(ls portssvc.LedgerSvcFacade, as portssvc.AccountSvcFacade) *transactionHandler {
	return &transactionHandler{ledgerService: ls, accountService: as}
}

// registerTransactionRoutes registers routes related to ledger transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, accountService portssvc.AccountSvcFacade) {
	h := newTransactionHandler(ledgerService, accountService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("/:id", h.getTransaction)
		transactions.POST("/:id/recompute-balance", h.recomputeBalance)
	}
}

func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.ledgerService.CreateTransaction(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnbalanced),
			errors.Is(err, services.ErrInsufficientLines),
			errors.Is(err, services.ErrUnknownAccount),
			errors.Is(err, services.ErrDuplicateAccountInSimpleForm),
			errors.Is(err, services.ErrZeroValueInSimpleForm),
			errors.Is(err, services.ErrAmbiguousLineForm):
			logger.Warn("Rejected transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction retrieves a transaction with its lines, each line stamped
// with its account's structured code.
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	txn, err := h.ledgerService.GetTransactionWithLines(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	accountIDs := make([]string, len(txn.Lines))
	for i, line := range txn.Lines {
		accountIDs[i] = line.AccountID
	}
	accounts, err := h.accountService.GetAccountsByIDs(c.Request.Context(), accountIDs)
	if err != nil {
		logger.Error("Failed to resolve line accounts", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponseWithAccounts(txn, accounts))
}

// recomputeBalance re-derives the is_balanced flag from the stored lines.
// An audit endpoint; the flag should never actually change.
func (h *transactionHandler) recomputeBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	isBalanced, err := h.ledgerService.RecomputeBalanced(c.Request.Context(), transactionID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to recompute balance", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute balance"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactionID": transactionID, "isBalanced": isBalanced})
}
