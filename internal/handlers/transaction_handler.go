package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// feedKeepAliveInterval is how often the stream sends a comment line to keep
// idle connections from being dropped by proxies
const feedKeepAliveInterval = 30 * time.Second

// TransactionHandler handles transaction entry HTTP requests
type TransactionHandler struct {
	ledgerService services.LedgerServiceInterface
	feed          services.FeedInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	ledgerService services.LedgerServiceInterface,
	feed services.FeedInterface,
) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		feed:          feed,
	}
}

// SaveTransaction creates a new transaction entry
//
// Method: POST /api/v1/transactions
func (h *TransactionHandler) SaveTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.SaveTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	transaction, err := h.ledgerService.SaveEntry(userID, &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    transaction,
		Message: "Transaction saved successfully",
	})
}

// ListTransactions returns the user's entries, optionally filtered to a date range
//
// Method: GET /api/v1/transactions
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.DateRangeQuery
	if err := c.Bind(&query); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid query parameters"))
	}

	if err := c.Validate(query); err != nil {
		return err
	}

	transactions, err := h.ledgerService.ListEntries(userID, query.StartDate, query.EndDate)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: transactions,
		Meta: map[string]interface{}{
			"count": len(transactions),
		},
	})
}

// GetTransaction returns a single transaction entry
//
// Method: GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	transaction, err := h.ledgerService.GetEntry(userID, entryID)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: transaction})
}

// UpdateTransaction rewrites an existing transaction entry
//
// Method: PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	var req dto.SaveTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	transaction, err := h.ledgerService.UpdateEntry(userID, entryID, &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    transaction,
		Message: "Transaction updated successfully",
	})
}

// DeleteTransaction removes a transaction entry
//
// Method: DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	if err := h.ledgerService.DeleteEntry(userID, entryID, getClientIP(c), c.Request().UserAgent()); err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Transaction deleted successfully",
	})
}

// GetTransactionForm returns the editable form state for an entry
//
// Method: GET /api/v1/transactions/:id/form
func (h *TransactionHandler) GetTransactionForm(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	form, err := h.ledgerService.EntryForms(userID, entryID)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: form})
}

// StreamTransactions pushes the user's entry list over server-sent events
// whenever it changes. The connection stays open until the client goes away.
//
// Method: GET /api/v1/transactions/stream
func (h *TransactionHandler) StreamTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set(echo.HeaderCacheControl, "no-cache")
	response.Header().Set(echo.HeaderConnection, "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	ctx := c.Request().Context()
	snapshots, cancel := h.feed.Subscribe(ctx, userID)
	defer cancel()

	// Send the current list immediately so the client never starts blank
	if transactions, err := h.ledgerService.ListEntries(userID, "", ""); err == nil {
		if err := writeFeedEvent(c, transactions); err != nil {
			return nil
		}
	}

	keepAlive := time.NewTicker(feedKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case transactions, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := writeFeedEvent(c, transactions); err != nil {
				return nil
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprintf(response, ": keep-alive\n\n"); err != nil {
				return nil
			}
			response.Flush()
		}
	}
}

func writeFeedEvent(c echo.Context, transactions []models.Transaction) error {
	data, err := json.Marshal(transactions)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(c.Response(), "event: transactions\ndata: %s\n\n", data); err != nil {
		return err
	}
	c.Response().Flush()

	return nil
}

// sendLedgerError maps ledger service errors onto API error codes
func sendLedgerError(c echo.Context, err error) error {
	switch {
	case err == services.ErrEntryNotFound:
		return SendError(c, errors.TransactionNotFound)
	case err == models.ErrEmptyTransaction:
		return SendError(c, errors.TransactionEmpty)
	case err == models.ErrInvalidDate:
		return SendError(c, errors.TransactionInvalidDate)
	case stderrors.Is(err, services.ErrUnknownCategory):
		return SendError(c, errors.TransactionInvalidCategory, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
