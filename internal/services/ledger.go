package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCategory = errors.New("unknown income or expense category")
	ErrEntryNotFound   = errors.New("transaction entry not found")
)

// BuildTransaction converts the submitted entry rows for both sides into a
// persistable transaction document. Row values are parsed as decimals; rows
// that are empty, non-numeric, or not strictly positive are dropped. A
// category key is persisted only when at least one of its rows survives.
func BuildTransaction(date string, incomes, expenses map[string][]dto.RowInput) (*models.Transaction, error) {
	incomeSide, incomeTotal, err := processSide(incomes, models.IsIncomeCategory)
	if err != nil {
		return nil, err
	}

	expenseSide, expenseTotal, err := processSide(expenses, models.IsExpenseCategory)
	if err != nil {
		return nil, err
	}

	if len(incomeSide) == 0 && len(expenseSide) == 0 {
		return nil, models.ErrEmptyTransaction
	}

	return &models.Transaction{
		Date:         date,
		Incomes:      incomeSide,
		Expenses:     expenseSide,
		TotalIncome:  incomeTotal.InexactFloat64(),
		TotalExpense: expenseTotal.InexactFloat64(),
	}, nil
}

func processSide(rows map[string][]dto.RowInput, allowed func(string) bool) (models.CategorySide, decimal.Decimal, error) {
	side := models.CategorySide{}
	total := decimal.Zero

	for category, inputs := range rows {
		if !allowed(category) {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
		}

		var kept models.AmountList
		for _, input := range inputs {
			amount, ok := parseAmount(input.Value)
			if !ok {
				continue
			}
			kept = append(kept, models.StoredAmount{
				Amount: amount.InexactFloat64(),
				Label:  strings.TrimSpace(input.Label),
			})
			total = total.Add(amount)
		}

		if len(kept) > 0 {
			side[category] = kept
		}
	}

	return side, total, nil
}

// parseAmount parses a raw row value. Only strictly positive numbers count.
func parseAmount(value string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}

	return amount, true
}

// ReconstructForm rebuilds the editable form for one side of a stored
// transaction. Every category gets at least one row; categories with stored
// amounts get one row per amount with the value rendered back as text.
func ReconstructForm(categories []string, side models.CategorySide) models.EntryForm {
	form := models.NewEntryForm(categories)

	for _, category := range categories {
		stored, ok := side[category]
		if !ok || len(stored) == 0 {
			continue
		}

		rows := make([]models.EntryRow, 0, len(stored))
		for i := range stored {
			rows = append(rows, models.EntryRow{
				ID:    uuid.NewString(),
				Value: strconv.FormatFloat(stored[i].NormalizedAmount(), 'f', -1, 64),
				Label: stored[i].Label,
			})
		}
		form[category] = rows
	}

	return form
}

// LedgerService handles transaction entry business logic
type LedgerService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	auditRepo       repositories.AuditLogRepositoryInterface
	feed            FeedInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	transactionRepo repositories.TransactionRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	feed FeedInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) LedgerServiceInterface {
	return &LedgerService{
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		feed:            feed,
		metrics:         metrics,
		logger:          logger,
	}
}

// SaveEntry creates a new transaction entry for the user
func (s *LedgerService) SaveEntry(userID uuid.UUID, req *dto.SaveTransactionRequest, ipAddress, userAgent string) (*models.Transaction, error) {
	transaction, err := BuildTransaction(req.Date, req.Incomes, req.Expenses)
	if err != nil {
		return nil, err
	}
	transaction.UserID = userID

	if err := s.transactionRepo.Create(transaction); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	s.audit(userID, models.AuditActionTransactionCreate, transaction, ipAddress, userAgent)
	s.metrics.RecordTransactionSaved("create")
	s.publish(userID)

	return transaction, nil
}

// UpdateEntry rewrites an existing transaction entry. The document is
// replaced whole; only the creation timestamp survives the rewrite.
func (s *LedgerService) UpdateEntry(userID, entryID uuid.UUID, req *dto.SaveTransactionRequest, ipAddress, userAgent string) (*models.Transaction, error) {
	existing, err := s.transactionRepo.GetByID(userID, entryID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}

	transaction, err := BuildTransaction(req.Date, req.Incomes, req.Expenses)
	if err != nil {
		return nil, err
	}

	transaction.ID = existing.ID
	transaction.UserID = userID
	transaction.CreatedAt = existing.CreatedAt

	if err := s.transactionRepo.Update(transaction); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	s.audit(userID, models.AuditActionTransactionUpdate, transaction, ipAddress, userAgent)
	s.metrics.RecordTransactionSaved("update")
	s.publish(userID)

	return transaction, nil
}

// DeleteEntry removes a transaction entry
func (s *LedgerService) DeleteEntry(userID, entryID uuid.UUID, ipAddress, userAgent string) error {
	if err := s.transactionRepo.Delete(userID, entryID); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	s.auditDelete(userID, entryID, ipAddress, userAgent)
	s.metrics.RecordTransactionSaved("delete")
	s.publish(userID)

	return nil
}

// GetEntry returns a single transaction entry
func (s *LedgerService) GetEntry(userID, entryID uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(userID, entryID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return transaction, nil
}

// ListEntries returns the user's entries, optionally filtered to an
// inclusive date range, newest first
func (s *LedgerService) ListEntries(userID uuid.UUID, startDate, endDate string) ([]models.Transaction, error) {
	if startDate == "" && endDate == "" {
		return s.transactionRepo.GetByUserID(userID)
	}

	start, end := startDate, endDate
	if start == "" {
		start, _ = MonthBounds()
	}
	if end == "" {
		_, end = MonthBounds()
	}

	return s.transactionRepo.GetByUserIDAndDateRange(userID, start, end)
}

// EntryForms rebuilds the editable form state for both sides of a stored entry
func (s *LedgerService) EntryForms(userID, entryID uuid.UUID) (*dto.EntryFormResponse, error) {
	transaction, err := s.GetEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	return &dto.EntryFormResponse{
		Date:    transaction.Date,
		Income:  ReconstructForm(models.IncomeCategories, transaction.Incomes),
		Expense: ReconstructForm(models.ExpenseCategories, transaction.Expenses),
	}, nil
}

// publish pushes the user's refreshed entry list to live feed subscribers
func (s *LedgerService) publish(userID uuid.UUID) {
	if s.feed == nil {
		return
	}

	transactions, err := s.transactionRepo.GetByUserID(userID)
	if err != nil {
		s.logger.Warn("failed to load entries for feed publish",
			"error", err,
			"user_id", userID)
		return
	}

	s.feed.Publish(userID, transactions)
}

func (s *LedgerService) audit(userID uuid.UUID, action string, transaction *models.Transaction, ipAddress, userAgent string) {
	metadata := map[string]interface{}{
		"transaction_id": transaction.ID.String(),
		"date":           transaction.Date,
		"total_income":   transaction.TotalIncome,
		"total_expense":  transaction.TotalExpense,
	}
	s.createAuditLog(userID, action, ipAddress, userAgent, metadata)
}

func (s *LedgerService) auditDelete(userID, entryID uuid.UUID, ipAddress, userAgent string) {
	metadata := map[string]interface{}{
		"transaction_id": entryID.String(),
	}
	s.createAuditLog(userID, models.AuditActionTransactionDelete, ipAddress, userAgent, metadata)
}

func (s *LedgerService) createAuditLog(userID uuid.UUID, action, ipAddress, userAgent string, metadata map[string]interface{}) {
	log := &models.AuditLog{
		UserID:    &userID,
		Action:    action,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Metadata:  metadata,
	}

	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log",
			"error", err,
			"action", action)
	}
}
