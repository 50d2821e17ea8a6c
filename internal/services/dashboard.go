package services

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// trendSize is how many of the most recent entries feed the trend chart
const trendSize = 10

// MonthBounds returns the first and last day of the current month as ISO
// dates, the default dashboard range.
func MonthBounds() (string, string) {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(models.DateLayout), last.Format(models.DateLayout)
}

// Aggregate computes the dashboard view from a list of transactions already
// filtered to the range and sorted newest first. Totals are summed as
// decimals; the trend covers the most recent entries in chronological order;
// the breakdown sums expenses per category, largest first.
func Aggregate(transactions []models.Transaction, startDate, endDate string) *models.DashboardView {
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for i := range transactions {
		totalIncome = totalIncome.Add(decimal.NewFromFloat(transactions[i].TotalIncome))
		totalExpense = totalExpense.Add(decimal.NewFromFloat(transactions[i].TotalExpense))
	}

	view := &models.DashboardView{
		StartDate:    startDate,
		EndDate:      endDate,
		TotalIncome:  totalIncome.InexactFloat64(),
		TotalExpense: totalExpense.InexactFloat64(),
		Balance:      totalIncome.Sub(totalExpense).InexactFloat64(),
		Transactions: transactions,
		Trend:        buildTrend(transactions),
		Breakdown:    buildBreakdown(transactions),
	}

	return view
}

// buildTrend takes the newest entries and flips them back into
// chronological order for the chart
func buildTrend(transactions []models.Transaction) []models.TrendPoint {
	recent := transactions
	if len(recent) > trendSize {
		recent = recent[:trendSize]
	}

	trend := make([]models.TrendPoint, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		trend = append(trend, models.TrendPoint{
			Label:   recent[i].Day(),
			Income:  recent[i].TotalIncome,
			Expense: recent[i].TotalExpense,
		})
	}

	return trend
}

// buildBreakdown sums expenses per category across the filtered entries.
// Categories with no spending are left out.
func buildBreakdown(transactions []models.Transaction) []models.CategorySlice {
	sums := make(map[string]decimal.Decimal)
	for i := range transactions {
		for category, amounts := range transactions[i].Expenses {
			sums[category] = sums[category].Add(decimal.NewFromFloat(amounts.Total()))
		}
	}

	breakdown := make([]models.CategorySlice, 0, len(sums))
	for category, sum := range sums {
		if !sum.IsPositive() {
			continue
		}
		breakdown = append(breakdown, models.CategorySlice{
			Category: category,
			Value:    sum.InexactFloat64(),
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Value != breakdown[j].Value {
			return breakdown[i].Value > breakdown[j].Value
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	return breakdown
}

// DashboardService serves the aggregated dashboard view
type DashboardService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
	}
}

// GetDashboard returns the dashboard view for the given range. Missing
// bounds default to the current month.
func (s *DashboardService) GetDashboard(userID uuid.UUID, startDate, endDate string) (*models.DashboardView, error) {
	started := time.Now()

	defaultStart, defaultEnd := MonthBounds()
	if startDate == "" {
		startDate = defaultStart
	}
	if endDate == "" {
		endDate = defaultEnd
	}

	transactions, err := s.transactionRepo.GetByUserIDAndDateRange(userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for dashboard: %w", err)
	}

	view := Aggregate(transactions, startDate, endDate)
	s.metrics.RecordDashboardQuery(time.Since(started))

	return view, nil
}
