package services

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/stretchr/testify/suite"
)

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds()

	startDate, err := time.Parse(models.DateLayout, start)
	if err != nil {
		t.Fatalf("start is not a valid date: %v", err)
	}
	endDate, err := time.Parse(models.DateLayout, end)
	if err != nil {
		t.Fatalf("end is not a valid date: %v", err)
	}

	if startDate.Day() != 1 {
		t.Errorf("start day = %d, want 1", startDate.Day())
	}
	if startDate.Month() != endDate.Month() {
		t.Errorf("bounds span months: %s .. %s", start, end)
	}
	if endDate.AddDate(0, 0, 1).Day() != 1 {
		t.Errorf("end %s is not the last day of the month", end)
	}
}

// newestFirst builds a descending list the way the repository returns it
func newestFirst(transactions ...models.Transaction) []models.Transaction {
	for i, j := 0, len(transactions)-1; i < j; i, j = i+1, j-1 {
		transactions[i], transactions[j] = transactions[j], transactions[i]
	}
	return transactions
}

func TestAggregate(t *testing.T) {
	transactions := newestFirst(
		models.Transaction{
			Date: "2025-08-10",
			Incomes: models.CategorySide{
				"Salary": {{Amount: 50000, Label: "August salary"}},
			},
			TotalIncome: 50000,
		},
		models.Transaction{
			Date: "2025-08-15",
			Expenses: models.CategorySide{
				"Rent":   {{Amount: 15000}},
				"Others": {{Amount: 2000, Label: "Groceries"}},
			},
			TotalExpense: 17000,
		},
	)

	view := Aggregate(transactions, "2025-08-01", "2025-08-31")

	if view.TotalIncome != 50000 {
		t.Errorf("TotalIncome = %v, want 50000", view.TotalIncome)
	}
	if view.TotalExpense != 17000 {
		t.Errorf("TotalExpense = %v, want 17000", view.TotalExpense)
	}
	if view.Balance != 33000 {
		t.Errorf("Balance = %v, want 33000", view.Balance)
	}
	if view.StartDate != "2025-08-01" || view.EndDate != "2025-08-31" {
		t.Errorf("range = %s..%s", view.StartDate, view.EndDate)
	}

	if len(view.Trend) != 2 {
		t.Fatalf("len(Trend) = %d, want 2", len(view.Trend))
	}
	if view.Trend[0].Label != 10 || view.Trend[1].Label != 15 {
		t.Errorf("trend labels = %d, %d; want 10, 15", view.Trend[0].Label, view.Trend[1].Label)
	}
	if view.Trend[0].Income != 50000 || view.Trend[1].Expense != 17000 {
		t.Errorf("trend values wrong: %+v", view.Trend)
	}

	want := []models.CategorySlice{
		{Category: "Rent", Value: 15000},
		{Category: "Others", Value: 2000},
	}
	if len(view.Breakdown) != len(want) {
		t.Fatalf("len(Breakdown) = %d, want %d", len(view.Breakdown), len(want))
	}
	for i := range want {
		if view.Breakdown[i] != want[i] {
			t.Errorf("Breakdown[%d] = %+v, want %+v", i, view.Breakdown[i], want[i])
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	view := Aggregate(nil, "2025-08-01", "2025-08-31")

	if view.TotalIncome != 0 || view.TotalExpense != 0 || view.Balance != 0 {
		t.Errorf("totals not zero: %+v", view)
	}
	if len(view.Trend) != 0 {
		t.Errorf("len(Trend) = %d, want 0", len(view.Trend))
	}
	if len(view.Breakdown) != 0 {
		t.Errorf("len(Breakdown) = %d, want 0", len(view.Breakdown))
	}
}

func TestAggregate_TrendCapsAtRecentEntries(t *testing.T) {
	var transactions []models.Transaction
	for day := 1; day <= 15; day++ {
		transactions = append(transactions, models.Transaction{
			Date:        fmt.Sprintf("2025-08-%02d", day),
			TotalIncome: float64(day * 100),
		})
	}
	transactions = newestFirst(transactions...)

	view := Aggregate(transactions, "2025-08-01", "2025-08-31")

	if len(view.Trend) != trendSize {
		t.Fatalf("len(Trend) = %d, want %d", len(view.Trend), trendSize)
	}
	// The ten most recent days, oldest of them first
	if view.Trend[0].Label != 6 || view.Trend[trendSize-1].Label != 15 {
		t.Errorf("trend spans days %d..%d, want 6..15", view.Trend[0].Label, view.Trend[trendSize-1].Label)
	}
}

func TestAggregate_BreakdownTiesSortByName(t *testing.T) {
	transactions := []models.Transaction{{
		Date: "2025-08-15",
		Expenses: models.CategorySide{
			"Utilities": {{Amount: 500}},
			"Bill":      {{Amount: 500}},
			"Rent":      {{Amount: 9000}},
		},
		TotalExpense: 10000,
	}}

	view := Aggregate(transactions, "2025-08-01", "2025-08-31")

	if len(view.Breakdown) != 3 {
		t.Fatalf("len(Breakdown) = %d, want 3", len(view.Breakdown))
	}
	if view.Breakdown[0].Category != "Rent" {
		t.Errorf("Breakdown[0] = %q, want Rent", view.Breakdown[0].Category)
	}
	if view.Breakdown[1].Category != "Bill" || view.Breakdown[2].Category != "Utilities" {
		t.Errorf("tied categories out of order: %+v", view.Breakdown[1:])
	}
}

// DashboardServiceTestSuite exercises the service against an in-memory database
type DashboardServiceTestSuite struct {
	suite.Suite
	db      *database.DB
	service DashboardServiceInterface
	user    *models.User
}

func (s *DashboardServiceTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	transactionRepo := repositories.NewTransactionRepository(s.db.DB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.service = NewDashboardService(transactionRepo, &NoopMetrics{}, logger)

	s.user = database.CreateTestUser(s.T(), s.db, "dashboard@example.com")
}

func (s *DashboardServiceTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestDashboardServiceSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceTestSuite))
}

func (s *DashboardServiceTestSuite) createEntry(date string, income, expense models.CategorySide) {
	transaction := &models.Transaction{
		UserID:       s.user.ID,
		Date:         date,
		Incomes:      income,
		Expenses:     expense,
		TotalIncome:  income.Total(),
		TotalExpense: expense.Total(),
	}
	s.Require().NoError(s.db.Create(transaction).Error)
}

func (s *DashboardServiceTestSuite) TestGetDashboard_ExplicitRange() {
	s.createEntry("2025-08-10",
		models.CategorySide{"Salary": {{Amount: 50000}}},
		nil)
	s.createEntry("2025-08-15",
		nil,
		models.CategorySide{"Rent": {{Amount: 15000}}, "Others": {{Amount: 2000}}})
	s.createEntry("2025-09-01",
		models.CategorySide{"Salary": {{Amount: 99999}}},
		nil)

	view, err := s.service.GetDashboard(s.user.ID, "2025-08-01", "2025-08-31")
	s.NoError(err)
	s.Equal(float64(50000), view.TotalIncome)
	s.Equal(float64(17000), view.TotalExpense)
	s.Equal(float64(33000), view.Balance)
	s.Len(view.Transactions, 2)
	s.Len(view.Trend, 2)
	s.Require().Len(view.Breakdown, 2)
	s.Equal("Rent", view.Breakdown[0].Category)
	s.Equal(float64(15000), view.Breakdown[0].Value)
	s.Equal("Others", view.Breakdown[1].Category)
}

func (s *DashboardServiceTestSuite) TestGetDashboard_DefaultsToCurrentMonth() {
	today := time.Now().Format(models.DateLayout)
	s.createEntry(today, models.CategorySide{"Salary": {{Amount: 1000}}}, nil)
	s.createEntry("1999-01-01", models.CategorySide{"Salary": {{Amount: 777}}}, nil)

	view, err := s.service.GetDashboard(s.user.ID, "", "")
	s.NoError(err)

	wantStart, wantEnd := MonthBounds()
	s.Equal(wantStart, view.StartDate)
	s.Equal(wantEnd, view.EndDate)
	s.Equal(float64(1000), view.TotalIncome)
	s.Len(view.Transactions, 1)
}

func (s *DashboardServiceTestSuite) TestGetDashboard_OtherUsersInvisible() {
	other := database.CreateTestUser(s.T(), s.db, "other-dash@example.com")
	transaction := &models.Transaction{
		UserID:      other.ID,
		Date:        "2025-08-15",
		Incomes:     models.CategorySide{"Salary": {{Amount: 5000}}},
		TotalIncome: 5000,
	}
	s.Require().NoError(s.db.Create(transaction).Error)

	view, err := s.service.GetDashboard(s.user.ID, "2025-08-01", "2025-08-31")
	s.NoError(err)
	s.Zero(view.TotalIncome)
	s.Empty(view.Transactions)
}
