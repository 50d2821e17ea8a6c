package services

import (
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const (
	DefaultSampleDays = 30
	MaxSampleDays     = 365
)

// expenseProfile describes how sample spending is generated per category
type expenseProfile struct {
	category string
	min      float64
	max      float64
	chance   float64
	labels   []string
}

var sampleExpenseProfiles = []expenseProfile{
	{"Rent", 12000, 25000, 0.08, []string{"Monthly rent"}},
	{"EMI", 5000, 20000, 0.1, []string{"Car loan", "Home loan", "Phone EMI"}},
	{"Maintenance", 1000, 4000, 0.1, []string{"Society maintenance", "Repairs"}},
	{"Credit Card Bill", 3000, 30000, 0.12, []string{"Card payment"}},
	{"Utilities", 500, 3500, 0.2, []string{"Electricity", "Water", "Internet", "Gas"}},
	{"Bill", 200, 2500, 0.25, []string{"Phone bill", "Subscription", "Insurance"}},
	{"SIP", 2000, 15000, 0.1, []string{"Mutual fund SIP"}},
	{"Others", 100, 5000, 0.5, []string{"Groceries", "Dining out", "Shopping", "Fuel", "Movie night"}},
}

// SampleDataService generates realistic demo entries for development
type SampleDataService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	feed            FeedInterface
	logger          *slog.Logger
	faker           *gofakeit.Faker
}

// NewSampleDataService creates a new sample data generator
func NewSampleDataService(
	transactionRepo repositories.TransactionRepositoryInterface,
	feed FeedInterface,
	logger *slog.Logger,
) SampleDataServiceInterface {
	return &SampleDataService{
		transactionRepo: transactionRepo,
		feed:            feed,
		logger:          logger,
		faker:           gofakeit.New(0),
	}
}

// Generate writes sample entries for the past N days. Roughly half the days
// get an entry; salary lands on the first generated day of each month.
func (s *SampleDataService) Generate(userID uuid.UUID, days int) ([]models.Transaction, error) {
	if days <= 0 {
		days = DefaultSampleDays
	}
	if days > MaxSampleDays {
		days = MaxSampleDays
	}

	var created []models.Transaction
	salaryMonths := make(map[string]bool)

	for offset := days - 1; offset >= 0; offset-- {
		day := time.Now().AddDate(0, 0, -offset)

		transaction := s.generateDay(userID, day, salaryMonths)
		if transaction == nil {
			continue
		}

		if err := s.transactionRepo.Create(transaction); err != nil {
			return nil, fmt.Errorf("failed to save sample entry: %w", err)
		}
		created = append(created, *transaction)
	}

	s.logger.Info("generated sample data",
		"user_id", userID,
		"days", days,
		"entries", len(created))

	if s.feed != nil {
		if transactions, err := s.transactionRepo.GetByUserID(userID); err == nil {
			s.feed.Publish(userID, transactions)
		}
	}

	return created, nil
}

func (s *SampleDataService) generateDay(userID uuid.UUID, day time.Time, salaryMonths map[string]bool) *models.Transaction {
	incomes := models.CategorySide{}
	expenses := models.CategorySide{}

	month := day.Format("2006-01")
	if !salaryMonths[month] {
		salaryMonths[month] = true
		incomes["Salary"] = models.AmountList{{
			Amount: float64(s.faker.IntRange(40000, 120000)),
			Label:  "Monthly salary",
		}}
	}

	if s.faker.Float64Range(0, 1) < 0.05 {
		incomes["Investments"] = models.AmountList{{
			Amount: s.roundAmount(s.faker.Float64Range(500, 10000)),
			Label:  "Dividend payout",
		}}
	}

	for _, profile := range sampleExpenseProfiles {
		if s.faker.Float64Range(0, 1) >= profile.chance {
			continue
		}
		expenses[profile.category] = models.AmountList{{
			Amount: s.roundAmount(s.faker.Float64Range(profile.min, profile.max)),
			Label:  s.faker.RandomString(profile.labels),
		}}
	}

	if len(incomes) == 0 && len(expenses) == 0 {
		return nil
	}

	return &models.Transaction{
		UserID:       userID,
		Date:         day.Format(models.DateLayout),
		Incomes:      incomes,
		Expenses:     expenses,
		TotalIncome:  incomes.Total(),
		TotalExpense: expenses.Total(),
	}
}

// roundAmount keeps generated amounts at two decimal places
func (s *SampleDataService) roundAmount(v float64) float64 {
	return float64(int(v*100)) / 100
}
