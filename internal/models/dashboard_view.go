package models

// TrendPoint is one bar group of the daily trend chart. The label is the day
// of month of the underlying transaction.
type TrendPoint struct {
	Label   int     `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// CategorySlice is one slice of the expense breakdown chart.
type CategorySlice struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// DashboardView is everything the dashboard screen needs for one date range:
// headline totals, the filtered transaction list (newest first), the trend
// series and the expense breakdown.
type DashboardView struct {
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	TotalIncome  float64         `json:"totalIncome"`
	TotalExpense float64         `json:"totalExpense"`
	Balance      float64         `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
	Trend        []TrendPoint    `json:"trend"`
	Breakdown    []CategorySlice `json:"breakdown"`
}
