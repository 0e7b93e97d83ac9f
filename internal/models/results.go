package models

type MonthlyRevenue struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
}

type MonthlyGrowthPoint struct {
	Month  int    `json:"month"`
	Growth Metric `json:"growth"` // NaN for the first month (no prior month)
}

type CategorySales struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

type StateSales struct {
	State   string  `json:"state"`
	Revenue float64 `json:"revenue"`
}

type ScoreShare struct {
	Score int     `json:"score"`
	Share float64 `json:"share"`
}

type DeliveryTimeScore struct {
	DeliveryTime string `json:"delivery_time"`
	AvgScore     Metric `json:"avg_score"`
}

type StatusShare struct {
	Status string  `json:"status"`
	Share  float64 `json:"share"`
}

// RevenueSummary compares a period with the same period one year prior.
type RevenueSummary struct {
	CurrentRevenue   float64 `json:"current_revenue"`
	PreviousRevenue  float64 `json:"previous_revenue"`
	RevenueGrowth    float64 `json:"revenue_growth"`
	CurrentAOV       Metric  `json:"current_aov"`
	PreviousAOV      Metric  `json:"previous_aov"`
	AOVGrowth        Metric  `json:"aov_growth"`
	CurrentOrders    int     `json:"current_orders"`
	PreviousOrders   int     `json:"previous_orders"`
	OrderGrowth      float64 `json:"order_growth"`
	AvgMonthlyGrowth Metric  `json:"avg_monthly_growth"`
}
