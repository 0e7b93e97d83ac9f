// Package metrics computes scalar and tabular aggregates over prepared sales
// datasets. Every function is a pure transform: no shared state, identical
// output for identical input.
package metrics

import (
	"math"
	"slices"

	"ecom-dashboard/internal/dataset"
	"ecom-dashboard/internal/models"
)

// TotalRevenue sums line-item prices over the period. Zero on an empty dataset.
func TotalRevenue(sales []models.SalesRecord) float64 {
	var total float64
	for _, record := range sales {
		total += record.Price
	}
	return total
}

// Growth is the relative change between two period scalars. When the previous
// value is exactly zero the result is floored to 0.0 even if current is
// nonzero; consumers depend on a finite value here.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// RevenueGrowth, AOVGrowth and OrderGrowth share the Growth floor; they exist
// as named operations because the summary reports each separately.

func RevenueGrowth(current, previous float64) float64 {
	return Growth(current, previous)
}

func AOVGrowth(current, previous float64) float64 {
	return Growth(current, previous)
}

func OrderGrowth(current, previous int) float64 {
	return Growth(float64(current), float64(previous))
}

// orderTotals collapses line items to per-order revenue, returning totals in
// first-seen order.
func orderTotals(sales []models.SalesRecord) []float64 {
	index := make(map[string]int, len(sales))
	totals := make([]float64, 0)
	for _, record := range sales {
		i, ok := index[record.OrderID]
		if !ok {
			i = len(totals)
			index[record.OrderID] = i
			totals = append(totals, 0)
		}
		totals[i] += record.Price
	}
	return totals
}

// AverageOrderValue is the mean of per-order summed revenue, never the mean of
// line-item prices; the latter would misweight multi-item orders. NaN on an
// empty dataset.
func AverageOrderValue(sales []models.SalesRecord) float64 {
	totals := orderTotals(sales)
	if len(totals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, total := range totals {
		sum += total
	}
	return sum / float64(len(totals))
}

// TotalOrders counts distinct orders, not sales rows.
func TotalOrders(sales []models.SalesRecord) int {
	seen := make(map[string]struct{}, len(sales))
	for _, record := range sales {
		seen[record.OrderID] = struct{}{}
	}
	return len(seen)
}

// MonthlyGrowth is the month-over-month revenue change within the period,
// ordered by month. The first month has no prior month and carries NaN. A
// month following a zero-revenue month also carries NaN: the change is
// treated as undefined, not infinite, so it serializes as null and stays out
// of AverageMonthlyGrowth.
func MonthlyGrowth(sales []models.SalesRecord) []models.MonthlyGrowthPoint {
	revenue := make(map[int]float64)
	for _, record := range sales {
		revenue[record.Month] += record.Price
	}

	months := make([]int, 0, len(revenue))
	for month := range revenue {
		months = append(months, month)
	}
	slices.Sort(months)

	points := make([]models.MonthlyGrowthPoint, 0, len(months))
	for i, month := range months {
		growth := math.NaN()
		if i > 0 {
			prev := revenue[months[i-1]]
			if prev != 0 {
				growth = (revenue[month] - prev) / prev
			}
		}
		points = append(points, models.MonthlyGrowthPoint{Month: month, Growth: models.Metric(growth)})
	}
	return points
}

// AverageMonthlyGrowth is the mean of the defined growth values, skipping the
// undefined leading entry. NaN when no growth value is defined.
func AverageMonthlyGrowth(points []models.MonthlyGrowthPoint) float64 {
	var sum float64
	var n int
	for _, point := range points {
		if point.Growth.IsNaN() {
			continue
		}
		sum += float64(point.Growth)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// MonthlyRevenue sums revenue per (year, month), ascending by calendar order.
func MonthlyRevenue(sales []models.SalesRecord) []models.MonthlyRevenue {
	type yearMonth struct{ year, month int }
	revenue := make(map[yearMonth]float64)
	for _, record := range sales {
		revenue[yearMonth{record.Year, record.Month}] += record.Price
	}

	out := make([]models.MonthlyRevenue, 0, len(revenue))
	for ym, total := range revenue {
		out = append(out, models.MonthlyRevenue{Year: ym.year, Month: ym.month, Revenue: total})
	}
	slices.SortFunc(out, func(a, b models.MonthlyRevenue) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		return a.Month - b.Month
	})
	return out
}

// ProductCategorySales joins sales to products on product_id, sums revenue per
// category and sorts descending. Sales rows without a known product and
// products without a category are dropped, matching inner-join semantics.
// Ties keep first-seen input order.
func ProductCategorySales(sales []models.SalesRecord, products []models.Product) []models.CategorySales {
	category := make(map[string]string, len(products))
	for _, product := range products {
		category[product.ProductID] = product.Category
	}

	index := make(map[string]int)
	out := make([]models.CategorySales, 0)
	for _, record := range sales {
		name, ok := category[record.ProductID]
		if !ok || name == "" {
			continue
		}
		i, found := index[name]
		if !found {
			i = len(out)
			index[name] = i
			out = append(out, models.CategorySales{Category: name})
		}
		out[i].Revenue += record.Price
	}

	slices.SortStableFunc(out, func(a, b models.CategorySales) int {
		switch {
		case a.Revenue > b.Revenue:
			return -1
		case a.Revenue < b.Revenue:
			return 1
		default:
			return 0
		}
	})
	return out
}

// SalesByState joins sales to orders, then orders to customers, sums revenue
// per customer state and sorts descending. Unmatched rows drop out at each
// join. Ties keep first-seen input order.
func SalesByState(sales []models.SalesRecord, orders []models.Order, customers []models.Customer) []models.StateSales {
	customerByOrder := make(map[string]string, len(orders))
	for _, order := range orders {
		customerByOrder[order.OrderID] = order.CustomerID
	}
	stateByCustomer := make(map[string]string, len(customers))
	for _, customer := range customers {
		stateByCustomer[customer.CustomerID] = customer.State
	}

	index := make(map[string]int)
	out := make([]models.StateSales, 0)
	for _, record := range sales {
		customerID, ok := customerByOrder[record.OrderID]
		if !ok {
			continue
		}
		state, ok := stateByCustomer[customerID]
		if !ok {
			continue
		}
		i, found := index[state]
		if !found {
			i = len(out)
			index[state] = i
			out = append(out, models.StateSales{State: state})
		}
		out[i].Revenue += record.Price
	}

	slices.SortStableFunc(out, func(a, b models.StateSales) int {
		switch {
		case a.Revenue > b.Revenue:
			return -1
		case a.Revenue < b.Revenue:
			return 1
		default:
			return 0
		}
	})
	return out
}

// AverageDeliveryTime is the mean delivery speed in days over delivered
// records. Undelivered records never contribute. NaN when none are delivered.
func AverageDeliveryTime(sales []models.SalesRecord) float64 {
	var sum float64
	var n int
	for _, record := range sales {
		if !record.Delivered {
			continue
		}
		sum += float64(record.DeliverySpeed)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

type orderScore struct {
	orderID string
	score   int
}

// uniqueReviews joins period orders to reviews and collapses duplicate
// (order_id, score) pairs: raw review data repeats logical reviews, and the
// item-level join would multiply them again. Two different scores for the same
// order are a data-quality artifact that is deliberately kept; both count.
func uniqueReviews(sales []models.SalesRecord, reviews []models.Review) []orderScore {
	inPeriod := make(map[string]struct{}, len(sales))
	for _, record := range sales {
		inPeriod[record.OrderID] = struct{}{}
	}

	seen := make(map[orderScore]struct{})
	out := make([]orderScore, 0)
	for _, review := range reviews {
		if _, ok := inPeriod[review.OrderID]; !ok {
			continue
		}
		pair := orderScore{review.OrderID, review.Score}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		out = append(out, pair)
	}
	return out
}

// AverageReviewScore is the mean score over deduplicated reviews for orders in
// the period. NaN when the period has no reviews.
func AverageReviewScore(sales []models.SalesRecord, reviews []models.Review) float64 {
	unique := uniqueReviews(sales, reviews)
	if len(unique) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, review := range unique {
		sum += float64(review.score)
	}
	return sum / float64(len(unique))
}

// ReviewScoreDistribution is the normalized frequency of deduplicated review
// scores, ascending by score.
func ReviewScoreDistribution(sales []models.SalesRecord, reviews []models.Review) []models.ScoreShare {
	unique := uniqueReviews(sales, reviews)
	if len(unique) == 0 {
		return []models.ScoreShare{}
	}

	counts := make(map[int]int)
	for _, review := range unique {
		counts[review.score]++
	}

	out := make([]models.ScoreShare, 0, len(counts))
	for score, count := range counts {
		out = append(out, models.ScoreShare{Score: score, Share: float64(count) / float64(len(unique))})
	}
	slices.SortFunc(out, func(a, b models.ScoreShare) int { return a.Score - b.Score })
	return out
}

// ReviewByDeliveryTime averages deduplicated review scores per delivery-time
// bucket, in canonical bucket order. Requires delivery-enriched sales.
func ReviewByDeliveryTime(sales []models.SalesRecord, reviews []models.Review) []models.DeliveryTimeScore {
	bucketByOrder := make(map[string]string, len(sales))
	for _, record := range sales {
		if record.Delivered && record.DeliveryTime != "" {
			bucketByOrder[record.OrderID] = record.DeliveryTime
		}
	}

	type bucketAgg struct {
		sum float64
		n   int
	}
	agg := make(map[string]*bucketAgg)
	for _, review := range uniqueReviews(sales, reviews) {
		bucket, ok := bucketByOrder[review.orderID]
		if !ok {
			continue
		}
		if agg[bucket] == nil {
			agg[bucket] = &bucketAgg{}
		}
		agg[bucket].sum += float64(review.score)
		agg[bucket].n++
	}

	out := make([]models.DeliveryTimeScore, 0, len(agg))
	for _, bucket := range dataset.DeliveryBuckets {
		a, ok := agg[bucket]
		if !ok {
			continue
		}
		out = append(out, models.DeliveryTimeScore{
			DeliveryTime: bucket,
			AvgScore:     models.Metric(a.sum / float64(a.n)),
		})
	}
	return out
}

// OrderStatusDistribution is the normalized frequency of order statuses,
// optionally restricted to a purchase year. Rows with unparseable timestamps
// drop out of a year-restricted distribution. Sorted descending by share,
// ties in first-seen order.
func OrderStatusDistribution(orders []models.Order, year int) []models.StatusShare {
	counts := make(map[string]int)
	order := make([]string, 0)
	total := 0
	for _, o := range orders {
		if year != 0 {
			ts, err := dataset.ParseTimestamp(o.PurchaseTimestamp)
			if err != nil || ts.Year() != year {
				continue
			}
		}
		if _, ok := counts[o.Status]; !ok {
			order = append(order, o.Status)
		}
		counts[o.Status]++
		total++
	}

	if total == 0 {
		return []models.StatusShare{}
	}

	out := make([]models.StatusShare, 0, len(counts))
	for _, status := range order {
		out = append(out, models.StatusShare{Status: status, Share: float64(counts[status]) / float64(total)})
	}
	slices.SortStableFunc(out, func(a, b models.StatusShare) int {
		switch {
		case a.Share > b.Share:
			return -1
		case a.Share < b.Share:
			return 1
		default:
			return 0
		}
	})
	return out
}

// RevenueSummary composes the period-over-period comparison bundle from two
// independently prepared datasets: the current period and the same period one
// year prior.
func RevenueSummary(current, previous []models.SalesRecord) models.RevenueSummary {
	currentRevenue := TotalRevenue(current)
	previousRevenue := TotalRevenue(previous)

	currentAOV := AverageOrderValue(current)
	previousAOV := AverageOrderValue(previous)

	currentOrders := TotalOrders(current)
	previousOrders := TotalOrders(previous)

	return models.RevenueSummary{
		CurrentRevenue:   currentRevenue,
		PreviousRevenue:  previousRevenue,
		RevenueGrowth:    RevenueGrowth(currentRevenue, previousRevenue),
		CurrentAOV:       models.Metric(currentAOV),
		PreviousAOV:      models.Metric(previousAOV),
		AOVGrowth:        models.Metric(AOVGrowth(currentAOV, previousAOV)),
		CurrentOrders:    currentOrders,
		PreviousOrders:   previousOrders,
		OrderGrowth:      OrderGrowth(currentOrders, previousOrders),
		AvgMonthlyGrowth: models.Metric(AverageMonthlyGrowth(MonthlyGrowth(current))),
	}
}
