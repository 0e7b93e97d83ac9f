package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"ecom-dashboard/internal/dataset"
	"ecom-dashboard/internal/metrics"
	"ecom-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

// periodKey identifies one prepared period dataset. The full parameter tuple
// is part of the key so a cached dataset can never be served for different
// filter parameters.
type periodKey struct {
	status   string
	year     int
	month    int
	delivery bool
}

// Analytics owns the session's raw-table cache and an explicit keyed cache of
// prepared period datasets. Raw tables are loaded once and read-only
// afterwards; every query method derives fresh results from cached or newly
// prepared datasets, never mutating shared state. The generation counter ties
// each cached dataset to the table set it was built from, so a build that was
// in flight when the tables were swapped can never populate the new cache.
type Analytics struct {
	mu       sync.RWMutex
	tables   *models.RawTables
	periods  map[periodKey][]models.SalesRecord
	gen      uint64
	loadedAt time.Time

	loader *dataset.Loader
	status string
	logger *slog.Logger
}

func NewAnalytics(dir, status string, logger *slog.Logger) *Analytics {
	return &Analytics{
		periods: make(map[periodKey][]models.SalesRecord),
		loader:  dataset.NewLoader(dir, logger),
		status:  status,
		logger:  logger,
	}
}

// Load reads the five raw tables. Call once per session before serving.
func (a *Analytics) Load(ctx context.Context) error {
	start := time.Now()
	tables, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.tables = tables
	a.periods = make(map[periodKey][]models.SalesRecord)
	a.gen++
	a.loadedAt = time.Now()
	a.mu.Unlock()

	a.logger.Info("analytics data ready", "duration", time.Since(start))
	return nil
}

// SetTables installs already-built tables, bypassing the loader. Used by tests
// and by callers that source tables elsewhere.
func (a *Analytics) SetTables(tables *models.RawTables) {
	a.mu.Lock()
	a.tables = tables
	a.periods = make(map[periodKey][]models.SalesRecord)
	a.gen++
	a.loadedAt = time.Now()
	a.mu.Unlock()
}

// Period returns the prepared dataset for (year, month), building and caching
// it on first use. Zero year means the whole session; zero month means the
// whole year. The build runs outside the lock; its result is cached only if
// the tables it was built from are still the installed generation, so a
// concurrent SetTables or Load cannot end up behind a stale cache entry.
func (a *Analytics) Period(year, month int, withDelivery bool) []models.SalesRecord {
	key := periodKey{status: a.status, year: year, month: month, delivery: withDelivery}

	a.mu.RLock()
	cached, ok := a.periods[key]
	tables := a.tables
	gen := a.gen
	a.mu.RUnlock()

	if ok {
		return cached
	}
	if tables == nil {
		return []models.SalesRecord{}
	}

	prepared := dataset.PrepareSalesData(tables, a.status, year, month, withDelivery, a.logger)

	a.mu.Lock()
	if a.gen == gen {
		a.periods[key] = prepared
	}
	a.mu.Unlock()

	return prepared
}

// RevenueSummary compares (year, month) with the same period one year prior.
// The two period datasets are independent, so they are built concurrently.
func (a *Analytics) RevenueSummary(ctx context.Context, year, month int) (models.RevenueSummary, error) {
	var current, previous []models.SalesRecord

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		current = a.Period(year, month, false)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		previous = a.Period(year-1, month, false)
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.RevenueSummary{}, err
	}

	return metrics.RevenueSummary(current, previous), nil
}

func (a *Analytics) MonthlyRevenue(year int) []models.MonthlyRevenue {
	return metrics.MonthlyRevenue(a.Period(year, 0, false))
}

func (a *Analytics) CategorySales(year, month int) []models.CategorySales {
	a.mu.RLock()
	tables := a.tables
	a.mu.RUnlock()
	if tables == nil {
		return []models.CategorySales{}
	}
	return metrics.ProductCategorySales(a.Period(year, month, false), tables.Products)
}

func (a *Analytics) SalesByState(year, month int) []models.StateSales {
	a.mu.RLock()
	tables := a.tables
	a.mu.RUnlock()
	if tables == nil {
		return []models.StateSales{}
	}
	return metrics.SalesByState(a.Period(year, month, false), tables.Orders, tables.Customers)
}

func (a *Analytics) ReviewScoreDistribution(year, month int) []models.ScoreShare {
	a.mu.RLock()
	tables := a.tables
	a.mu.RUnlock()
	if tables == nil {
		return []models.ScoreShare{}
	}
	return metrics.ReviewScoreDistribution(a.Period(year, month, false), tables.Reviews)
}

func (a *Analytics) ReviewByDeliveryTime(year, month int) []models.DeliveryTimeScore {
	a.mu.RLock()
	tables := a.tables
	a.mu.RUnlock()
	if tables == nil {
		return []models.DeliveryTimeScore{}
	}
	return metrics.ReviewByDeliveryTime(a.Period(year, month, true), tables.Reviews)
}

func (a *Analytics) StatusDistribution(year int) []models.StatusShare {
	a.mu.RLock()
	tables := a.tables
	a.mu.RUnlock()
	if tables == nil {
		return []models.StatusShare{}
	}
	return metrics.OrderStatusDistribution(tables.Orders, year)
}

// AvailableYears lists the distinct purchase years present in the orders
// table, ascending. Drives the dashboard's period selector.
func (a *Analytics) AvailableYears() []int {
	a.mu.RLock()
	tables := a.tables
	a.mu.RUnlock()
	if tables == nil {
		return []int{}
	}

	seen := make(map[int]struct{})
	for _, order := range tables.Orders {
		ts, err := dataset.ParseTimestamp(order.PurchaseTimestamp)
		if err != nil {
			continue
		}
		seen[ts.Year()] = struct{}{}
	}

	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	slices.Sort(years)
	return years
}

// Stats reports table and cache sizes for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"loaded":         a.tables != nil,
		"loaded_at":      a.loadedAt,
		"cached_periods": len(a.periods),
		"status_filter":  a.status,
	}
	if a.tables != nil {
		stats["orders"] = len(a.tables.Orders)
		stats["order_items"] = len(a.tables.OrderItems)
		stats["products"] = len(a.tables.Products)
		stats["customers"] = len(a.tables.Customers)
		stats["reviews"] = len(a.tables.Reviews)
	}
	return stats
}
