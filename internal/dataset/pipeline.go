package dataset

import (
	"log/slog"
	"time"

	"ecom-dashboard/internal/models"
)

// Timestamp layouts accepted by the temporal and delivery stages.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func ParseTimestamp(value string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}

// BuildSales inner-joins order items to orders on order_id. Items without a
// matching order are silently dropped. The result has one record per matched
// item, carrying the order's status and timestamps alongside the item fields.
func BuildSales(orders []models.Order, items []models.OrderItem) []models.SalesRecord {
	byID := make(map[string]*models.Order, len(orders))
	for i := range orders {
		byID[orders[i].OrderID] = &orders[i]
	}

	sales := make([]models.SalesRecord, 0, len(items))
	for _, item := range items {
		order, ok := byID[item.OrderID]
		if !ok {
			continue
		}
		sales = append(sales, models.SalesRecord{
			OrderID:            item.OrderID,
			OrderItemID:        item.OrderItemID,
			ProductID:          item.ProductID,
			Price:              item.Price,
			Status:             order.Status,
			PurchaseTimestamp:  order.PurchaseTimestamp,
			DeliveredTimestamp: order.DeliveredTimestamp,
		})
	}
	return sales
}

// FilterByStatus keeps records whose order status equals status exactly.
// Records with an empty or unrecognized status never match.
func FilterByStatus(sales []models.SalesRecord, status string) []models.SalesRecord {
	filtered := make([]models.SalesRecord, 0, len(sales))
	for _, record := range sales {
		if record.Status == status {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// AddTemporalFields parses the purchase timestamp of each record into
// PurchasedAt, Year and Month. A record with an unparseable timestamp is
// dropped with a warning rather than failing the pipeline.
func AddTemporalFields(sales []models.SalesRecord, logger *slog.Logger) []models.SalesRecord {
	out := make([]models.SalesRecord, 0, len(sales))
	for _, record := range sales {
		ts, err := ParseTimestamp(record.PurchaseTimestamp)
		if err != nil {
			logger.Warn("dropping record with malformed purchase timestamp",
				"order_id", record.OrderID, "value", record.PurchaseTimestamp)
			continue
		}
		record.PurchasedAt = ts
		record.Year = ts.Year()
		record.Month = int(ts.Month())
		out = append(out, record)
	}
	return out
}

// FilterByPeriod restricts records to a calendar year and optionally a month.
// Zero means unset. A month without a year is ignored: month filtering is
// meaningless without a year.
func FilterByPeriod(sales []models.SalesRecord, year, month int) []models.SalesRecord {
	if year == 0 {
		return sales
	}

	filtered := make([]models.SalesRecord, 0, len(sales))
	for _, record := range sales {
		if record.Year != year {
			continue
		}
		if month != 0 && record.Month != month {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

// AddDeliverySpeed derives the whole-day span between purchase and customer
// delivery. Records without a delivery timestamp stay in the dataset but are
// marked undelivered, so delivery aggregates skip them instead of seeing a
// zero. Runs after AddTemporalFields, which owns parsing the purchase stamp.
func AddDeliverySpeed(sales []models.SalesRecord, logger *slog.Logger) []models.SalesRecord {
	out := make([]models.SalesRecord, 0, len(sales))
	for _, record := range sales {
		if record.DeliveredTimestamp == "" {
			record.Delivered = false
			out = append(out, record)
			continue
		}
		delivered, err := ParseTimestamp(record.DeliveredTimestamp)
		if err != nil {
			logger.Warn("ignoring malformed delivery timestamp",
				"order_id", record.OrderID, "value", record.DeliveredTimestamp)
			record.Delivered = false
			out = append(out, record)
			continue
		}
		record.Delivered = true
		record.DeliverySpeed = int(delivered.Sub(record.PurchasedAt).Hours() / 24)
		out = append(out, record)
	}
	return out
}

// DeliveryBuckets lists the bucket labels in presentation order.
var DeliveryBuckets = []string{"1-3 days", "4-7 days", "8+ days"}

// CategorizeDeliverySpeed maps a whole-day delivery speed onto its bucket.
// Undefined for negative input; callers guard with the Delivered flag.
func CategorizeDeliverySpeed(days int) string {
	switch {
	case days <= 3:
		return "1-3 days"
	case days <= 7:
		return "4-7 days"
	default:
		return "8+ days"
	}
}

// AddDeliveryBuckets labels each delivered record with its bucket.
func AddDeliveryBuckets(sales []models.SalesRecord) []models.SalesRecord {
	out := make([]models.SalesRecord, 0, len(sales))
	for _, record := range sales {
		if record.Delivered {
			record.DeliveryTime = CategorizeDeliverySpeed(record.DeliverySpeed)
		}
		out = append(out, record)
	}
	return out
}

// PrepareSalesData runs the full pipeline over already-loaded tables:
// build -> status filter -> temporal fields -> period filter -> delivery
// enrichment. The order is fixed: delivery metrics are only meaningful for
// records already scoped to a status and period.
func PrepareSalesData(tables *models.RawTables, status string, year, month int, withDelivery bool, logger *slog.Logger) []models.SalesRecord {
	sales := BuildSales(tables.Orders, tables.OrderItems)
	sales = FilterByStatus(sales, status)
	sales = AddTemporalFields(sales, logger)
	sales = FilterByPeriod(sales, year, month)

	if withDelivery {
		sales = AddDeliverySpeed(sales, logger)
		sales = AddDeliveryBuckets(sales)
	}

	return sales
}
