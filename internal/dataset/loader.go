package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ecom-dashboard/internal/errors"
	"ecom-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

// Fixed file names within the data directory, one per entity.
const (
	OrdersFile     = "orders_dataset.csv"
	OrderItemsFile = "order_items_dataset.csv"
	ProductsFile   = "products_dataset.csv"
	CustomersFile  = "customers_dataset.csv"
	ReviewsFile    = "order_reviews_dataset.csv"
)

// Loader reads the five raw tables into memory. Pure ingestion: no filtering
// or derivation happens here, only column lookup and scalar coercion. Extra or
// reordered columns are tolerated; a missing required column is fatal.
type Loader struct {
	dir    string
	logger *slog.Logger
}

func NewLoader(dir string, logger *slog.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// Load reads all five tables concurrently and fails on the first missing or
// malformed file.
func (l *Loader) Load(ctx context.Context) (*models.RawTables, error) {
	tables := &models.RawTables{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables.Orders, err = l.loadOrders(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.OrderItems, err = l.loadOrderItems(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Products, err = l.loadProducts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Customers, err = l.loadCustomers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Reviews, err = l.loadReviews(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("raw tables loaded",
		"dir", l.dir,
		"orders", len(tables.Orders),
		"order_items", len(tables.OrderItems),
		"products", len(tables.Products),
		"customers", len(tables.Customers),
		"reviews", len(tables.Reviews),
	)

	return tables, nil
}

// table is one parsed delimited file: a header index plus data rows.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

// col returns the value of the named column for a row. The header index was
// validated up front, so lookups here cannot miss.
func (t *table) col(row []string, name string) string {
	return strings.TrimSpace(row[t.columns[name]])
}

func (l *Loader) readTable(ctx context.Context, filename string, required ...string) (*table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.dir, filename)
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.DataSource(err, fmt.Sprintf("cannot open %s", filename))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.DataSource(err, fmt.Sprintf("cannot read %s", filename))
	}

	// Strip a UTF-8 BOM if present; exported CSVs frequently carry one.
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DataSource(err, fmt.Sprintf("cannot parse %s", filename))
	}
	if len(records) == 0 {
		return nil, errors.DataSource(nil, fmt.Sprintf("%s has no header row", filename))
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}

	width := 0
	for _, name := range required {
		idx, ok := columns[name]
		if !ok {
			return nil, errors.Schema(filename, name)
		}
		if idx+1 > width {
			width = idx + 1
		}
	}

	rows := make([][]string, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < width {
			l.logger.Warn("dropping short row", "table", filename, "columns", len(row))
			continue
		}
		rows = append(rows, row)
	}

	return &table{name: filename, columns: columns, rows: rows}, nil
}

func (l *Loader) loadOrders(ctx context.Context) ([]models.Order, error) {
	t, err := l.readTable(ctx, OrdersFile,
		"order_id", "customer_id", "order_status", "order_purchase_timestamp", "order_delivered_customer_date")
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(t.rows))
	for _, row := range t.rows {
		orders = append(orders, models.Order{
			OrderID:            t.col(row, "order_id"),
			CustomerID:         t.col(row, "customer_id"),
			Status:             t.col(row, "order_status"),
			PurchaseTimestamp:  t.col(row, "order_purchase_timestamp"),
			DeliveredTimestamp: t.col(row, "order_delivered_customer_date"),
		})
	}
	return orders, nil
}

func (l *Loader) loadOrderItems(ctx context.Context) ([]models.OrderItem, error) {
	t, err := l.readTable(ctx, OrderItemsFile, "order_id", "order_item_id", "product_id", "price")
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(t.rows))
	for _, row := range t.rows {
		itemID, err := strconv.Atoi(t.col(row, "order_item_id"))
		if err != nil {
			l.logger.Warn("dropping row with malformed order_item_id",
				"table", t.name, "order_id", t.col(row, "order_id"), "value", t.col(row, "order_item_id"))
			continue
		}
		price, err := strconv.ParseFloat(t.col(row, "price"), 64)
		if err != nil || price < 0 {
			l.logger.Warn("dropping row with malformed price",
				"table", t.name, "order_id", t.col(row, "order_id"), "value", t.col(row, "price"))
			continue
		}
		items = append(items, models.OrderItem{
			OrderID:     t.col(row, "order_id"),
			OrderItemID: itemID,
			ProductID:   t.col(row, "product_id"),
			Price:       price,
		})
	}
	return items, nil
}

func (l *Loader) loadProducts(ctx context.Context) ([]models.Product, error) {
	t, err := l.readTable(ctx, ProductsFile, "product_id", "product_category_name")
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(t.rows))
	for _, row := range t.rows {
		products = append(products, models.Product{
			ProductID: t.col(row, "product_id"),
			Category:  t.col(row, "product_category_name"),
		})
	}
	return products, nil
}

func (l *Loader) loadCustomers(ctx context.Context) ([]models.Customer, error) {
	t, err := l.readTable(ctx, CustomersFile, "customer_id", "customer_state")
	if err != nil {
		return nil, err
	}

	customers := make([]models.Customer, 0, len(t.rows))
	for _, row := range t.rows {
		customers = append(customers, models.Customer{
			CustomerID: t.col(row, "customer_id"),
			State:      t.col(row, "customer_state"),
		})
	}
	return customers, nil
}

func (l *Loader) loadReviews(ctx context.Context) ([]models.Review, error) {
	t, err := l.readTable(ctx, ReviewsFile, "order_id", "review_score")
	if err != nil {
		return nil, err
	}

	reviews := make([]models.Review, 0, len(t.rows))
	for _, row := range t.rows {
		score, err := strconv.Atoi(t.col(row, "review_score"))
		if err != nil {
			l.logger.Warn("dropping row with malformed review_score",
				"table", t.name, "order_id", t.col(row, "order_id"), "value", t.col(row, "review_score"))
			continue
		}
		reviews = append(reviews, models.Review{
			OrderID: t.col(row, "order_id"),
			Score:   score,
		})
	}
	return reviews, nil
}
