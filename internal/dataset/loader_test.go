package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"ecom-dashboard/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var validFiles = map[string]string{
	OrdersFile: `order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date
o1,c1,delivered,2023-01-01 10:00:00,2023-01-04 15:00:00
o2,c2,shipped,2023-02-01 09:30:00,
`,
	OrderItemsFile: `order_id,order_item_id,product_id,price
o1,1,p1,100.50
o1,2,p2,20.00
o2,1,p1,35.00
`,
	ProductsFile: `product_id,product_category_name
p1,electronics
p2,toys
`,
	CustomersFile: `customer_id,customer_state
c1,SP
c2,RJ
`,
	ReviewsFile: `order_id,review_score
o1,5
o2,4
`,
}

func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func cloneFiles(overrides map[string]string) map[string]string {
	files := make(map[string]string, len(validFiles))
	for name, content := range validFiles {
		files[name] = content
	}
	for name, content := range overrides {
		files[name] = content
	}
	return files
}

func TestLoader_Load_ValidData(t *testing.T) {
	dir := writeDataDir(t, validFiles)
	loader := NewLoader(dir, testLogger())

	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() with valid data should not error, got: %v", err)
	}

	if len(tables.Orders) != 2 {
		t.Errorf("expected 2 orders, got %d", len(tables.Orders))
	}
	if len(tables.OrderItems) != 3 {
		t.Errorf("expected 3 order items, got %d", len(tables.OrderItems))
	}
	if len(tables.Products) != 2 {
		t.Errorf("expected 2 products, got %d", len(tables.Products))
	}
	if len(tables.Customers) != 2 {
		t.Errorf("expected 2 customers, got %d", len(tables.Customers))
	}
	if len(tables.Reviews) != 2 {
		t.Errorf("expected 2 reviews, got %d", len(tables.Reviews))
	}

	if tables.Orders[1].DeliveredTimestamp != "" {
		t.Errorf("undelivered order should have empty delivery timestamp, got %q", tables.Orders[1].DeliveredTimestamp)
	}
	if tables.OrderItems[0].Price != 100.50 {
		t.Errorf("expected price 100.50, got %f", tables.OrderItems[0].Price)
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	files := cloneFiles(nil)
	delete(files, ReviewsFile)
	dir := writeDataDir(t, files)

	loader := NewLoader(dir, testLogger())
	_, err := loader.Load(context.Background())
	if err == nil {
		t.Fatal("Load() should fail when a dataset file is missing")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.CodeDataSource {
		t.Errorf("expected code %s, got %s", errors.CodeDataSource, appErr.Code)
	}
}

func TestLoader_Load_MissingColumn(t *testing.T) {
	files := cloneFiles(map[string]string{
		OrderItemsFile: "order_id,order_item_id,price\no1,1,100.50\n",
	})
	dir := writeDataDir(t, files)

	loader := NewLoader(dir, testLogger())
	_, err := loader.Load(context.Background())
	if err == nil {
		t.Fatal("Load() should fail when a required column is missing")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.CodeSchema {
		t.Errorf("expected code %s, got %s", errors.CodeSchema, appErr.Code)
	}
}

func TestLoader_Load_ReorderedAndExtraColumns(t *testing.T) {
	files := cloneFiles(map[string]string{
		CustomersFile: "customer_zip,customer_state,customer_id\n01000,SP,c1\n20000,RJ,c2\n",
	})
	dir := writeDataDir(t, files)

	loader := NewLoader(dir, testLogger())
	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() should tolerate reordered and extra columns, got: %v", err)
	}

	if tables.Customers[0].CustomerID != "c1" || tables.Customers[0].State != "SP" {
		t.Errorf("columns resolved by name, got %+v", tables.Customers[0])
	}
}

func TestLoader_Load_BOMHeader(t *testing.T) {
	files := cloneFiles(map[string]string{
		ReviewsFile: "\xEF\xBB\xBForder_id,review_score\no1,5\n",
	})
	dir := writeDataDir(t, files)

	loader := NewLoader(dir, testLogger())
	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() should strip a UTF-8 BOM, got: %v", err)
	}
	if len(tables.Reviews) != 1 || tables.Reviews[0].OrderID != "o1" {
		t.Errorf("expected one review for o1, got %+v", tables.Reviews)
	}
}

func TestLoader_Load_MalformedRowsDropped(t *testing.T) {
	files := cloneFiles(map[string]string{
		OrderItemsFile: `order_id,order_item_id,product_id,price
o1,1,p1,100.50
o1,two,p2,20.00
o2,1,p1,not-a-price
`,
		ReviewsFile: `order_id,review_score
o1,5
o2,great
`,
	})
	dir := writeDataDir(t, files)

	loader := NewLoader(dir, testLogger())
	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("malformed rows should be dropped, not fatal, got: %v", err)
	}

	if len(tables.OrderItems) != 1 {
		t.Errorf("expected 1 surviving order item, got %d", len(tables.OrderItems))
	}
	if len(tables.Reviews) != 1 {
		t.Errorf("expected 1 surviving review, got %d", len(tables.Reviews))
	}
}

func TestLoader_Load_NegativePriceDropped(t *testing.T) {
	files := cloneFiles(map[string]string{
		OrderItemsFile: "order_id,order_item_id,product_id,price\no1,1,p1,-5.00\no1,2,p2,20.00\n",
	})
	dir := writeDataDir(t, files)

	loader := NewLoader(dir, testLogger())
	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tables.OrderItems) != 1 || tables.OrderItems[0].Price != 20.00 {
		t.Errorf("negative price row should be dropped, got %+v", tables.OrderItems)
	}
}
