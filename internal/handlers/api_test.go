package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"ecom-dashboard/internal/models"
	"ecom-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testAnalytics() *services.Analytics {
	analytics := services.NewAnalytics("unused", "delivered", testLogger())
	analytics.SetTables(&models.RawTables{
		Orders: []models.Order{
			{OrderID: "o1", CustomerID: "c1", Status: "delivered", PurchaseTimestamp: "2023-01-01 10:00:00", DeliveredTimestamp: "2023-01-04 15:00:00"},
			{OrderID: "o2", CustomerID: "c2", Status: "delivered", PurchaseTimestamp: "2022-06-01 09:00:00", DeliveredTimestamp: "2022-06-05 09:00:00"},
		},
		OrderItems: []models.OrderItem{
			{OrderID: "o1", OrderItemID: 1, ProductID: "p1", Price: 100},
			{OrderID: "o2", OrderItemID: 1, ProductID: "p2", Price: 50},
		},
		Products: []models.Product{
			{ProductID: "p1", Category: "electronics"},
			{ProductID: "p2", Category: "toys"},
		},
		Customers: []models.Customer{
			{CustomerID: "c1", State: "SP"},
			{CustomerID: "c2", State: "RJ"},
		},
		Reviews: []models.Review{
			{OrderID: "o1", Score: 5},
			{OrderID: "o2", Score: 4},
		},
	})
	return analytics
}

func newTestAPIHandlers() *APIHandlers {
	return NewAPIHandlers(testAnalytics(), testLogger())
}

type successEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Success bool `json:"success"`
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) successEnvelope {
	t.Helper()
	var envelope successEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !envelope.Success {
		t.Errorf("expected success envelope, got %s", rec.Body.String())
	}
	return envelope
}

func TestHandleRevenueSummary(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/revenue-summary?year=2023", nil)
	rec := httptest.NewRecorder()
	handlers.HandleRevenueSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON content type, got %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=300" {
		t.Errorf("expected cache header, got %q", rec.Header().Get("Cache-Control"))
	}

	envelope := decodeSuccess(t, rec)
	var summary struct {
		CurrentRevenue  float64 `json:"current_revenue"`
		PreviousRevenue float64 `json:"previous_revenue"`
	}
	if err := json.Unmarshal(envelope.Data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.CurrentRevenue != 100 || summary.PreviousRevenue != 50 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestHandleRevenueSummary_MissingYear(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/revenue-summary", nil)
	rec := httptest.NewRecorder()
	handlers.HandleRevenueSummary(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Success {
		t.Error("error response must not be marked success")
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %q", envelope.Error.Code)
	}
}

func TestParsePeriod_Validation(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"valid year", "year=2023", false},
		{"valid year and month", "year=2023&month=6", false},
		{"missing year", "", true},
		{"non-numeric year", "year=twenty", true},
		{"negative year", "year=-5", true},
		{"month zero", "year=2023&month=0", true},
		{"month too large", "year=2023&month=13", true},
		{"non-numeric month", "year=2023&month=june", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/monthly-revenue?"+tt.query, nil)
			_, _, err := parsePeriod(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("parsePeriod(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
		})
	}
}

func TestHandleMonthlyRevenue(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/monthly-revenue?year=2023", nil)
	rec := httptest.NewRecorder()
	handlers.HandleMonthlyRevenue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	envelope := decodeSuccess(t, rec)
	var rows []models.MonthlyRevenue
	if err := json.Unmarshal(envelope.Data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Month != 1 || rows[0].Revenue != 100 {
		t.Errorf("unexpected monthly revenue: %+v", rows)
	}
}

func TestHandleCategorySales(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/category-sales?year=2023", nil)
	rec := httptest.NewRecorder()
	handlers.HandleCategorySales(rec, req)

	envelope := decodeSuccess(t, rec)
	var rows []models.CategorySales
	if err := json.Unmarshal(envelope.Data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Category != "electronics" {
		t.Errorf("expected only electronics for 2023, got %+v", rows)
	}
}

func TestHandleStatusDistribution_OptionalYear(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/status-distribution", nil)
	rec := httptest.NewRecorder()
	handlers.HandleStatusDistribution(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("year should be optional, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status-distribution?year=abc", nil)
	rec = httptest.NewRecorder()
	handlers.HandleStatusDistribution(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed year should be rejected, got %d", rec.Code)
	}
}

func TestHandleYears(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/years", nil)
	rec := httptest.NewRecorder()
	handlers.HandleYears(rec, req)

	envelope := decodeSuccess(t, rec)
	var years []int
	if err := json.Unmarshal(envelope.Data, &years); err != nil {
		t.Fatal(err)
	}
	if len(years) != 2 || years[0] != 2022 || years[1] != 2023 {
		t.Errorf("expected [2022 2023], got %v", years)
	}
}

func TestHandleHealth(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handlers.HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	envelope := decodeSuccess(t, rec)
	var body map[string]string
	if err := json.Unmarshal(envelope.Data, &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %q", body["status"])
	}
}

func TestHandleStats(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	handlers.HandleStats(rec, req)

	envelope := decodeSuccess(t, rec)
	var stats map[string]any
	if err := json.Unmarshal(envelope.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats["loaded"] != true {
		t.Errorf("stats should report loaded data, got %v", stats["loaded"])
	}
}

func TestHandleRevenueSummary_NaNSerializedAsNull(t *testing.T) {
	// A year with no prior-year data produces NaN AOV fields, which must
	// serialize as JSON null rather than breaking encoding.
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/revenue-summary?year=2022", nil)
	rec := httptest.NewRecorder()
	handlers.HandleRevenueSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeSuccess(t, rec)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["previous_aov"]) != "null" {
		t.Errorf("previous_aov should be null for an empty prior year, got %s", raw["previous_aov"])
	}
}
