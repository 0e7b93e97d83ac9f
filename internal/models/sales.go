package models

import (
	"math"
	"strconv"
	"time"
)

// Raw entities, one struct per source table. Timestamps stay as raw strings
// until the pipeline stage that owns parsing them, so a malformed stamp is a
// per-row concern of that stage rather than a load failure.

type Order struct {
	OrderID            string
	CustomerID         string
	Status             string
	PurchaseTimestamp  string
	DeliveredTimestamp string // empty when the order has not reached the customer
}

type OrderItem struct {
	OrderID     string
	OrderItemID int
	ProductID   string
	Price       float64
}

type Product struct {
	ProductID string
	Category  string
}

type Customer struct {
	CustomerID string
	State      string
}

type Review struct {
	OrderID string
	Score   int
}

// RawTables is the immutable result of one load; treated as read-only for the
// rest of the session.
type RawTables struct {
	Orders     []Order
	OrderItems []OrderItem
	Products   []Product
	Customers  []Customer
	Reviews    []Review
}

// SalesRecord is one order item joined to its order. Year, Month, PurchasedAt
// are set by the temporal stage; DeliverySpeed and DeliveryTime by the delivery
// stage. Delivered guards DeliverySpeed: an undelivered order never contributes
// to delivery aggregates.
type SalesRecord struct {
	OrderID            string
	OrderItemID        int
	ProductID          string
	Price              float64
	Status             string
	PurchaseTimestamp  string
	DeliveredTimestamp string

	PurchasedAt   time.Time
	Year          int
	Month         int // 1-12
	Delivered     bool
	DeliverySpeed int    // whole days, valid only when Delivered
	DeliveryTime  string // bucket label, valid only when Delivered
}

// Metric is a float64 that serializes NaN as null, so "no data" aggregates
// reach the dashboard as null instead of breaking JSON encoding.
type Metric float64

func (m Metric) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(m)) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(m), 'f', -1, 64), nil
}

func (m Metric) IsNaN() bool {
	return math.IsNaN(float64(m))
}
