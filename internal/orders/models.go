package orders

import (
	"time"

	"github.com/detoxsabeho/orders-backend/pkg/enums"
)

// schemaVersion is written to fresh ledgers. Legacy files that predate the
// field decode with version zero and are upgraded on the next write.
const schemaVersion = 1

// ProductSnapshot is the product state captured at order time. It is never
// recalculated against a live catalog.
type ProductSnapshot struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Shipping int64  `json:"shipping"`
	Total    int64  `json:"total"`
}

// CustomerSnapshot is the contact and shipping data captured at order time.
// There is no edit endpoint; once written it is immutable.
type CustomerSnapshot struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	City         string `json:"city"`
	Address      string `json:"address"`
	Observations string `json:"observations"`
}

// RequestMetadata captures submission context for fraud and audit review.
type RequestMetadata struct {
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
}

// Order is one purchase record. Only Status and StatusUpdatedAt mutate after
// creation; every other field is write-once.
type Order struct {
	ID              string            `json:"id"`
	OrderNumber     int64             `json:"orderNumber"`
	Timestamp       time.Time         `json:"timestamp"`
	Status          enums.OrderStatus `json:"status"`
	StatusUpdatedAt *time.Time        `json:"statusUpdatedAt,omitempty"`
	Product         ProductSnapshot   `json:"product"`
	Customer        CustomerSnapshot  `json:"customer"`
	Metadata        RequestMetadata   `json:"metadata"`
}

// LedgerMetadata holds the running counters kept alongside the orders.
type LedgerMetadata struct {
	LastOrderNumber int64     `json:"lastOrderNumber"`
	TotalOrders     int       `json:"totalOrders"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Ledger is the whole-file aggregate persisted to disk.
type Ledger struct {
	SchemaVersion int            `json:"schemaVersion,omitempty"`
	Orders        []Order        `json:"orders"`
	Metadata      LedgerMetadata `json:"metadata"`
}

// NewOrderInput carries the validated snapshots for AddOrder.
type NewOrderInput struct {
	Product  ProductSnapshot
	Customer CustomerSnapshot
	Metadata RequestMetadata
}
