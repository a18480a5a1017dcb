package orders

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/detoxsabeho/orders-backend/pkg/enums"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// validProductIDs is the static two-SKU catalog. The landing page only ever
// sells these; anything else in a snapshot is a forged request.
var validProductIDs = map[int]bool{1: true, 2: true}

// Store is the sole owner of the ledger file. Every consumer (admin listing,
// statistics, CSV export, status changes) goes through it.
//
// Reads take a shared flock on the ledger file; AddOrder and UpdateStatus hold
// one exclusive flock across their whole read-modify-write cycle so that two
// concurrent creations can never observe the same lastOrderNumber. The lock is
// on the file itself, so separate processes (and the legacy deployment's
// ledger files) interoperate.
type Store struct {
	path string
	loc  *time.Location
	logg *logger.Logger
	now  func() time.Time
}

// NewStore builds a Store and lazily initializes the ledger file if absent.
func NewStore(path, timezone string, logg *logger.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		// Fall back to the Colombian offset the legacy files were written in.
		loc = time.FixedZone("-05", -5*60*60)
	}
	s := &Store{
		path: path,
		loc:  loc,
		logg: logg,
		now:  time.Now,
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create data directory")
		}
	}

	lock := flock.New(s.path)
	if err := lock.Lock(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "acquire ledger lock")
	}
	defer lock.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read ledger file")
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		return nil
	}
	return s.writeLocked(s.emptyLedger())
}

func (s *Store) emptyLedger() *Ledger {
	return &Ledger{
		SchemaVersion: schemaVersion,
		Orders:        []Order{},
		Metadata: LedgerMetadata{
			LastOrderNumber: 0,
			TotalOrders:     0,
			LastUpdated:     s.timestamp(),
		},
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().In(s.loc).Truncate(time.Second)
}

// Read returns the full current ledger state under a shared lock.
func (s *Store) Read(ctx context.Context) (*Ledger, error) {
	lock := flock.New(s.path)
	if err := lock.RLock(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "acquire ledger read lock")
	}
	raw, err := os.ReadFile(s.path)
	unlockErr := lock.Unlock()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read ledger file")
	}
	if unlockErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, unlockErr, "release ledger read lock")
	}
	return s.decode(raw)
}

func (s *Store) readLocked() (*Ledger, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read ledger file")
	}
	return s.decode(raw)
}

func (s *Store) decode(raw []byte) (*Ledger, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return s.emptyLedger(), nil
	}
	var ledger Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeCorruptLedger, err, "decode ledger file")
	}
	if ledger.Orders == nil {
		ledger.Orders = []Order{}
	}
	return &ledger, nil
}

// writeLocked atomically replaces the file content. The caller must hold the
// exclusive flock covering its whole read-modify-write cycle.
func (s *Store) writeLocked(ledger *Ledger) error {
	ledger.SchemaVersion = schemaVersion

	encoded, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encode ledger")
	}

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "open ledger file")
	}
	if _, err := file.Write(encoded); err != nil {
		file.Close()
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write ledger file")
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "flush ledger file")
	}
	if err := file.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "close ledger file")
	}
	return nil
}

// AddOrder appends a new order, assigning its id and the next order number
// inside one exclusive-lock critical section.
func (s *Store) AddOrder(ctx context.Context, input NewOrderInput) (*Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	lock := flock.New(s.path)
	if err := lock.Lock(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "acquire ledger lock")
	}
	defer lock.Unlock()

	ledger, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	orderID, err := generateOrderID(now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
	}

	order := Order{
		ID:          orderID,
		OrderNumber: ledger.Metadata.LastOrderNumber + 1,
		Timestamp:   now,
		Status:      enums.OrderStatusPending,
		Product:     input.Product,
		Customer:    input.Customer,
		Metadata:    input.Metadata,
	}

	ledger.Orders = append(ledger.Orders, order)
	ledger.Metadata.LastOrderNumber = order.OrderNumber
	ledger.Metadata.TotalOrders = len(ledger.Orders)
	ledger.Metadata.LastUpdated = now

	if err := s.writeLocked(ledger); err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"customer":     order.Customer.Name,
		})
		s.logg.Info(logCtx, "order created")
	}

	return &order, nil
}

// GetOrders returns the filtered order set, newest first. Storage and decode
// failures surface to the caller instead of masquerading as an empty list.
func (s *Store) GetOrders(ctx context.Context, filters Filters) ([]Order, error) {
	ledger, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(ledger.Orders, filters), nil
}

// GetOrderByID scans the current orders for the given id.
func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*Order, error) {
	ledger, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ledger.Orders {
		if ledger.Orders[i].ID == orderID {
			order := ledger.Orders[i]
			return &order, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
}

// UpdateStatus moves an order to the given status. Any status may follow any
// other; only membership in the closed set is enforced. The read and write
// happen under one exclusive lock acquisition so a concurrent update is never
// lost.
func (s *Store) UpdateStatus(ctx context.Context, orderID, newStatus string) (*Order, error) {
	status, err := parseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	lock := flock.New(s.path)
	if err := lock.Lock(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "acquire ledger lock")
	}
	defer lock.Unlock()

	ledger, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	var updated *Order
	for i := range ledger.Orders {
		if ledger.Orders[i].ID == orderID {
			previous := ledger.Orders[i].Status
			ledger.Orders[i].Status = status
			ledger.Orders[i].StatusUpdatedAt = &now
			updated = &ledger.Orders[i]

			if s.logg != nil {
				logCtx := s.logg.WithFields(ctx, map[string]any{
					"order_id":    orderID,
					"from_status": string(previous),
					"to_status":   string(status),
				})
				s.logg.Info(logCtx, "order status updated")
			}
			break
		}
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
	}

	ledger.Metadata.LastUpdated = now

	if err := s.writeLocked(ledger); err != nil {
		return nil, err
	}

	order := *updated
	return &order, nil
}

// Statistics aggregates the full unfiltered order set.
func (s *Store) Statistics(ctx context.Context) (*Stats, error) {
	ledger, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(ledger.Orders)
	return &stats, nil
}

// ExportCSV renders the filtered, newest-first order set as a CSV document
// with a UTF-8 byte-order mark for spreadsheet tools.
func (s *Store) ExportCSV(ctx context.Context, filters Filters) ([]byte, error) {
	filtered, err := s.GetOrders(ctx, filters)
	if err != nil {
		return nil, err
	}
	return renderCSV(filtered)
}

// Ping verifies the ledger file can be read and decoded.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.Read(ctx)
	return err
}

func validateInput(input NewOrderInput) error {
	missing := []string{}
	if !validProductIDs[input.Product.ID] {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product id %d", input.Product.ID))
	}
	if input.Product.Name == "" {
		missing = append(missing, "product.name")
	}
	if input.Product.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product quantity must be at least 1")
	}
	if input.Product.Price < 0 || input.Product.Shipping < 0 || input.Product.Total < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product amounts cannot be negative")
	}

	customerFields := map[string]string{
		"customer.name":       input.Customer.Name,
		"customer.phone":      input.Customer.Phone,
		"customer.email":      input.Customer.Email,
		"customer.department": input.Customer.Department,
		"customer.city":       input.Customer.City,
		"customer.address":    input.Customer.Address,
	}
	for field, value := range customerFields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "required fields missing").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}

func parseStatus(value string) (enums.OrderStatus, error) {
	status, err := enums.ParseOrderStatus(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "invalid order status").
			WithDetails(map[string]any{"allowed": enums.OrderStatuses()})
	}
	return status, nil
}

// generateOrderID builds ids in the legacy ORD-{unix}-{4 hex} shape so new
// records sort and display alongside existing ledger entries.
func generateOrderID(now time.Time) (string, error) {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%s", now.Unix(), strings.ToUpper(hex.EncodeToString(suffix))), nil
}
