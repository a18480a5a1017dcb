package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/detoxsabeho/orders-backend/api/middleware"
	"github.com/detoxsabeho/orders-backend/api/responses"
	"github.com/detoxsabeho/orders-backend/api/validators"
	"github.com/detoxsabeho/orders-backend/internal/mailer"
	"github.com/detoxsabeho/orders-backend/internal/notify"
	"github.com/detoxsabeho/orders-backend/internal/orders"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// SubmitOrderRequest mirrors the landing-page checkout payload. Amounts are
// integer Colombian pesos; the client sends the totals it showed the buyer
// and they are stored as-is in the snapshot.
type SubmitOrderRequest struct {
	Product  SubmitProduct  `json:"product"`
	Customer SubmitCustomer `json:"customer"`
}

type SubmitProduct struct {
	ID       int    `json:"id" validate:"required,oneof=1 2"`
	Name     string `json:"name" validate:"required,max=100,safe_text"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=10"`
	Price    int64  `json:"price" validate:"min=0"`
	Shipping int64  `json:"shipping" validate:"min=0"`
	Total    int64  `json:"total" validate:"min=0"`
}

type SubmitCustomer struct {
	Name         string `json:"name" validate:"required,min=3,max=100,safe_text"`
	Phone        string `json:"phone" validate:"required,co_phone"`
	Email        string `json:"email" validate:"required,email,max=100"`
	Department   string `json:"department" validate:"required,max=100,safe_text"`
	City         string `json:"city" validate:"required,max=100,safe_text"`
	Address      string `json:"address" validate:"required,min=10,max=200,safe_text"`
	Observations string `json:"observations" validate:"max=500"`
}

// SubmitOrderResponse is the public acknowledgment; the full record stays
// behind the admin API.
type SubmitOrderResponse struct {
	OrderID     string    `json:"orderId"`
	OrderNumber int64     `json:"orderNumber"`
	Timestamp   time.Time `json:"timestamp"`
}

// SubmitOrder persists the order and answers immediately; the confirmation
// emails and the ledger backup run in the background so a slow mail provider
// never blocks or fails the checkout.
func SubmitOrder(store *orders.Store, dispatcher *notify.Dispatcher, mail mailer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order store unavailable"))
			return
		}

		var body SubmitOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := buildOrderInput(body, r)
		order, err := store.AddOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, SubmitOrderResponse{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Timestamp:   order.Timestamp,
		})

		if dispatcher != nil && mail != nil {
			dispatcher.Dispatch(
				notify.Task{Name: "customer-email", Run: func(ctx context.Context) error {
					return mail.SendCustomerConfirmation(ctx, order)
				}},
				notify.Task{Name: "admin-email", Run: func(ctx context.Context) error {
					return mail.SendAdminNotification(ctx, order)
				}},
				notify.Task{Name: "ledger-backup", Run: func(ctx context.Context) error {
					return sendLedgerBackup(ctx, store, mail, order.OrderNumber)
				}},
			)
		}
	}
}

func buildOrderInput(body SubmitOrderRequest, r *http.Request) orders.NewOrderInput {
	return orders.NewOrderInput{
		Product: orders.ProductSnapshot{
			ID:       body.Product.ID,
			Name:     validators.SanitizeString(body.Product.Name),
			Quantity: body.Product.Quantity,
			Price:    body.Product.Price,
			Shipping: body.Product.Shipping,
			Total:    body.Product.Total,
		},
		Customer: orders.CustomerSnapshot{
			Name:         validators.SanitizeString(body.Customer.Name),
			Phone:        validators.SanitizeString(body.Customer.Phone),
			Email:        strings.ToLower(strings.TrimSpace(body.Customer.Email)),
			Department:   validators.SanitizeString(body.Customer.Department),
			City:         validators.SanitizeString(body.Customer.City),
			Address:      validators.SanitizeString(body.Customer.Address),
			Observations: validators.SanitizeString(body.Customer.Observations),
		},
		Metadata: orders.RequestMetadata{
			IP:        middleware.ClientIP(r),
			UserAgent: r.UserAgent(),
		},
	}
}

// sendLedgerBackup mails the whole ledger as a JSON attachment after each
// order, matching the operator's expectation of an always-current off-site
// copy.
func sendLedgerBackup(ctx context.Context, store *orders.Store, mail mailer.Service, orderNumber int64) error {
	ledger, err := store.Read(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Backup de Pedidos - Pedido #%d", orderNumber)
	return mail.SendBackup(ctx, subject, "Backup automático del archivo de pedidos adjunto.", encoded)
}
