package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/detoxsabeho/orders-backend/api/responses"
	"github.com/detoxsabeho/orders-backend/api/validators"
	"github.com/detoxsabeho/orders-backend/internal/orders"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// OrderListResponse wraps the filtered set with its count so the dashboard
// can render a total without a second request.
type OrderListResponse struct {
	Orders []orders.Order `json:"orders"`
	Total  int            `json:"total"`
}

// timeNow is swapped in tests to pin the export filename.
var timeNow = time.Now

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func filtersFromQuery(r *http.Request) orders.Filters {
	query := r.URL.Query()
	return orders.Filters{
		Status:    query.Get("status"),
		ProductID: query.Get("productId"),
		Search:    query.Get("search"),
	}
}

// AdminListOrders returns the filtered orders, newest first.
func AdminListOrders(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := store.GetOrders(r.Context(), filtersFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, OrderListResponse{Orders: listing, Total: len(listing)})
	}
}

// AdminOrderStats aggregates the full ledger regardless of query filters.
func AdminOrderStats(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Statistics(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminUpdateOrderStatus moves one order to a new status and returns the
// updated record.
func AdminUpdateOrderStatus(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		var body UpdateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := store.UpdateStatus(r.Context(), orderID, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminExportOrders streams the filtered set as a CSV attachment.
func AdminExportOrders(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		document, err := store.ExportCSV(r.Context(), filtersFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("pedidos_%s.csv", timeNow().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(document); err != nil && logg != nil {
			logg.Error(r.Context(), "write csv export", err)
		}
	}
}
