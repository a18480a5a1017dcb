package orders

import (
	"github.com/shopspring/decimal"

	"github.com/detoxsabeho/orders-backend/pkg/enums"
)

// Stats is the dashboard summary computed over the full ledger.
type Stats struct {
	Total             int   `json:"total"`
	Pending           int   `json:"pending"`
	Processing        int   `json:"processing"`
	Shipped           int   `json:"shipped"`
	Delivered         int   `json:"delivered"`
	Cancelled         int   `json:"cancelled"`
	TotalRevenue      int64 `json:"totalRevenue"`
	AverageOrderValue int64 `json:"averageOrderValue"`
}

// ComputeStats aggregates counts and revenue. Cancelled orders count toward
// the total but contribute nothing to revenue; the average divides revenue by
// the full order count.
func ComputeStats(all []Order) Stats {
	stats := Stats{Total: len(all)}

	for _, order := range all {
		switch order.Status {
		case enums.OrderStatusPending:
			stats.Pending++
		case enums.OrderStatusProcessing:
			stats.Processing++
		case enums.OrderStatusShipped:
			stats.Shipped++
		case enums.OrderStatusDelivered:
			stats.Delivered++
		case enums.OrderStatusCancelled:
			stats.Cancelled++
		}
		if order.Status == enums.OrderStatusCancelled {
			continue
		}
		stats.TotalRevenue += order.Product.Total
	}

	if stats.Total > 0 {
		avg := decimal.NewFromInt(stats.TotalRevenue).
			Div(decimal.NewFromInt(int64(stats.Total))).
			Round(0)
		stats.AverageOrderValue = avg.IntPart()
	}
	return stats
}
