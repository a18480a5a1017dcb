package orders

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
)

// utf8BOM makes spreadsheet tools pick up UTF-8 so accented customer names
// render correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"order_id",
	"order_number",
	"timestamp",
	"status",
	"product_name",
	"quantity",
	"unit_price",
	"shipping",
	"total",
	"customer_name",
	"phone",
	"email",
	"department",
	"city",
	"address",
	"observations",
	"ip",
	"user_agent",
}

// renderCSV writes the orders as a UTF-8 CSV document, one row per order in
// the order given (callers pass the newest-first filtered set).
func renderCSV(all []Order) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv header")
	}
	for _, order := range all {
		row := []string{
			order.ID,
			strconv.FormatInt(order.OrderNumber, 10),
			order.Timestamp.Format(time.RFC3339),
			order.Status.String(),
			order.Product.Name,
			strconv.Itoa(order.Product.Quantity),
			strconv.FormatInt(order.Product.Price, 10),
			strconv.FormatInt(order.Product.Shipping, 10),
			strconv.FormatInt(order.Product.Total, 10),
			order.Customer.Name,
			order.Customer.Phone,
			order.Customer.Email,
			order.Customer.Department,
			order.Customer.City,
			order.Customer.Address,
			order.Customer.Observations,
			order.Metadata.IP,
			order.Metadata.UserAgent,
		}
		if err := w.Write(row); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("writing csv row for %s", order.ID))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flushing csv")
	}
	return buf.Bytes(), nil
}
