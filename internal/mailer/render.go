package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/detoxsabeho/orders-backend/internal/orders"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// templateData is the flattened view handed to both email templates.
type templateData struct {
	BrandName     string
	OrderID       string
	OrderNumber   int64
	Date          string
	GeneratedAt   string
	CustomerName  string
	CustomerEmail string
	Phone         string
	Address       string
	City          string
	Department    string
	Observations  string
	ProductName   string
	QuantityLabel string
	Price         string
	Shipping      string
	FreeShipping  bool
	Total         string
	ClientIP      string
	UserAgent     string
	AdminEmail    string
	DashboardURL  string
	Year          int
}

func (s *service) buildTemplateData(order *orders.Order) templateData {
	now := time.Now().In(order.Timestamp.Location())
	return templateData{
		BrandName:     s.emailCfg.FromName,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Date:          order.Timestamp.Format("02/01/2006 15:04:05"),
		GeneratedAt:   now.Format("02/01/2006 15:04:05"),
		CustomerName:  order.Customer.Name,
		CustomerEmail: order.Customer.Email,
		Phone:         order.Customer.Phone,
		Address:       order.Customer.Address,
		City:          order.Customer.City,
		Department:    order.Customer.Department,
		Observations:  order.Customer.Observations,
		ProductName:   order.Product.Name,
		QuantityLabel: quantityLabel(order.Product.Quantity),
		Price:         formatPrice(order.Product.Price),
		Shipping:      formatPrice(order.Product.Shipping),
		FreeShipping:  order.Product.Shipping == 0,
		Total:         formatPrice(order.Product.Total),
		ClientIP:      order.Metadata.IP,
		UserAgent:     truncate(order.Metadata.UserAgent, 80),
		AdminEmail:    s.adminEmail,
		DashboardURL:  s.emailCfg.DashboardURL,
		Year:          now.Year(),
	}
}

func renderTemplate(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func quantityLabel(quantity int) string {
	if quantity == 1 {
		return "1 unidad"
	}
	return fmt.Sprintf("%d unidades", quantity)
}

// formatPrice renders Colombian pesos with dot thousand separators, e.g.
// 110000 becomes $110.000.
func formatPrice(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	formatted := "$" + strings.Join(groups, ".")
	if negative {
		return "-" + formatted
	}
	return formatted
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
