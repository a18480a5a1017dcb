package orders

import (
	"sort"
	"strconv"
	"strings"

	"github.com/detoxsabeho/orders-backend/pkg/enums"
)

// Filters narrows a listing. Empty fields match everything; populated fields
// are combined conjunctively.
type Filters struct {
	Status    string
	ProductID string
	Search    string
}

// ApplyFilters returns the orders matching every populated filter, sorted
// newest first. The input slice is never mutated.
func ApplyFilters(all []Order, f Filters) []Order {
	status := strings.TrimSpace(f.Status)
	productID := strings.TrimSpace(f.ProductID)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	matched := make([]Order, 0, len(all))
	for _, order := range all {
		if status != "" && order.Status != enums.OrderStatus(status) {
			continue
		}
		if productID != "" && strconv.Itoa(order.Product.ID) != productID {
			continue
		}
		if search != "" && !matchesSearch(order, search) {
			continue
		}
		matched = append(matched, order)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return matched
}

// matchesSearch does a case-insensitive substring scan over the fields an
// operator is likely to paste into the dashboard search box.
func matchesSearch(order Order, needle string) bool {
	haystacks := []string{
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Phone,
		order.ID,
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
