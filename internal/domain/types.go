package domain

import (
	"strings"
	"time"
)

// SubOrderStatus enumerates the lifecycle states of a shipment-level sub-order.
type SubOrderStatus string

const (
	// StatusPending indicates the sub-order was placed and awaits vendor acceptance.
	StatusPending SubOrderStatus = "pending"
	// StatusProcessing indicates the vendor accepted the sub-order and is preparing it.
	StatusProcessing SubOrderStatus = "processing"
	// StatusShipped indicates the sub-order was handed to the carrier.
	StatusShipped SubOrderStatus = "shipped"
	// StatusDelivered indicates the sub-order reached the customer.
	StatusDelivered SubOrderStatus = "delivered"
	// StatusCancelled indicates the sub-order was cancelled.
	StatusCancelled SubOrderStatus = "cancelled"
)

var knownStatuses = map[SubOrderStatus]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseSubOrderStatus normalises raw input into a known status value.
func ParseSubOrderStatus(raw string) (SubOrderStatus, bool) {
	status := SubOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := knownStatuses[status]
	return status, ok
}

// Valid reports whether the status is one of the known lifecycle states.
func (s SubOrderStatus) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Terminal reports whether the status permits no further transitions.
func (s SubOrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// SubOrder is the shipment-level grouping of order items belonging to one shop
// within a larger customer order. Sub-orders are created by checkout and are
// only ever mutated through status transitions; they are never deleted.
type SubOrder struct {
	ID             string
	ShopID         string
	Status         SubOrderStatus
	RecipientName  string
	RecipientPhone string
	AddressLine    string
	Ward           string
	District       string
	Province       string
	ShippingFee    int64
	Note           string
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ShippingAddress joins the address parts into a single display string.
func (o SubOrder) ShippingAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{o.AddressLine, o.Ward, o.District, o.Province} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

// OrderItem is a single purchased line within a sub-order. Items are immutable
// once placed; price and discount are captured at checkout time.
type OrderItem struct {
	ID              string
	ProductID       string
	VariantID       string
	Quantity        int
	VariantPrice    int64
	ProductDiscount float64
}

// Product captures the catalogue record returned by detail resolution.
type Product struct {
	ID            string
	Name          string
	Description   string
	Discount      float64
	Stock         int
	Sold          int
	AverageRating float64
	Variants      []Variant
}

// Variant is a purchasable configuration of a product. A variant belongs to
// exactly one product; the product exclusively owns its variant list.
type Variant struct {
	ID       string
	Size     string
	Color    string
	Material string
	Price    int64
	Stock    int
	ImageURL string
}

// ResolvedProduct augments a product with the index of the variant selected
// for display, so downstream consumers can render price/stock/image without
// re-deriving the lookup. The index is -1 when the product has no variants.
type ResolvedProduct struct {
	Product
	ActiveVariantIndex int
}

// ActiveVariant returns the resolved variant, or false when none exists.
func (p ResolvedProduct) ActiveVariant() (Variant, bool) {
	if p.ActiveVariantIndex < 0 || p.ActiveVariantIndex >= len(p.Variants) {
		return Variant{}, false
	}
	return p.Variants[p.ActiveVariantIndex], true
}

// Page wraps an offset-paginated result set together with paging metadata.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalItems  int64
	TotalPages  int
}

// TotalPagesFor computes the page count for a total and page size.
func TotalPagesFor(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
