// Package repositories declares the persistence interfaces consumed by the
// service layer, keeping storage concerns behind narrow contracts.
package repositories

import (
	"context"
	"time"

	"github.com/marketbloc/vendor-api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// SubOrderListFilter captures the combined filters applied to sub-order listings.
// A zero Limit disables pagination and returns the full filtered set.
type SubOrderListFilter struct {
	ShopID      string
	Status      domain.SubOrderStatus
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Offset      int
	Limit       int
}

// SubOrderRepository persists sub-orders and provides the vendor-facing queries.
type SubOrderRepository interface {
	// List returns matching sub-orders newest first plus the total match count.
	List(ctx context.Context, filter SubOrderListFilter) ([]domain.SubOrder, int64, error)

	// FindByID loads a single sub-order scoped to a shop.
	FindByID(ctx context.Context, shopID, subOrderID string) (domain.SubOrder, error)

	// UpdateStatus transitions a single sub-order to the given status.
	UpdateStatus(ctx context.Context, shopID, subOrderID string, status domain.SubOrderStatus, at time.Time) error

	// BulkUpdateStatus transitions every listed sub-order in one atomic write
	// and reports how many documents were actually updated.
	BulkUpdateStatus(ctx context.Context, shopID string, subOrderIDs []string, status domain.SubOrderStatus, at time.Time) (int, error)
}

// ProductUpdate lists the mutable product-scope fields. Nil pointers leave the
// stored value untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Discount    *float64
	Stock       *int
}

// VariantUpdate lists the mutable variant-scope fields.
type VariantUpdate struct {
	Size     *string
	Color    *string
	Material *string
	Price    *int64
	Stock    *int
}

// ProductRepository loads and mutates catalogue products and their variants.
type ProductRepository interface {
	// FindByIDs loads the products for the given ids, preserving request order.
	// Unknown ids are skipped rather than failing the whole lookup.
	FindByIDs(ctx context.Context, productIDs []string) ([]domain.Product, error)

	// UpdateProduct merges the provided product-scope fields.
	UpdateProduct(ctx context.Context, shopID, productID string, update ProductUpdate) error

	// UpdateVariant merges the provided variant-scope fields.
	UpdateVariant(ctx context.Context, shopID, productID, variantID string, update VariantUpdate) error
}
