// Package services implements the vendor order fulfillment workflow: filtered
// sub-order queries, status transitions (single and bulk), product+variant
// detail resolution, and CSV export of a filtered order set.
package services

import (
	"context"
	"io"
	"time"

	"github.com/marketbloc/vendor-api/internal/domain"
)

// OrderQuery captures the combined filters for sub-order listings and exports.
// StartDate/EndDate are calendar dates, both inclusive.
type OrderQuery struct {
	Status    string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// OrderQueryService executes filtered, paginated sub-order lookups for a shop.
type OrderQueryService interface {
	Query(ctx context.Context, shopID string, query OrderQuery) (domain.Page[domain.SubOrder], error)
}

// StatusTransitionEngine applies status changes to sub-orders. Bulk
// transitions are a single atomic storage operation, never a loop of
// per-order updates.
type StatusTransitionEngine interface {
	UpdateStatus(ctx context.Context, shopID, subOrderID string, next domain.SubOrderStatus) error
	BulkTransition(ctx context.Context, shopID string, subOrderIDs []string, next domain.SubOrderStatus) (int, error)
}

// ItemRef pairs a product with the variant the caller wants resolved.
type ItemRef struct {
	ProductID string
	VariantID string
}

// VariantResolver reconstructs full product detail records and selects, per
// product, the variant matching the caller's desired variant id.
type VariantResolver interface {
	Resolve(ctx context.Context, refs []ItemRef) ([]domain.ResolvedProduct, error)
}

// ExportService serialises the full filtered sub-order set as CSV.
type ExportService interface {
	Export(ctx context.Context, shopID string, query OrderQuery, w io.Writer) error
}

// ProductUpdateService applies vendor edits to a product or one of its variants.
type ProductUpdateService interface {
	UpdateProduct(ctx context.Context, shopID, productID string, update ProductFields) error
	UpdateVariant(ctx context.Context, shopID, productID, variantID string, update VariantFields) error
}

// ProductFields lists the editable product-scope fields; nil leaves a field unchanged.
type ProductFields struct {
	Name        *string
	Description *string
	Discount    *float64
	Stock       *int
}

// VariantFields lists the editable variant-scope fields; nil leaves a field unchanged.
type VariantFields struct {
	Size     *string
	Color    *string
	Material *string
	Price    *int64
	Stock    *int
}

// StatusChangeEvent describes a completed status transition for downstream consumers.
type StatusChangeEvent struct {
	EventID     string                `json:"eventId"`
	ShopID      string                `json:"shopId"`
	SubOrderIDs []string              `json:"subOrderIds"`
	Status      domain.SubOrderStatus `json:"status"`
	Actor       string                `json:"actor,omitempty"`
	OccurredAt  time.Time             `json:"occurredAt"`
}

// StatusEventPublisher publishes order status-change events.
type StatusEventPublisher interface {
	PublishStatusChange(ctx context.Context, event StatusChangeEvent) (string, error)
}
