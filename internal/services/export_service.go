package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/repositories"
)

// ExportHeader is the CSV header row written by Export, in column order.
var ExportHeader = []string{
	"Sub Order ID",
	"Status",
	"Created At",
	"Recipient",
	"Phone",
	"Address",
	"Items",
	"Merchandise Total",
	"Shipping Fee",
	"Grand Total",
	"Note",
}

// ExportFilename returns the download filename for an export generated at the
// given time, e.g. orders_2024-01-31.csv.
func ExportFilename(at time.Time) string {
	return "orders_" + at.UTC().Format("2006-01-02") + ".csv"
}

// ExportDeps bundles collaborators for the export service.
type ExportDeps struct {
	Orders repositories.SubOrderRepository
}

type exportService struct {
	orders repositories.SubOrderRepository
}

// NewExportService constructs the CSV export pipeline.
func NewExportService(deps ExportDeps) (ExportService, error) {
	if deps.Orders == nil {
		return nil, errors.New("export service: sub-order repository is required")
	}
	return &exportService{orders: deps.Orders}, nil
}

// Export writes the full filtered sub-order set as CSV. Export ignores
// pagination: the same filters that drive the listing select the rows, but
// every match is written regardless of the current page.
func (s *exportService) Export(ctx context.Context, shopID string, query OrderQuery, w io.Writer) error {
	filter, _, _, err := normalizeOrderQuery(shopID, query)
	if err != nil {
		return err
	}

	orders, _, err := s.orders.List(ctx, filter)
	if err != nil {
		return mapRepositoryError("export sub-orders", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("export sub-orders: %w", err)
	}
	for _, order := range orders {
		if err := cw.Write(exportRow(order)); err != nil {
			return fmt.Errorf("export sub-orders: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export sub-orders: %w", err)
	}
	return nil
}

func exportRow(order domain.SubOrder) []string {
	return []string{
		order.ID,
		string(order.Status),
		order.CreatedAt.UTC().Format(time.RFC3339),
		order.RecipientName,
		order.RecipientPhone,
		order.ShippingAddress(),
		strconv.Itoa(itemCount(order)),
		strconv.FormatInt(order.MerchandiseTotal(), 10),
		strconv.FormatInt(order.ShippingFee, 10),
		strconv.FormatInt(order.GrandTotal(), 10),
		order.Note,
	}
}

func itemCount(order domain.SubOrder) int {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	return count
}
