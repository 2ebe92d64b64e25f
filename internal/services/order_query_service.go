package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/repositories"
)

const (
	// DefaultPageSize is applied when the caller omits a limit.
	DefaultPageSize = 10
	// MaxPageSize caps the page size to prevent unbounded reads.
	MaxPageSize = 100

	// StatusFilterAll disables status filtering when passed as OrderQuery.Status.
	StatusFilterAll = "all"
)

// OrderQueryDeps bundles collaborators for the order query service.
type OrderQueryDeps struct {
	Orders repositories.SubOrderRepository
}

type orderQueryService struct {
	orders repositories.SubOrderRepository
}

// NewOrderQueryService constructs the read side of the fulfillment workflow.
func NewOrderQueryService(deps OrderQueryDeps) (OrderQueryService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order query service: sub-order repository is required")
	}
	return &orderQueryService{orders: deps.Orders}, nil
}

// Query lists sub-orders matching the combined filters, newest first. The
// requested page is clamped to [1, totalPages] when the filtered set is
// non-empty, so callers never receive an empty page past the end.
func (s *orderQueryService) Query(ctx context.Context, shopID string, query OrderQuery) (domain.Page[domain.SubOrder], error) {
	filter, page, limit, err := normalizeOrderQuery(shopID, query)
	if err != nil {
		return domain.Page[domain.SubOrder]{}, err
	}

	filter.Offset = (page - 1) * limit
	filter.Limit = limit

	items, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.SubOrder]{}, mapRepositoryError("query sub-orders", err)
	}

	totalPages := domain.TotalPagesFor(total, limit)
	if total > 0 && page > totalPages {
		page = totalPages
		filter.Offset = (page - 1) * limit
		items, total, err = s.orders.List(ctx, filter)
		if err != nil {
			return domain.Page[domain.SubOrder]{}, mapRepositoryError("query sub-orders", err)
		}
		totalPages = domain.TotalPagesFor(total, limit)
	}

	return domain.Page[domain.SubOrder]{
		Items:       items,
		CurrentPage: page,
		TotalItems:  total,
		TotalPages:  totalPages,
	}, nil
}

// normalizeOrderQuery validates the filter set and translates it into the
// repository filter. The inclusive end date becomes an exclusive upper bound
// on the following midnight.
func normalizeOrderQuery(shopID string, query OrderQuery) (repositories.SubOrderListFilter, int, int, error) {
	filter := repositories.SubOrderListFilter{
		ShopID: shopID,
		Search: strings.TrimSpace(query.Search),
	}

	if raw := strings.TrimSpace(query.Status); raw != "" && !strings.EqualFold(raw, StatusFilterAll) {
		status, ok := domain.ParseSubOrderStatus(raw)
		if !ok {
			return repositories.SubOrderListFilter{}, 0, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, raw)
		}
		filter.Status = status
	}

	if query.StartDate != nil && query.EndDate != nil && query.EndDate.Before(*query.StartDate) {
		return repositories.SubOrderListFilter{}, 0, 0, fmt.Errorf("%w: start date is after end date", ErrInvalidQuery)
	}
	if query.StartDate != nil {
		from := startOfDay(*query.StartDate)
		filter.CreatedFrom = &from
	}
	if query.EndDate != nil {
		to := startOfDay(*query.EndDate).AddDate(0, 0, 1)
		filter.CreatedTo = &to
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return filter, page, limit, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// mapRepositoryErrorAs translates categorised persistence failures into the
// service sentinels, substituting notFound for missing documents.
func mapRepositoryErrorAs(op string, err error, notFound error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%s: %w", op, notFound)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%s: %w", op, ErrUnavailable)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mapRepositoryError(op string, err error) error {
	return mapRepositoryErrorAs(op, err, ErrSubOrderNotFound)
}
