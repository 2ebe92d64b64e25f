package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/platform/auth"
	"github.com/marketbloc/vendor-api/internal/platform/requestctx"
	"github.com/marketbloc/vendor-api/internal/repositories"
)

// StatusTransitionDeps bundles collaborators for the transition engine.
// Events is optional; without it transitions are applied silently.
type StatusTransitionDeps struct {
	Orders      repositories.SubOrderRepository
	Events      StatusEventPublisher
	Clock       func() time.Time
	IDGenerator func() string
}

type statusTransitionEngine struct {
	orders repositories.SubOrderRepository
	events StatusEventPublisher
	clock  func() time.Time
	newID  func() string
}

// NewStatusTransitionEngine constructs the write side of the fulfillment workflow.
func NewStatusTransitionEngine(deps StatusTransitionDeps) (StatusTransitionEngine, error) {
	if deps.Orders == nil {
		return nil, errors.New("status transition engine: sub-order repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &statusTransitionEngine{
		orders: deps.Orders,
		events: deps.Events,
		clock:  clock,
		newID:  newID,
	}, nil
}

// UpdateStatus transitions a single sub-order.
func (e *statusTransitionEngine) UpdateStatus(ctx context.Context, shopID, subOrderID string, next domain.SubOrderStatus) error {
	subOrderID = strings.TrimSpace(subOrderID)
	if subOrderID == "" {
		return fmt.Errorf("%w: sub-order id is required", ErrInvalidRequest)
	}
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}

	if err := e.orders.UpdateStatus(ctx, shopID, subOrderID, next, e.clock()); err != nil {
		return mapRepositoryError("update status", err)
	}

	e.publish(ctx, shopID, []string{subOrderID}, next)
	return nil
}

// BulkTransition moves every selected sub-order to the target status in one
// atomic storage operation and reports how many were actually updated. An
// empty selection is refused before any storage access.
func (e *statusTransitionEngine) BulkTransition(ctx context.Context, shopID string, subOrderIDs []string, next domain.SubOrderStatus) (int, error) {
	ids := dedupeIDs(subOrderIDs)
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	if !next.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}

	affected, err := e.orders.BulkUpdateStatus(ctx, shopID, ids, next, e.clock())
	if err != nil {
		return 0, mapRepositoryError("bulk transition", err)
	}

	if affected > 0 {
		e.publish(ctx, shopID, ids, next)
	}
	return affected, nil
}

// publish emits the status-change event best effort. A failed publish never
// fails the transition that already committed.
func (e *statusTransitionEngine) publish(ctx context.Context, shopID string, subOrderIDs []string, next domain.SubOrderStatus) {
	if e.events == nil {
		return
	}
	event := StatusChangeEvent{
		EventID:     e.newID(),
		ShopID:      shopID,
		SubOrderIDs: subOrderIDs,
		Status:      next,
		OccurredAt:  e.clock().UTC(),
	}
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		event.Actor = identity.UID
	}
	if _, err := e.events.PublishStatusChange(ctx, event); err != nil {
		requestctx.Logger(ctx).Warn("publish status change failed",
			zap.String("event_id", event.EventID),
			zap.String("shop_id", shopID),
			zap.Error(err))
	}
}

// dedupeIDs drops blank and repeated ids while preserving first-seen order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
