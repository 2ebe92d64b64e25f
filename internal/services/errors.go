package services

import "errors"

var (
	// ErrInvalidRequest signals the caller provided invalid or incomplete input.
	ErrInvalidRequest = errors.New("orders: invalid request")
	// ErrInvalidQuery signals an unusable filter combination (unknown status, inverted date range).
	ErrInvalidQuery = errors.New("orders: invalid query")
	// ErrUnknownStatus indicates the requested target status is not a known lifecycle state.
	ErrUnknownStatus = errors.New("orders: unknown status")
	// ErrEmptySelection indicates a bulk transition was requested with no sub-orders selected.
	ErrEmptySelection = errors.New("orders: no sub-orders selected")
	// ErrSubOrderNotFound indicates the sub-order could not be located for the shop.
	ErrSubOrderNotFound = errors.New("orders: sub-order not found")
	// ErrProductNotFound indicates the product or variant could not be located for the shop.
	ErrProductNotFound = errors.New("orders: product not found")
	// ErrUnavailable indicates a transient storage outage.
	ErrUnavailable = errors.New("orders: storage unavailable")
)
