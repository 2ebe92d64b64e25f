package console

import (
	"context"
	"sync"
	"time"
)

// OrdersAPI is the slice of the vendor API the controller drives.
type OrdersAPI interface {
	ListSubOrders(ctx context.Context, filters Filters) (SubOrderPage, error)
	BulkTransition(ctx context.Context, subOrderIDs []string, status string) (int, error)
}

// Controller owns the order screen state: the active filters, the loaded
// page, the selection, and the pending bulk confirmation. List responses are
// applied by request sequence number, so a slow response for an old filter
// state can never overwrite the result of a newer one.
type Controller struct {
	api   OrdersAPI
	clock func() time.Time

	mu       sync.Mutex
	filters  Filters
	page     SubOrderPage
	selected *Selection
	pending  *Confirmation
	inFlight bool

	issuedSeq  uint64
	appliedSeq uint64
}

// NewController constructs a controller with default filters (all statuses, page 1).
func NewController(api OrdersAPI) *Controller {
	return &Controller{
		api:      api,
		clock:    time.Now,
		filters:  Filters{Status: StatusAll, Page: 1},
		selected: NewSelection(),
	}
}

// Filters returns a copy of the active filter state.
func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Page returns the most recently applied result page.
func (c *Controller) Page() SubOrderPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Selection exposes the page-scoped selection set.
func (c *Controller) Selection() *Selection {
	return c.selected
}

// InFlight reports whether a bulk transition is currently executing.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// SetStatus changes the status filter, resets to page 1, clears the
// selection, and re-queries.
func (c *Controller) SetStatus(ctx context.Context, status string) error {
	c.mu.Lock()
	c.filters.Status = status
	c.filters.Page = 1
	c.mu.Unlock()
	c.selected.Clear()
	return c.Refresh(ctx)
}

// SetSearch changes the committed search term, resets to page 1, clears the
// selection, and re-queries. Debouncing happens upstream; this receives the
// already committed value.
func (c *Controller) SetSearch(ctx context.Context, term string) error {
	c.mu.Lock()
	c.filters.Search = term
	c.filters.Page = 1
	c.mu.Unlock()
	c.selected.Clear()
	return c.Refresh(ctx)
}

// SetDateRange changes the inclusive date bounds, resets to page 1, clears
// the selection, and re-queries.
func (c *Controller) SetDateRange(ctx context.Context, start, end *time.Time) error {
	c.mu.Lock()
	c.filters.StartDate = start
	c.filters.EndDate = end
	c.filters.Page = 1
	c.mu.Unlock()
	c.selected.Clear()
	return c.Refresh(ctx)
}

// SetPage navigates to another page and re-queries. The selection survives
// only for ids still visible, which for a page move means it empties.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	c.filters.Page = page
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh issues a list request for the current filters and applies the
// response unless a newer request has been applied in the meantime.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issuedSeq++
	seq := c.issuedSeq
	filters := c.filters
	c.mu.Unlock()

	page, err := c.api.ListSubOrders(ctx, filters)
	if err != nil {
		return err
	}
	c.apply(seq, page)
	return nil
}

// apply installs a list response if it is newer than the last applied one.
// Stale responses are dropped.
func (c *Controller) apply(seq uint64, page SubOrderPage) {
	c.mu.Lock()
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		return
	}
	c.appliedSeq = seq
	c.page = page
	if page.CurrentPage > 0 {
		c.filters.Page = page.CurrentPage
	}
	c.filters.ClampPage(page.TotalPages)
	c.mu.Unlock()

	ids := make([]string, 0, len(page.Items))
	for _, order := range page.Items {
		ids = append(ids, order.ID)
	}
	c.selected.SetLoaded(ids)
}

// RequestBulkTransition opens the confirmation step for moving the selected
// sub-orders to the target status. An empty selection is refused locally
// with no network traffic.
func (c *Controller) RequestBulkTransition(status string) (*Confirmation, error) {
	ids := c.selected.IDs()
	if len(ids) == 0 {
		return nil, ErrNothingSelected
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = newConfirmation(status, ids, c.clock())
	return c.pending, nil
}

// CancelBulkTransition abandons the pending confirmation, if any.
func (c *Controller) CancelBulkTransition() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// ExecuteBulkTransition performs the confirmed transition as one request.
// On success it re-queries the listing and clears the selection; on failure
// the selection is kept and the server's message is surfaced unchanged.
func (c *Controller) ExecuteBulkTransition(ctx context.Context, token string) (int, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return 0, ErrBulkInFlight
	}
	if c.pending == nil || c.pending.Token != token {
		c.mu.Unlock()
		return 0, ErrUnknownConfirmation
	}
	confirmation := c.pending
	c.inFlight = true
	c.mu.Unlock()

	affected, err := c.api.BulkTransition(ctx, confirmation.SubOrderIDs, confirmation.Status)

	c.mu.Lock()
	c.inFlight = false
	if err == nil {
		c.pending = nil
	}
	c.mu.Unlock()

	if err != nil {
		return 0, err
	}

	c.selected.Clear()
	if refreshErr := c.Refresh(ctx); refreshErr != nil {
		return affected, refreshErr
	}
	return affected, nil
}
