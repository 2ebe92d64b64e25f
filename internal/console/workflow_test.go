package console_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marketbloc/vendor-api/internal/console"
)

// fakeVendorAPI is an in-memory rendition of the vendor order endpoints,
// seeded with a small order book.
type fakeVendorAPI struct {
	mu     sync.Mutex
	orders []fakeOrder

	listRequests []console.Filters
	bulkRequests [][]string
}

type fakeOrder struct {
	ID        string
	Status    string
	Recipient string
	CreatedAt time.Time
}

func newFakeVendorAPI() *fakeVendorAPI {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	return &fakeVendorAPI{
		orders: []fakeOrder{
			{ID: "so-1", Status: "processing", Recipient: "Tran Thi B", CreatedAt: base},
			{ID: "so-2", Status: "processing", Recipient: "Nguyen Van A", CreatedAt: base.Add(time.Hour)},
			{ID: "so-3", Status: "pending", Recipient: "Le Van C", CreatedAt: base.Add(2 * time.Hour)},
			{ID: "so-4", Status: "processing", Recipient: "Pham Thi D", CreatedAt: base.Add(3 * time.Hour)},
			{ID: "so-5", Status: "shipped", Recipient: "Hoang Van E", CreatedAt: base.Add(4 * time.Hour)},
			{ID: "so-6", Status: "processing", Recipient: "Vo Thi F", CreatedAt: base.Add(5 * time.Hour)},
			{ID: "so-7", Status: "cancelled", Recipient: "Dang Van G", CreatedAt: base.Add(6 * time.Hour)},
		},
	}
}

func (f *fakeVendorAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/vendor/suborders", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := console.Filters{
			Status: q.Get("status"),
			Search: q.Get("search"),
		}
		if raw := q.Get("page"); raw != "" {
			filters.Page, _ = strconv.Atoi(raw)
		}

		f.mu.Lock()
		f.listRequests = append(f.listRequests, filters)
		var matched []map[string]any
		for _, order := range f.orders {
			if filters.Status != "" && order.Status != filters.Status {
				continue
			}
			matched = append(matched, map[string]any{
				"id":            order.ID,
				"status":        order.Status,
				"recipientName": order.Recipient,
				"createdAt":     order.CreatedAt,
			})
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"data":        matched,
			"currentPage": 1,
			"total":       len(matched),
			"totalPages":  1,
		})
	})
	mux.HandleFunc("/vendor/orders/bulk-status", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)

		var req struct {
			SubOrderIDs []string `json:"subOrderIds"`
			Status      string   `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		f.bulkRequests = append(f.bulkRequests, req.SubOrderIDs)
		affected := 0
		for i := range f.orders {
			for _, id := range req.SubOrderIDs {
				if f.orders[i].ID == id {
					f.orders[i].Status = req.Status
					affected++
				}
			}
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "affectedCount": affected})
	})
	return mux
}

func TestOrderWorkflowFilterSelectConfirmBulk(t *testing.T) {
	t.Parallel()

	api := newFakeVendorAPI()
	ts := httptest.NewServer(api.handler(t))
	t.Cleanup(ts.Close)

	client, err := console.NewClient(ts.URL, "vendor-token", ts.Client())
	require.NoError(t, err)

	ctx := context.Background()
	controller := console.NewController(client)

	// Narrow the listing to processing orders: 4 of the 7 match.
	require.NoError(t, controller.SetStatus(ctx, "processing"))
	page := controller.Page()
	require.Len(t, page.Items, 4)

	// Check three of them.
	require.NoError(t, controller.Selection().Select("so-1"))
	require.NoError(t, controller.Selection().Select("so-4"))
	require.NoError(t, controller.Selection().Select("so-6"))

	confirmation, err := controller.RequestBulkTransition("shipped")
	require.NoError(t, err)
	require.Len(t, confirmation.SubOrderIDs, 3)

	affected, err := controller.ExecuteBulkTransition(ctx, confirmation.Token)
	require.NoError(t, err)
	require.Equal(t, 3, affected)

	// Exactly one bulk request carried all three ids.
	api.mu.Lock()
	bulkRequests := api.bulkRequests
	listRequests := len(api.listRequests)
	api.mu.Unlock()
	require.Len(t, bulkRequests, 1)
	require.Equal(t, []string{"so-1", "so-4", "so-6"}, bulkRequests[0])

	// The success path re-queried the listing and cleared the selection.
	require.Equal(t, 2, listRequests)
	require.Zero(t, controller.Selection().Len())

	// The transitioned orders left the processing filter.
	page = controller.Page()
	require.Len(t, page.Items, 1)
	require.Equal(t, "so-2", page.Items[0].ID)
}

func TestOrderWorkflowDebouncedSearchCommitsOnce(t *testing.T) {
	t.Parallel()

	api := newFakeVendorAPI()
	ts := httptest.NewServer(api.handler(t))
	t.Cleanup(ts.Close)

	client, err := console.NewClient(ts.URL, "vendor-token", ts.Client())
	require.NoError(t, err)

	ctx := context.Background()
	controller := console.NewController(client)

	committed := make(chan string, 4)
	search := console.NewDebouncer(30*time.Millisecond, func(term string) {
		_ = controller.SetSearch(ctx, term)
		committed <- term
	})
	defer search.Stop()

	for _, keystroke := range []string{"t", "tr", "tra", "tran"} {
		search.Input(keystroke)
	}

	select {
	case term := <-committed:
		require.Equal(t, "tran", term)
	case <-time.After(time.Second):
		t.Fatal("expected the debounced search to commit")
	}

	api.mu.Lock()
	listRequests := api.listRequests
	api.mu.Unlock()

	// Four keystrokes produced exactly one search request.
	require.Len(t, listRequests, 1)
	require.Equal(t, "tran", listRequests[0].Search)
}
