package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/platform/auth"
	"github.com/marketbloc/vendor-api/internal/platform/httpx"
	"github.com/marketbloc/vendor-api/internal/services"
)

const (
	maxBulkStatusBodySize = 64 * 1024

	dateParamLayout = "2006-01-02"
)

// VendorOrderHandlers exposes the seller-side order fulfillment endpoints.
type VendorOrderHandlers struct {
	orders      services.OrderQueryService
	transitions services.StatusTransitionEngine
	exports     services.ExportService
	clock       func() time.Time
}

// NewVendorOrderHandlers constructs a new VendorOrderHandlers instance.
func NewVendorOrderHandlers(orders services.OrderQueryService, transitions services.StatusTransitionEngine, exports services.ExportService) *VendorOrderHandlers {
	return &VendorOrderHandlers{
		orders:      orders,
		transitions: transitions,
		exports:     exports,
		clock:       time.Now,
	}
}

// Routes registers the vendor order endpoints on the (already authenticated) router.
func (h *VendorOrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/suborders", h.listSubOrders)
	r.Put("/orders/bulk-status", h.bulkStatus)
	r.Get("/orders/export", h.exportOrders)
}

type orderItemPayload struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"productId"`
	VariantID       string  `json:"variantId,omitempty"`
	Quantity        int     `json:"quantity"`
	VariantPrice    int64   `json:"variantPrice"`
	ProductDiscount float64 `json:"productDiscount"`
	LineTotal       int64   `json:"lineTotal"`
}

type subOrderPayload struct {
	ID               string             `json:"id"`
	Status           string             `json:"status"`
	RecipientName    string             `json:"recipientName"`
	RecipientPhone   string             `json:"recipientPhone"`
	ShippingAddress  string             `json:"shippingAddress"`
	ShippingFee      int64              `json:"shippingFee"`
	Note             string             `json:"note,omitempty"`
	Items            []orderItemPayload `json:"items"`
	MerchandiseTotal int64              `json:"merchandiseTotal"`
	GrandTotal       int64              `json:"grandTotal"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

type subOrderListResponse struct {
	Success     bool              `json:"success"`
	Data        []subOrderPayload `json:"data"`
	CurrentPage int               `json:"currentPage"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"totalPages"`
}

func (h *VendorOrderHandlers) listSubOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	shopID, ok := requireShop(w, r)
	if !ok {
		return
	}

	query, err := parseOrderQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.orders.Query(ctx, shopID, query)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	data := make([]subOrderPayload, 0, len(page.Items))
	for _, order := range page.Items {
		data = append(data, buildSubOrderPayload(order))
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, subOrderListResponse{
		Success:     true,
		Data:        data,
		CurrentPage: page.CurrentPage,
		Total:       page.TotalItems,
		TotalPages:  page.TotalPages,
	})
}

type bulkStatusRequest struct {
	SubOrderIDs idList `json:"subOrderIds"`
	Status      string `json:"status"`
}

type bulkStatusResponse struct {
	Success       bool `json:"success"`
	AffectedCount int  `json:"affectedCount"`
}

func (h *VendorOrderHandlers) bulkStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.transitions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	shopID, ok := requireShop(w, r)
	if !ok {
		return
	}

	var req bulkStatusRequest
	body := http.MaxBytesReader(w, r.Body, maxBulkStatusBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	statusRaw := strings.TrimSpace(req.Status)
	if statusRaw == "" {
		statusRaw = string(domain.StatusProcessing)
	}
	status, okStatus := domain.ParseSubOrderStatus(statusRaw)
	if !okStatus {
		httpx.WriteError(ctx, w, httpx.NewError("unknown_status", fmt.Sprintf("unknown status %q", statusRaw), http.StatusBadRequest))
		return
	}

	affected, err := h.transitions.BulkTransition(ctx, shopID, req.SubOrderIDs, status)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, bulkStatusResponse{
		Success:       true,
		AffectedCount: affected,
	})
}

func (h *VendorOrderHandlers) exportOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.exports == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	shopID, ok := requireShop(w, r)
	if !ok {
		return
	}

	query, err := parseOrderQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	// Buffer the document so failures still produce a JSON error instead of
	// a truncated CSV body.
	var buf bytes.Buffer
	if err := h.exports.Export(ctx, shopID, query, &buf); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	filename := services.ExportFilename(h.clock())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

// parseOrderQuery extracts the shared listing filters from the URL query.
func parseOrderQuery(r *http.Request) (services.OrderQuery, error) {
	values := r.URL.Query()
	query := services.OrderQuery{
		Status: strings.TrimSpace(values.Get("status")),
		Search: strings.TrimSpace(values.Get("search")),
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return services.OrderQuery{}, errors.New("page must be an integer")
		}
		query.Page = page
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return services.OrderQuery{}, errors.New("limit must be an integer")
		}
		query.Limit = limit
	}
	if raw := strings.TrimSpace(values.Get("startDate")); raw != "" {
		ts, err := time.ParseInLocation(dateParamLayout, raw, time.UTC)
		if err != nil {
			return services.OrderQuery{}, errors.New("startDate must be formatted YYYY-MM-DD")
		}
		query.StartDate = &ts
	}
	if raw := strings.TrimSpace(values.Get("endDate")); raw != "" {
		ts, err := time.ParseInLocation(dateParamLayout, raw, time.UTC)
		if err != nil {
			return services.OrderQuery{}, errors.New("endDate must be formatted YYYY-MM-DD")
		}
		query.EndDate = &ts
	}

	return query, nil
}

func buildSubOrderPayload(order domain.SubOrder) subOrderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ID:              item.ID,
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			VariantPrice:    item.VariantPrice,
			ProductDiscount: item.ProductDiscount,
			LineTotal:       item.LineTotal(),
		})
	}
	return subOrderPayload{
		ID:               order.ID,
		Status:           string(order.Status),
		RecipientName:    order.RecipientName,
		RecipientPhone:   order.RecipientPhone,
		ShippingAddress:  order.ShippingAddress(),
		ShippingFee:      order.ShippingFee,
		Note:             order.Note,
		Items:            items,
		MerchandiseTotal: order.MerchandiseTotal(),
		GrandTotal:       order.GrandTotal(),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// requireShop resolves the authenticated vendor's shop id, writing an error
// response when the identity is missing or carries no shop.
func requireShop(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	shopID := strings.TrimSpace(identity.ShopID)
	if shopID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("shop_required", "vendor account has no shop", http.StatusForbidden))
		return "", false
	}
	return shopID, true
}

// writeServiceError maps service sentinels onto the JSON error envelope.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmptySelection):
		httpx.WriteError(ctx, w, httpx.NewError("empty_selection", "no sub-orders selected", http.StatusBadRequest))
	case errors.Is(err, services.ErrUnknownStatus):
		httpx.WriteError(ctx, w, httpx.NewError("unknown_status", "unknown status", http.StatusBadRequest))
	case errors.Is(err, services.ErrInvalidQuery), errors.Is(err, services.ErrInvalidRequest):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrSubOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("suborder_not_found", "sub-order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "storage temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError))
	}
}

// idList accepts both JSON strings and numbers, normalising to strings.
type idList []string

func (l *idList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch value := v.(type) {
		case string:
			out = append(out, value)
		case float64:
			out = append(out, strconv.FormatFloat(value, 'f', -1, 64))
		default:
			return fmt.Errorf("sub-order id must be a string or number, got %T", v)
		}
	}
	*l = out
	return nil
}
