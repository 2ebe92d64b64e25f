// Package console implements the seller-side order management workflow
// against the vendor REST API: a typed HTTP client plus the filter,
// debounce, selection, and bulk-confirmation state the order screens need.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// APIError carries a backend error envelope. Message is the server's own
// wording and is surfaced to the operator verbatim.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client talks to the vendor order API.
type Client struct {
	base   *url.URL
	token  string
	client HTTPClient
}

// NewClient constructs a Client for the given base URL and bearer token.
func NewClient(baseURL, token string, client HTTPClient) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("console: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("console: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		base:   parsed,
		token:  strings.TrimSpace(token),
		client: client,
	}, nil
}

// OrderItem is one purchased line of a sub-order as served by the API.
type OrderItem struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"productId"`
	VariantID       string  `json:"variantId,omitempty"`
	Quantity        int     `json:"quantity"`
	VariantPrice    int64   `json:"variantPrice"`
	ProductDiscount float64 `json:"productDiscount"`
	LineTotal       int64   `json:"lineTotal"`
}

// SubOrder is the listing row for one sub-order.
type SubOrder struct {
	ID               string      `json:"id"`
	Status           string      `json:"status"`
	RecipientName    string      `json:"recipientName"`
	RecipientPhone   string      `json:"recipientPhone"`
	ShippingAddress  string      `json:"shippingAddress"`
	ShippingFee      int64       `json:"shippingFee"`
	Note             string      `json:"note,omitempty"`
	Items            []OrderItem `json:"items"`
	MerchandiseTotal int64       `json:"merchandiseTotal"`
	GrandTotal       int64       `json:"grandTotal"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// SubOrderPage is one page of listing results plus paging metadata.
type SubOrderPage struct {
	Items       []SubOrder
	CurrentPage int
	Total       int64
	TotalPages  int
}

type subOrderListEnvelope struct {
	Success     bool       `json:"success"`
	Data        []SubOrder `json:"data"`
	CurrentPage int        `json:"currentPage"`
	Total       int64      `json:"total"`
	TotalPages  int        `json:"totalPages"`
}

// ListSubOrders fetches one page of sub-orders matching the filters.
func (c *Client) ListSubOrders(ctx context.Context, filters Filters) (SubOrderPage, error) {
	if err := filters.Validate(); err != nil {
		return SubOrderPage{}, err
	}

	endpoint := "/vendor/suborders?" + filters.query(true).Encode()
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SubOrderPage{}, err
	}
	resp, err := c.do(req)
	if err != nil {
		return SubOrderPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SubOrderPage{}, c.errorFromResponse(resp)
	}

	var payload subOrderListEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SubOrderPage{}, fmt.Errorf("console: decode sub-order list: %w", err)
	}
	return SubOrderPage{
		Items:       payload.Data,
		CurrentPage: payload.CurrentPage,
		Total:       payload.Total,
		TotalPages:  payload.TotalPages,
	}, nil
}

type bulkTransitionRequest struct {
	SubOrderIDs []string `json:"subOrderIds"`
	Status      string   `json:"status,omitempty"`
}

type bulkTransitionEnvelope struct {
	Success       bool `json:"success"`
	AffectedCount int  `json:"affectedCount"`
}

// BulkTransition moves the listed sub-orders to the target status in one
// request and returns the server's affected count unchanged.
func (c *Client) BulkTransition(ctx context.Context, subOrderIDs []string, status string) (int, error) {
	body := bulkTransitionRequest{
		SubOrderIDs: subOrderIDs,
		Status:      strings.TrimSpace(status),
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/vendor/orders/bulk-status", body)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, c.errorFromResponse(resp)
	}

	var payload bulkTransitionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("console: decode bulk transition: %w", err)
	}
	return payload.AffectedCount, nil
}

// ExportOrders downloads the CSV document for the filtered order set. Page
// and limit are deliberately omitted from the request: exports always cover
// the full filtered set.
func (c *Client) ExportOrders(ctx context.Context, filters Filters) ([]byte, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	endpoint := "/vendor/orders/export?" + filters.query(false).Encode()
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("console: read export body: %w", err)
	}
	return data, nil
}

// ProductRef pairs a product id with the variant to preselect.
type ProductRef struct {
	ProductID string
	VariantID string
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	VariantID string `json:"variantId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Material  string `json:"material,omitempty"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// ProductDetail is a resolved catalogue record with the preselected variant index.
type ProductDetail struct {
	ProductID          string    `json:"productId"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Discount           float64   `json:"discount"`
	Stock              int       `json:"stock"`
	Sold               int       `json:"sold"`
	AverageRating      float64   `json:"averageRating"`
	Variants           []Variant `json:"variants"`
	ActiveVariantIndex int       `json:"activeVariantIndex"`
}

// ActiveVariant returns the preselected variant, or false when none exists.
func (p ProductDetail) ActiveVariant() (Variant, bool) {
	if p.ActiveVariantIndex < 0 || p.ActiveVariantIndex >= len(p.Variants) {
		return Variant{}, false
	}
	return p.Variants[p.ActiveVariantIndex], true
}

type productDetailEnvelope struct {
	Success bool            `json:"success"`
	Data    []ProductDetail `json:"data"`
}

// DetailProducts resolves product records for the given refs. The wire format
// keeps the legacy parallel comma-joined lists; positions are preserved so
// the variant at index i stays attached to the product at index i.
func (c *Client) DetailProducts(ctx context.Context, refs []ProductRef) ([]ProductDetail, error) {
	if len(refs) == 0 {
		return nil, errors.New("console: at least one product ref is required")
	}

	productIDs := make([]string, len(refs))
	variantIDs := make([]string, len(refs))
	for i, ref := range refs {
		productIDs[i] = strings.TrimSpace(ref.ProductID)
		variantIDs[i] = strings.TrimSpace(ref.VariantID)
	}

	values := url.Values{}
	values.Set("productIds", strings.Join(productIDs, ","))
	values.Set("variantIds", strings.Join(variantIDs, ","))

	req, err := c.newRequest(ctx, http.MethodGet, "/products/detailProducts?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(resp)
	}

	var payload productDetailEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("console: decode product details: %w", err)
	}
	return payload.Data, nil
}

// UpdateProduct submits edited product-scope fields as a multipart form.
// Only keys present in fields are sent; the server leaves the rest untouched.
func (c *Client) UpdateProduct(ctx context.Context, productID string, fields map[string]string) error {
	endpoint := path.Join("/vendor/product/update", url.PathEscape(strings.TrimSpace(productID)))
	return c.putForm(ctx, endpoint, fields)
}

// UpdateVariant submits edited variant-scope fields as a multipart form.
func (c *Client) UpdateVariant(ctx context.Context, productID, variantID string, fields map[string]string) error {
	endpoint := path.Join("/vendor/product/update",
		url.PathEscape(strings.TrimSpace(productID)),
		url.PathEscape(strings.TrimSpace(variantID)))
	return c.putForm(ctx, endpoint, fields)
}

func (c *Client) putForm(ctx context.Context, endpoint string, fields map[string]string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("console: encode form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("console: finalise form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.errorFromResponse(resp)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("console: request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("console: build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("console: encode payload: %w", err)
	}
	req, err := c.newRequest(ctx, method, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) resolve(endpoint string) string {
	if endpoint == "" {
		return c.base.String()
	}
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref, err := url.Parse(trimmed)
	if err != nil {
		ref = &url.URL{Path: trimmed}
	}
	return c.base.ResolveReference(ref).String()
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
