package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/platform/httpx"
	"github.com/marketbloc/vendor-api/internal/services"
)

const maxProductFormSize = 2 << 20

// ProductHandlers exposes product detail resolution and vendor catalogue edits.
type ProductHandlers struct {
	resolver services.VariantResolver
	updates  services.ProductUpdateService
}

// NewProductHandlers constructs a new ProductHandlers instance.
func NewProductHandlers(resolver services.VariantResolver, updates services.ProductUpdateService) *ProductHandlers {
	return &ProductHandlers{
		resolver: resolver,
		updates:  updates,
	}
}

// PublicRoutes registers the unauthenticated product endpoints.
func (h *ProductHandlers) PublicRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/detailProducts", h.detailProducts)
}

// VendorRoutes registers the vendor-scoped product edit endpoints.
func (h *ProductHandlers) VendorRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Put("/update/{productID}", h.updateProduct)
	r.Put("/update/{productID}/{variantID}", h.updateVariant)
}

type variantPayload struct {
	VariantID string `json:"variantId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Material  string `json:"material,omitempty"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type productDetailPayload struct {
	ProductID          string           `json:"productId"`
	Name               string           `json:"name"`
	Description        string           `json:"description,omitempty"`
	Discount           float64          `json:"discount"`
	Stock              int              `json:"stock"`
	Sold               int              `json:"sold"`
	AverageRating      float64          `json:"averageRating"`
	Variants           []variantPayload `json:"variants"`
	ActiveVariantIndex int              `json:"activeVariantIndex"`
}

type productDetailResponse struct {
	Success bool                   `json:"success"`
	Data    []productDetailPayload `json:"data"`
}

// detailProducts resolves full product records for the comma-joined
// productIds/variantIds parameter pair. The two lists are positional: the
// variant id at index i belongs to the product id at index i.
func (h *ProductHandlers) detailProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.resolver == nil {
		httpx.WriteError(ctx, w, httpx.NewError("product_service_unavailable", "product service unavailable", http.StatusServiceUnavailable))
		return
	}

	productIDs := splitIDParam(r.URL.Query().Get("productIds"))
	variantIDs := splitIDParam(r.URL.Query().Get("variantIds"))
	if len(productIDs) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productIds is required", http.StatusBadRequest))
		return
	}
	if len(variantIDs) > 0 && len(variantIDs) != len(productIDs) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request",
			fmt.Sprintf("productIds and variantIds must have the same length, got %d and %d", len(productIDs), len(variantIDs)),
			http.StatusBadRequest))
		return
	}

	refs := make([]services.ItemRef, 0, len(productIDs))
	for i, productID := range productIDs {
		ref := services.ItemRef{ProductID: productID}
		if len(variantIDs) > 0 {
			ref.VariantID = variantIDs[i]
		}
		refs = append(refs, ref)
	}

	resolved, err := h.resolver.Resolve(ctx, refs)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	data := make([]productDetailPayload, 0, len(resolved))
	for _, product := range resolved {
		data = append(data, buildProductDetailPayload(product))
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, productDetailResponse{Success: true, Data: data})
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ProductHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.updates == nil {
		httpx.WriteError(ctx, w, httpx.NewError("product_service_unavailable", "product service unavailable", http.StatusServiceUnavailable))
		return
	}

	shopID, ok := requireShop(w, r)
	if !ok {
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	form, ok := parseUpdateForm(w, r)
	if !ok {
		return
	}

	var fields services.ProductFields
	if v, present := formString(form, "name"); present {
		fields.Name = &v
	}
	if v, present := formString(form, "description"); present {
		fields.Description = &v
	}
	if raw, present := formString(form, "discount"); present {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 100 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "discount must be a number between 0 and 100", http.StatusBadRequest))
			return
		}
		fields.Discount = &v
	}
	if raw, present := formString(form, "stock"); present {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "stock must be a non-negative integer", http.StatusBadRequest))
			return
		}
		fields.Stock = &v
	}

	if err := h.updates.UpdateProduct(ctx, shopID, productID, fields); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, updateResponse{Success: true, Message: "product updated"})
}

func (h *ProductHandlers) updateVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.updates == nil {
		httpx.WriteError(ctx, w, httpx.NewError("product_service_unavailable", "product service unavailable", http.StatusServiceUnavailable))
		return
	}

	shopID, ok := requireShop(w, r)
	if !ok {
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	variantID := strings.TrimSpace(chi.URLParam(r, "variantID"))
	if productID == "" || variantID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product and variant ids are required", http.StatusBadRequest))
		return
	}

	form, ok := parseUpdateForm(w, r)
	if !ok {
		return
	}

	var fields services.VariantFields
	if v, present := formString(form, "size"); present {
		fields.Size = &v
	}
	if v, present := formString(form, "color"); present {
		fields.Color = &v
	}
	if v, present := formString(form, "material"); present {
		fields.Material = &v
	}
	if raw, present := formString(form, "price"); present {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "price must be a non-negative integer", http.StatusBadRequest))
			return
		}
		fields.Price = &v
	}
	if raw, present := formString(form, "stock"); present {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "stock must be a non-negative integer", http.StatusBadRequest))
			return
		}
		fields.Stock = &v
	}

	if err := h.updates.UpdateVariant(ctx, shopID, productID, variantID, fields); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, updateResponse{Success: true, Message: "variant updated"})
}

func buildProductDetailPayload(product domain.ResolvedProduct) productDetailPayload {
	variants := make([]variantPayload, 0, len(product.Variants))
	for _, v := range product.Variants {
		variants = append(variants, variantPayload{
			VariantID: v.ID,
			Size:      v.Size,
			Color:     v.Color,
			Material:  v.Material,
			Price:     v.Price,
			Stock:     v.Stock,
			ImageURL:  v.ImageURL,
		})
	}
	return productDetailPayload{
		ProductID:          product.ID,
		Name:               product.Name,
		Description:        product.Description,
		Discount:           product.Discount,
		Stock:              product.Stock,
		Sold:               product.Sold,
		AverageRating:      product.AverageRating,
		Variants:           variants,
		ActiveVariantIndex: product.ActiveVariantIndex,
	}
}

// splitIDParam splits a comma-joined id list, preserving positions so the
// parallel lists stay aligned. A blank parameter yields nil.
func splitIDParam(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// parseUpdateForm accepts multipart or urlencoded bodies and returns the
// field map, writing an error response on malformed input.
func parseUpdateForm(w http.ResponseWriter, r *http.Request) (map[string][]string, bool) {
	ctx := r.Context()
	err := r.ParseMultipartForm(maxProductFormSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be a form", http.StatusBadRequest))
		return nil, false
	}
	if r.MultipartForm != nil {
		return r.MultipartForm.Value, true
	}
	return r.PostForm, true
}

func formString(form map[string][]string, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}
