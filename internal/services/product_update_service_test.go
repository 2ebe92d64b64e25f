package services

import (
	"context"
	"errors"
	"testing"

	"github.com/marketbloc/vendor-api/internal/repositories"
)

func TestProductUpdateServicePassesFieldsThrough(t *testing.T) {
	name := "Linen Shirt"
	discount := 15.0
	var captured repositories.ProductUpdate

	repo := &stubProductRepository{
		updateProductFunc: func(ctx context.Context, shopID, productID string, update repositories.ProductUpdate) error {
			if shopID != "shop-1" || productID != "prod-1" {
				t.Fatalf("unexpected target %s/%s", shopID, productID)
			}
			captured = update
			return nil
		},
	}

	service, err := NewProductUpdateService(ProductUpdateDeps{Products: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing service: %v", err)
	}

	err = service.UpdateProduct(context.Background(), "shop-1", "prod-1", ProductFields{Name: &name, Discount: &discount})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Name == nil || *captured.Name != name {
		t.Fatalf("expected name forwarded, got %+v", captured)
	}
	if captured.Discount == nil || *captured.Discount != discount {
		t.Fatalf("expected discount forwarded, got %+v", captured)
	}
	if captured.Description != nil || captured.Stock != nil {
		t.Fatalf("expected untouched fields nil, got %+v", captured)
	}
}

func TestProductUpdateServiceVariantNotFound(t *testing.T) {
	price := int64(120000)
	repo := &stubProductRepository{
		updateVariantFunc: func(ctx context.Context, shopID, productID, variantID string, update repositories.VariantUpdate) error {
			return &repositoryErrorStub{notFound: true}
		},
	}

	service, err := NewProductUpdateService(ProductUpdateDeps{Products: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing service: %v", err)
	}

	err = service.UpdateVariant(context.Background(), "shop-1", "prod-1", "var-gone", VariantFields{Price: &price})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductUpdateServiceValidation(t *testing.T) {
	service, err := NewProductUpdateService(ProductUpdateDeps{Products: &stubProductRepository{}})
	if err != nil {
		t.Fatalf("unexpected error constructing service: %v", err)
	}

	if err := service.UpdateProduct(context.Background(), "shop-1", " ", ProductFields{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if err := service.UpdateVariant(context.Background(), "shop-1", "prod-1", "", VariantFields{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
