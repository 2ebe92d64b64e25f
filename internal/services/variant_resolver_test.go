package services

import (
	"context"
	"errors"
	"testing"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/repositories"
)

func TestVariantResolverSelectsMatchingVariant(t *testing.T) {
	repo := &stubProductRepository{
		findFunc: func(ctx context.Context, productIDs []string) ([]domain.Product, error) {
			if len(productIDs) != 1 || productIDs[0] != "prod-1" {
				t.Fatalf("unexpected lookup %v", productIDs)
			}
			return []domain.Product{{
				ID: "prod-1",
				Variants: []domain.Variant{
					{ID: "var-a", Price: 100},
					{ID: "var-b", Price: 200},
					{ID: "var-c", Price: 300},
				},
			}}, nil
		},
	}

	resolver, err := NewVariantResolver(VariantResolverDeps{Products: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing resolver: %v", err)
	}

	resolved, err := resolver.Resolve(context.Background(), []ItemRef{{ProductID: "prod-1", VariantID: "var-b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected one product, got %d", len(resolved))
	}
	if resolved[0].ActiveVariantIndex != 1 {
		t.Fatalf("expected active index 1, got %d", resolved[0].ActiveVariantIndex)
	}
	variant, ok := resolved[0].ActiveVariant()
	if !ok || variant.ID != "var-b" {
		t.Fatalf("expected active variant var-b, got %+v ok=%v", variant, ok)
	}
}

func TestVariantResolverFallsBackToFirstVariant(t *testing.T) {
	repo := &stubProductRepository{
		findFunc: func(ctx context.Context, productIDs []string) ([]domain.Product, error) {
			return []domain.Product{
				{ID: "prod-1", Variants: []domain.Variant{{ID: "var-a"}, {ID: "var-b"}}},
				{ID: "prod-2", Variants: []domain.Variant{{ID: "var-x"}}},
			}, nil
		},
	}

	resolver, err := NewVariantResolver(VariantResolverDeps{Products: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing resolver: %v", err)
	}

	resolved, err := resolver.Resolve(context.Background(), []ItemRef{
		{ProductID: "prod-1", VariantID: "var-deleted"},
		{ProductID: "prod-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved[0].ActiveVariantIndex != 0 {
		t.Fatalf("expected fallback index 0 for stale variant, got %d", resolved[0].ActiveVariantIndex)
	}
	if resolved[1].ActiveVariantIndex != 0 {
		t.Fatalf("expected fallback index 0 for blank desired id, got %d", resolved[1].ActiveVariantIndex)
	}
}

func TestVariantResolverVariantlessProduct(t *testing.T) {
	repo := &stubProductRepository{
		findFunc: func(ctx context.Context, productIDs []string) ([]domain.Product, error) {
			return []domain.Product{{ID: "prod-bare"}}, nil
		},
	}

	resolver, err := NewVariantResolver(VariantResolverDeps{Products: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing resolver: %v", err)
	}

	resolved, err := resolver.Resolve(context.Background(), []ItemRef{{ProductID: "prod-bare", VariantID: "var-a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved[0].ActiveVariantIndex != -1 {
		t.Fatalf("expected index -1 for variantless product, got %d", resolved[0].ActiveVariantIndex)
	}
	if _, ok := resolved[0].ActiveVariant(); ok {
		t.Fatalf("expected no active variant")
	}
}

func TestVariantResolverDeduplicatesAndPreservesOrder(t *testing.T) {
	var captured []string
	repo := &stubProductRepository{
		findFunc: func(ctx context.Context, productIDs []string) ([]domain.Product, error) {
			captured = productIDs
			return []domain.Product{
				{ID: "prod-1", Variants: []domain.Variant{{ID: "var-a"}, {ID: "var-b"}}},
				{ID: "prod-2", Variants: []domain.Variant{{ID: "var-x"}}},
			}, nil
		},
	}

	resolver, err := NewVariantResolver(VariantResolverDeps{Products: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing resolver: %v", err)
	}

	resolved, err := resolver.Resolve(context.Background(), []ItemRef{
		{ProductID: "prod-1", VariantID: "var-a"},
		{ProductID: "prod-2", VariantID: "var-x"},
		{ProductID: "prod-1", VariantID: "var-b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(captured) != 2 || captured[0] != "prod-1" || captured[1] != "prod-2" {
		t.Fatalf("expected unique ids in first-seen order, got %v", captured)
	}
	// The later reference to prod-1 overrides the desired variant.
	if resolved[0].ActiveVariantIndex != 1 {
		t.Fatalf("expected last desired variant to win, got index %d", resolved[0].ActiveVariantIndex)
	}
}

func TestVariantResolverSkipsUnknownProducts(t *testing.T) {
	repo := &stubProductRepository{
		findFunc: func(ctx context.Context, productIDs []string) ([]domain.Product, error) {
			return []domain.Product{{ID: "prod-2", Variants: []domain.Variant{{ID: "var-x"}}}}, nil
		},
	}

	resolver, err := NewVariantResolver(VariantResolverDeps{Products: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing resolver: %v", err)
	}

	resolved, err := resolver.Resolve(context.Background(), []ItemRef{
		{ProductID: "prod-gone", VariantID: "var-a"},
		{ProductID: "prod-2", VariantID: "var-x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ID != "prod-2" {
		t.Fatalf("expected only the known product, got %+v", resolved)
	}
}

func TestVariantResolverValidation(t *testing.T) {
	resolver, err := NewVariantResolver(VariantResolverDeps{Products: &stubProductRepository{}})
	if err != nil {
		t.Fatalf("unexpected error constructing resolver: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty refs, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), []ItemRef{{ProductID: " "}}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank product id, got %v", err)
	}
}

type stubProductRepository struct {
	findFunc          func(ctx context.Context, productIDs []string) ([]domain.Product, error)
	updateProductFunc func(ctx context.Context, shopID, productID string, update repositories.ProductUpdate) error
	updateVariantFunc func(ctx context.Context, shopID, productID, variantID string, update repositories.VariantUpdate) error
}

func (s *stubProductRepository) FindByIDs(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	if s.findFunc != nil {
		return s.findFunc(ctx, productIDs)
	}
	return nil, errors.New("not implemented")
}

func (s *stubProductRepository) UpdateProduct(ctx context.Context, shopID, productID string, update repositories.ProductUpdate) error {
	if s.updateProductFunc != nil {
		return s.updateProductFunc(ctx, shopID, productID, update)
	}
	return errors.New("not implemented")
}

func (s *stubProductRepository) UpdateVariant(ctx context.Context, shopID, productID, variantID string, update repositories.VariantUpdate) error {
	if s.updateVariantFunc != nil {
		return s.updateVariantFunc(ctx, shopID, productID, variantID, update)
	}
	return errors.New("not implemented")
}
