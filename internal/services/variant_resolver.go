package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/repositories"
)

// VariantResolverDeps bundles collaborators for the variant resolver.
type VariantResolverDeps struct {
	Products repositories.ProductRepository
}

type variantResolver struct {
	products repositories.ProductRepository
}

// NewVariantResolver constructs the product detail resolver.
func NewVariantResolver(deps VariantResolverDeps) (VariantResolver, error) {
	if deps.Products == nil {
		return nil, errors.New("variant resolver: product repository is required")
	}
	return &variantResolver{products: deps.Products}, nil
}

// Resolve loads the products referenced by refs and selects, per product, the
// variant matching the desired variant id. A miss, or a blank desired id,
// falls back to the first variant; products without variants resolve to -1.
// Unknown product ids are dropped from the result. Duplicate product ids keep
// their first position; the last desired variant id wins.
func (r *variantResolver) Resolve(ctx context.Context, refs []ItemRef) ([]domain.ResolvedProduct, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no products referenced", ErrInvalidRequest)
	}

	desired := make(map[string]string, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		productID := strings.TrimSpace(ref.ProductID)
		if productID == "" {
			return nil, fmt.Errorf("%w: product id is required", ErrInvalidRequest)
		}
		if _, seen := desired[productID]; !seen {
			ids = append(ids, productID)
		}
		desired[productID] = strings.TrimSpace(ref.VariantID)
	}

	products, err := r.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, mapRepositoryErrorAs("resolve products", err, ErrProductNotFound)
	}

	resolved := make([]domain.ResolvedProduct, 0, len(products))
	for _, product := range products {
		resolved = append(resolved, domain.ResolvedProduct{
			Product:            product,
			ActiveVariantIndex: activeVariantIndex(product.Variants, desired[product.ID]),
		})
	}
	return resolved, nil
}

func activeVariantIndex(variants []domain.Variant, desiredID string) int {
	if len(variants) == 0 {
		return -1
	}
	if desiredID != "" {
		for i, v := range variants {
			if v.ID == desiredID {
				return i
			}
		}
	}
	return 0
}
