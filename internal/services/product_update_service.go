package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marketbloc/vendor-api/internal/repositories"
)

// ProductUpdateDeps bundles collaborators for the product update service.
type ProductUpdateDeps struct {
	Products repositories.ProductRepository
}

type productUpdateService struct {
	products repositories.ProductRepository
}

// NewProductUpdateService constructs the vendor product edit service.
func NewProductUpdateService(deps ProductUpdateDeps) (ProductUpdateService, error) {
	if deps.Products == nil {
		return nil, errors.New("product update service: product repository is required")
	}
	return &productUpdateService{products: deps.Products}, nil
}

func (s *productUpdateService) UpdateProduct(ctx context.Context, shopID, productID string, update ProductFields) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidRequest)
	}
	err := s.products.UpdateProduct(ctx, shopID, productID, repositories.ProductUpdate{
		Name:        update.Name,
		Description: update.Description,
		Discount:    update.Discount,
		Stock:       update.Stock,
	})
	if err != nil {
		return mapRepositoryErrorAs("update product", err, ErrProductNotFound)
	}
	return nil
}

func (s *productUpdateService) UpdateVariant(ctx context.Context, shopID, productID, variantID string, update VariantFields) error {
	if strings.TrimSpace(productID) == "" || strings.TrimSpace(variantID) == "" {
		return fmt.Errorf("%w: product and variant ids are required", ErrInvalidRequest)
	}
	err := s.products.UpdateVariant(ctx, shopID, productID, variantID, repositories.VariantUpdate{
		Size:     update.Size,
		Color:    update.Color,
		Material: update.Material,
		Price:    update.Price,
		Stock:    update.Stock,
	})
	if err != nil {
		return mapRepositoryErrorAs("update variant", err, ErrProductNotFound)
	}
	return nil
}
