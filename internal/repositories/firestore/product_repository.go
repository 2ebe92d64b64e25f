package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/marketbloc/vendor-api/internal/domain"
	pfirestore "github.com/marketbloc/vendor-api/internal/platform/firestore"
	"github.com/marketbloc/vendor-api/internal/repositories"
)

const productCollection = "products"

// ProductRepository is the Firestore-backed catalogue store.
type ProductRepository struct {
	provider *pfirestore.Provider
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{provider: provider}, nil
}

type variantDocument struct {
	VariantID string `firestore:"variantId"`
	Size      string `firestore:"size"`
	Color     string `firestore:"color"`
	Material  string `firestore:"material"`
	Price     int64  `firestore:"price"`
	Stock     int    `firestore:"stock"`
	ImageURL  string `firestore:"imageUrl"`
}

type productDocument struct {
	ShopID        string            `firestore:"shopId"`
	Name          string            `firestore:"name"`
	Description   string            `firestore:"description"`
	Discount      float64           `firestore:"discount"`
	Stock         int               `firestore:"stock"`
	Sold          int               `firestore:"sold"`
	AverageRating float64           `firestore:"averageRating"`
	Variants      []variantDocument `firestore:"variants"`
}

// FindByIDs loads the products for the given ids, preserving request order.
// Unknown ids are skipped rather than failing the whole lookup.
func (r *ProductRepository) FindByIDs(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return nil, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(productIDs))
	for _, id := range productIDs {
		refs = append(refs, client.Collection(productCollection).Doc(id))
	}

	// GetAll returns snapshots in the same order as the refs.
	snaps, err := client.GetAll(ctx, refs)
	if err != nil {
		return nil, pfirestore.WrapError("products.findByIds", err)
	}

	products := make([]domain.Product, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		product, err := decodeProductDocument(snap)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// UpdateProduct merges the provided product-scope fields.
func (r *ProductRepository) UpdateProduct(ctx context.Context, shopID, productID string, update repositories.ProductUpdate) error {
	updates := make([]firestore.Update, 0, 4)
	if update.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *update.Name})
	}
	if update.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *update.Description})
	}
	if update.Discount != nil {
		updates = append(updates, firestore.Update{Path: "discount", Value: *update.Discount})
	}
	if update.Stock != nil {
		updates = append(updates, firestore.Update{Path: "stock", Value: *update.Stock})
	}
	if len(updates) == 0 {
		return nil
	}

	return r.mutateProduct(ctx, shopID, productID, "products.update", func(tx *firestore.Transaction, ref *firestore.DocumentRef, _ *productDocument) error {
		return tx.Update(ref, updates)
	})
}

// UpdateVariant merges the provided variant-scope fields by rewriting the
// owning product's variant list.
func (r *ProductRepository) UpdateVariant(ctx context.Context, shopID, productID, variantID string, update repositories.VariantUpdate) error {
	return r.mutateProduct(ctx, shopID, productID, "products.updateVariant", func(tx *firestore.Transaction, ref *firestore.DocumentRef, doc *productDocument) error {
		found := false
		for i := range doc.Variants {
			if doc.Variants[i].VariantID != variantID {
				continue
			}
			found = true
			if update.Size != nil {
				doc.Variants[i].Size = *update.Size
			}
			if update.Color != nil {
				doc.Variants[i].Color = *update.Color
			}
			if update.Material != nil {
				doc.Variants[i].Material = *update.Material
			}
			if update.Price != nil {
				doc.Variants[i].Price = *update.Price
			}
			if update.Stock != nil {
				doc.Variants[i].Stock = *update.Stock
			}
			break
		}
		if !found {
			return status.Errorf(codes.NotFound, "variant %s not found on product %s", variantID, productID)
		}
		return tx.Update(ref, []firestore.Update{{Path: "variants", Value: doc.Variants}})
	})
}

func (r *ProductRepository) mutateProduct(ctx context.Context, shopID, productID, op string, fn func(*firestore.Transaction, *firestore.DocumentRef, *productDocument) error) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	ref := client.Collection(productCollection).Doc(productID)
	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var doc productDocument
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if shopID != "" && doc.ShopID != shopID {
			return status.Errorf(codes.NotFound, "product %s does not belong to shop %s", productID, shopID)
		}
		return fn(tx, ref, &doc)
	})
	if err != nil {
		return pfirestore.WrapError(op, err)
	}
	return nil
}

func decodeProductDocument(snap *firestore.DocumentSnapshot) (domain.Product, error) {
	var doc productDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.Product{}, pfirestore.WrapError("products.decode", err)
	}

	variants := make([]domain.Variant, 0, len(doc.Variants))
	for _, v := range doc.Variants {
		variants = append(variants, domain.Variant{
			ID:       v.VariantID,
			Size:     v.Size,
			Color:    v.Color,
			Material: v.Material,
			Price:    v.Price,
			Stock:    v.Stock,
			ImageURL: v.ImageURL,
		})
	}

	return domain.Product{
		ID:            snap.Ref.ID,
		Name:          doc.Name,
		Description:   doc.Description,
		Discount:      doc.Discount,
		Stock:         doc.Stock,
		Sold:          doc.Sold,
		AverageRating: doc.AverageRating,
		Variants:      variants,
	}, nil
}
