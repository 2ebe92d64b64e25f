package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/marketbloc/vendor-api/internal/domain"
	pfirestore "github.com/marketbloc/vendor-api/internal/platform/firestore"
	"github.com/marketbloc/vendor-api/internal/repositories"
)

const (
	subOrderCollection = "suborders"

	// Firestore transactions cap at 500 writes.
	maxBulkTransition = 500
)

// SubOrderRepository is the Firestore-backed sub-order store.
//
// Documents carry a searchTokens array (lowercased recipient name words,
// phone, and sub-order number) written at checkout time, which backs the
// free-text search filter via array-contains.
type SubOrderRepository struct {
	provider *pfirestore.Provider
}

// NewSubOrderRepository constructs a Firestore-backed sub-order repository.
func NewSubOrderRepository(provider *pfirestore.Provider) (*SubOrderRepository, error) {
	if provider == nil {
		return nil, errors.New("suborder repository requires firestore provider")
	}
	return &SubOrderRepository{provider: provider}, nil
}

type orderItemDocument struct {
	ItemID          string  `firestore:"itemId"`
	ProductID       string  `firestore:"productId"`
	VariantID       string  `firestore:"variantId"`
	Quantity        int     `firestore:"quantity"`
	VariantPrice    int64   `firestore:"variantPrice"`
	ProductDiscount float64 `firestore:"productDiscount"`
}

type subOrderDocument struct {
	ShopID         string              `firestore:"shopId"`
	Status         string              `firestore:"status"`
	RecipientName  string              `firestore:"recipientName"`
	RecipientPhone string              `firestore:"recipientPhone"`
	AddressLine    string              `firestore:"addressLine"`
	Ward           string              `firestore:"ward"`
	District       string              `firestore:"district"`
	Province       string              `firestore:"province"`
	ShippingFee    int64               `firestore:"shippingFee"`
	Note           string              `firestore:"note"`
	Items          []orderItemDocument `firestore:"items"`
	SearchTokens   []string            `firestore:"searchTokens"`
	CreatedAt      time.Time           `firestore:"createdAt"`
	UpdatedAt      time.Time           `firestore:"updatedAt"`
}

// List returns matching sub-orders newest first plus the total match count.
func (r *SubOrderRepository) List(ctx context.Context, filter repositories.SubOrderListFilter) ([]domain.SubOrder, int64, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := buildSubOrderQuery(client.Collection(subOrderCollection), filter)

	total, err := countSubOrders(ctx, query)
	if err != nil {
		return nil, 0, pfirestore.WrapError("suborders.count", err)
	}

	query = query.OrderBy("createdAt", firestore.Desc)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var orders []domain.SubOrder
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, 0, pfirestore.WrapError("suborders.list", err)
		}
		order, err := decodeSubOrderDocument(snap)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}

	return orders, total, nil
}

// FindByID loads a single sub-order scoped to a shop.
func (r *SubOrderRepository) FindByID(ctx context.Context, shopID, subOrderID string) (domain.SubOrder, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.SubOrder{}, err
	}

	snap, err := client.Collection(subOrderCollection).Doc(subOrderID).Get(ctx)
	if err != nil {
		return domain.SubOrder{}, pfirestore.WrapError("suborders.find", err)
	}

	order, err := decodeSubOrderDocument(snap)
	if err != nil {
		return domain.SubOrder{}, err
	}
	if shopID != "" && order.ShopID != shopID {
		return domain.SubOrder{}, pfirestore.NotFoundError("suborders.find", fmt.Errorf("sub-order %s does not belong to shop %s", subOrderID, shopID))
	}
	return order, nil
}

// UpdateStatus transitions a single sub-order to the given status.
func (r *SubOrderRepository) UpdateStatus(ctx context.Context, shopID, subOrderID string, next domain.SubOrderStatus, at time.Time) error {
	affected, err := r.BulkUpdateStatus(ctx, shopID, []string{subOrderID}, next, at)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pfirestore.NotFoundError("suborders.updateStatus", fmt.Errorf("sub-order %s not found", subOrderID))
	}
	return nil
}

// BulkUpdateStatus transitions every listed sub-order in one Firestore
// transaction. Ids that do not exist, or belong to another shop, are skipped
// and excluded from the affected count.
func (r *SubOrderRepository) BulkUpdateStatus(ctx context.Context, shopID string, subOrderIDs []string, next domain.SubOrderStatus, at time.Time) (int, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return 0, err
	}
	if len(subOrderIDs) == 0 {
		return 0, nil
	}
	if len(subOrderIDs) > maxBulkTransition {
		return 0, pfirestore.WrapError("suborders.bulkUpdateStatus",
			status.Errorf(codes.OutOfRange, "bulk transition limited to %d sub-orders, got %d", maxBulkTransition, len(subOrderIDs)))
	}

	coll := client.Collection(subOrderCollection)
	affected := 0

	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		affected = 0

		// All reads must happen before the first write.
		refs := make([]*firestore.DocumentRef, 0, len(subOrderIDs))
		for _, id := range subOrderIDs {
			ref := coll.Doc(id)
			snap, err := tx.Get(ref)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					continue
				}
				return err
			}
			if shopID != "" {
				owner, err := snap.DataAt("shopId")
				if err != nil || owner != shopID {
					continue
				}
			}
			refs = append(refs, ref)
		}

		for _, ref := range refs {
			if err := tx.Update(ref, []firestore.Update{
				{Path: "status", Value: string(next)},
				{Path: "updatedAt", Value: at.UTC()},
			}); err != nil {
				return err
			}
		}

		affected = len(refs)
		return nil
	})
	if err != nil {
		return 0, pfirestore.WrapError("suborders.bulkUpdateStatus", err)
	}

	return affected, nil
}

func buildSubOrderQuery(coll *firestore.CollectionRef, filter repositories.SubOrderListFilter) firestore.Query {
	query := coll.Query
	if filter.ShopID != "" {
		query = query.Where("shopId", "==", filter.ShopID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		query = query.Where("searchTokens", "array-contains", term)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("createdAt", ">=", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		query = query.Where("createdAt", "<", filter.CreatedTo.UTC())
	}
	return query
}

func countSubOrders(ctx context.Context, query firestore.Query) (int64, error) {
	results, err := query.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	raw, ok := results["total"]
	if !ok {
		return 0, errors.New("aggregation result missing count")
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregation value type %T", raw)
	}
	return value.GetIntegerValue(), nil
}

func decodeSubOrderDocument(snap *firestore.DocumentSnapshot) (domain.SubOrder, error) {
	var doc subOrderDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.SubOrder{}, pfirestore.WrapError("suborders.decode", err)
	}

	items := make([]domain.OrderItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.OrderItem{
			ID:              item.ItemID,
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			VariantPrice:    item.VariantPrice,
			ProductDiscount: item.ProductDiscount,
		})
	}

	return domain.SubOrder{
		ID:             snap.Ref.ID,
		ShopID:         doc.ShopID,
		Status:         domain.SubOrderStatus(doc.Status),
		RecipientName:  doc.RecipientName,
		RecipientPhone: doc.RecipientPhone,
		AddressLine:    doc.AddressLine,
		Ward:           doc.Ward,
		District:       doc.District,
		Province:       doc.Province,
		ShippingFee:    doc.ShippingFee,
		Note:           doc.Note,
		Items:          items,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}
