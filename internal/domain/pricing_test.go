package domain

import "testing"

func TestOrderItemLineTotal(t *testing.T) {
	tests := []struct {
		name string
		item OrderItem
		want int64
	}{
		{
			name: "ten percent discount times three",
			item: OrderItem{VariantPrice: 100000, ProductDiscount: 10, Quantity: 3},
			want: 270000,
		},
		{
			name: "no discount",
			item: OrderItem{VariantPrice: 45000, Quantity: 2},
			want: 90000,
		},
		{
			name: "full discount",
			item: OrderItem{VariantPrice: 45000, ProductDiscount: 100, Quantity: 2},
			want: 0,
		},
		{
			name: "discount clamped above hundred",
			item: OrderItem{VariantPrice: 45000, ProductDiscount: 150, Quantity: 2},
			want: 0,
		},
		{
			name: "fractional unit price rounds",
			item: OrderItem{VariantPrice: 999, ProductDiscount: 33, Quantity: 1},
			want: 669,
		},
		{
			name: "zero quantity",
			item: OrderItem{VariantPrice: 100000, ProductDiscount: 10, Quantity: 0},
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.item.LineTotal(); got != tc.want {
				t.Fatalf("LineTotal() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSubOrderTotals(t *testing.T) {
	order := SubOrder{
		ShippingFee: 30000,
		Items: []OrderItem{
			{VariantPrice: 100000, ProductDiscount: 10, Quantity: 3},
			{VariantPrice: 50000, Quantity: 1},
		},
	}

	if got := order.MerchandiseTotal(); got != 320000 {
		t.Fatalf("MerchandiseTotal() = %d, want 320000", got)
	}
	if got := order.GrandTotal(); got != 350000 {
		t.Fatalf("GrandTotal() = %d, want 350000", got)
	}
}

func TestParseSubOrderStatus(t *testing.T) {
	if status, ok := ParseSubOrderStatus(" Processing "); !ok || status != StatusProcessing {
		t.Fatalf("ParseSubOrderStatus(Processing) = %q, %v", status, ok)
	}
	if _, ok := ParseSubOrderStatus("returned"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if !StatusDelivered.Terminal() || !StatusCancelled.Terminal() {
		t.Fatal("delivered and cancelled must be terminal")
	}
	if StatusPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
}

func TestShippingAddress(t *testing.T) {
	order := SubOrder{
		AddressLine: "12 Ly Thuong Kiet",
		Ward:        "Ward 7",
		District:    "",
		Province:    "Da Nang",
	}
	if got := order.ShippingAddress(); got != "12 Ly Thuong Kiet, Ward 7, Da Nang" {
		t.Fatalf("ShippingAddress() = %q", got)
	}
}
