package domain

import "math"

// LineTotal returns the discounted price for the full quantity of the item:
// variant price reduced by the product discount percentage, times quantity.
func (i OrderItem) LineTotal() int64 {
	if i.Quantity <= 0 || i.VariantPrice <= 0 {
		return 0
	}
	discount := i.ProductDiscount
	if discount < 0 {
		discount = 0
	}
	if discount > 100 {
		discount = 100
	}
	unit := float64(i.VariantPrice) * (1 - discount/100)
	return int64(math.Round(unit * float64(i.Quantity)))
}

// MerchandiseTotal sums the line totals of all items, excluding shipping.
func (o SubOrder) MerchandiseTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// GrandTotal is the merchandise total plus the shipping fee.
func (o SubOrder) GrandTotal() int64 {
	return o.MerchandiseTotal() + o.ShippingFee
}
