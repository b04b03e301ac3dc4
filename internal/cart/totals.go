package cart

// LineSubtotal is the line amount after its own discount.
func LineSubtotal(l Line) float64 {
	return l.UnitPrice * float64(l.Quantity) * (1 - l.LineDiscountPercent/100)
}

// ComputeTotals applies line discounts first, then the cart discount to the
// already discounted subtotal.
func ComputeTotals(lines []Line, cartDiscountPercent float64) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += LineSubtotal(l)
	}
	discount := subtotal * cartDiscountPercent / 100
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		FinalTotal:     subtotal - discount,
	}
}
