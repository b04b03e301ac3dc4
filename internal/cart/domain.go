// Package cart is the pricing engine behind the order and estimate builder.
//
// The engine owns the line items, per-line and cart-level discounts, and the
// operator's catalog view (search term and selected categories). Totals and
// the visible catalog are derived on every read and never stored.
//
// Engine methods never fail. Stale indexes and unknown product IDs are ignored,
// and numeric inputs are taken as given: clamping quantity, price and discount
// percentages into range is the caller's responsibility.
package cart

// Line is one product's entry in the cart.
type Line struct {
	ProductID           int64   `json:"product_id"`
	ProductName         string  `json:"product_name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	LineDiscountPercent float64 `json:"line_discount_percent"`
}

// Field names an editable Line attribute.
type Field string

const (
	FieldQuantity        Field = "quantity"
	FieldUnitPrice       Field = "unit_price"
	FieldDiscountPercent Field = "line_discount_percent"
)

// Valid reports whether f names an editable attribute.
func (f Field) Valid() bool {
	switch f {
	case FieldQuantity, FieldUnitPrice, FieldDiscountPercent:
		return true
	}
	return false
}

// Totals are derived from the cart state. Subtotal is the sum of lines AFTER
// line discounts; DiscountAmount is the cart-level discount taken from it.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalTotal     float64 `json:"final_total"`
}

// Draft is the complete engine state, suitable for storing between requests.
type Draft struct {
	Lines               []Line   `json:"lines"`
	CartDiscountPercent float64  `json:"cart_discount_percent"`
	Search              string   `json:"search"`
	Categories          []string `json:"categories"`
}

// Checkout is handed to whatever saves the finished order or estimate.
type Checkout struct {
	Lines               []Line  `json:"lines"`
	CartDiscountPercent float64 `json:"cart_discount_percent"`
	FinalTotal          float64 `json:"final_total"`
	Mode                Mode    `json:"mode"`
}
