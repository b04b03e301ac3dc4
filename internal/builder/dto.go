package builder

import (
	"math"

	"github.com/salesdesk/salesdesk/internal/cart"
	"github.com/salesdesk/salesdesk/internal/catalog"
	"github.com/salesdesk/salesdesk/internal/rbac"
)

// UpdateItemRequest edits one field of a cart line.
type UpdateItemRequest struct {
	Field string   `json:"field" validate:"required,oneof=quantity unit_price line_discount_percent"`
	Value *float64 `json:"value" validate:"required"`
}

// DiscountRequest sets the cart-level discount percentage.
type DiscountRequest struct {
	Percent *float64 `json:"percent" validate:"required"`
}

// CategoryRequest toggles one category in the catalog filter.
type CategoryRequest struct {
	Category string `json:"category" validate:"required,max=200"`
}

// SearchRequest replaces the catalog search term. An empty term clears it.
type SearchRequest struct {
	Term string `json:"term" validate:"max=200"`
}

// ProductView is a visible catalog product flagged when it is already in the cart.
type ProductView struct {
	catalog.Product
	InCart bool `json:"in_cart"`
}

// LineView is a cart line with its position and discounted amount.
type LineView struct {
	cart.Line
	Index        int     `json:"index"`
	LineSubtotal float64 `json:"line_subtotal"`
}

// Snapshot is the read-only view of a cart returned after every request.
type Snapshot struct {
	CartID              string            `json:"cart_id"`
	Mode                cart.Mode         `json:"mode"`
	Capabilities        rbac.Capabilities `json:"capabilities"`
	Search              string            `json:"search"`
	SelectedCategories  []string          `json:"selected_categories"`
	Categories          []string          `json:"categories"`
	Products            []ProductView     `json:"products"`
	Lines               []LineView        `json:"lines"`
	CartDiscountPercent float64           `json:"cart_discount_percent"`
	Totals              cart.Totals       `json:"totals"`
}

func newSnapshot(id string, mode cart.Mode, caps rbac.Capabilities, e *cart.Engine) Snapshot {
	lines := e.Lines()
	inCart := make(map[int64]struct{}, len(lines))
	lineViews := make([]LineView, 0, len(lines))
	for i, l := range lines {
		inCart[l.ProductID] = struct{}{}
		lineViews = append(lineViews, LineView{Line: l, Index: i, LineSubtotal: cart.LineSubtotal(l)})
	}
	visible := e.Visible()
	products := make([]ProductView, 0, len(visible))
	for _, p := range visible {
		_, ok := inCart[p.ID]
		products = append(products, ProductView{Product: p, InCart: ok})
	}
	return Snapshot{
		CartID:              id,
		Mode:                mode,
		Capabilities:        caps,
		Search:              e.SearchTerm(),
		SelectedCategories:  e.SelectedCategories(),
		Categories:          e.Categories(),
		Products:            products,
		Lines:               lineViews,
		CartDiscountPercent: e.CartDiscountPercent(),
		Totals:              e.Totals(),
	}
}

// maxQuantity bounds a line quantity so it always fits the engine's int.
const maxQuantity = math.MaxInt32

// clampValue brings an edited line value into range before it reaches the engine.
func clampValue(field cart.Field, v float64) float64 {
	switch field {
	case cart.FieldQuantity:
		v = math.Floor(v)
		if v < 1 {
			return 1
		}
		return math.Min(v, maxQuantity)
	case cart.FieldUnitPrice:
		return math.Max(v, 0)
	case cart.FieldDiscountPercent:
		return clampPercent(v)
	}
	return v
}

func clampPercent(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}
