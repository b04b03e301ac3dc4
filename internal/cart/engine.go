package cart

import (
	"sort"

	"github.com/salesdesk/salesdesk/internal/catalog"
)

// Engine holds one in-progress cart. It is not safe for concurrent use;
// hosts serialize access per cart.
type Engine struct {
	catalog      *catalog.Catalog
	lines        []Line
	cartDiscount float64
	search       string
	categories   map[string]struct{}
}

// New returns an empty engine over the given catalog.
func New(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c, categories: make(map[string]struct{})}
}

// Restore rebuilds an engine from a stored draft.
func Restore(c *catalog.Catalog, d Draft) *Engine {
	e := New(c)
	e.lines = append(e.lines, d.Lines...)
	e.cartDiscount = d.CartDiscountPercent
	e.search = d.Search
	for _, category := range d.Categories {
		e.categories[category] = struct{}{}
	}
	return e
}

// Draft snapshots the engine state.
func (e *Engine) Draft() Draft {
	return Draft{
		Lines:               e.Lines(),
		CartDiscountPercent: e.cartDiscount,
		Search:              e.search,
		Categories:          e.SelectedCategories(),
	}
}

// ToggleProduct adds p with quantity 1, or bumps the quantity of its existing
// line. Stock levels are not checked.
func (e *Engine) ToggleProduct(p catalog.Product) {
	if i := e.find(p.ID); i >= 0 {
		e.lines[i].Quantity++
		return
	}
	e.lines = append(e.lines, Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    1,
		UnitPrice:   p.UnitPrice,
	})
}

// ToggleProductID looks the product up in the catalog and toggles it. It
// reports false, leaving the cart untouched, when the catalog lacks the ID.
func (e *Engine) ToggleProductID(id int64) bool {
	p, ok := e.catalog.Lookup(id)
	if !ok {
		return false
	}
	e.ToggleProduct(p)
	return true
}

// UpdateItem writes value into field of the line at index. Out-of-range
// indexes and unknown fields are ignored. A quantity of zero keeps the line;
// use RemoveItem to drop it.
func (e *Engine) UpdateItem(index int, field Field, value float64) {
	if index < 0 || index >= len(e.lines) {
		return
	}
	l := &e.lines[index]
	switch field {
	case FieldQuantity:
		l.Quantity = int(value)
	case FieldUnitPrice:
		l.UnitPrice = value
	case FieldDiscountPercent:
		l.LineDiscountPercent = value
	}
}

// RemoveItem deletes the line for productID if present.
func (e *Engine) RemoveItem(productID int64) {
	i := e.find(productID)
	if i < 0 {
		return
	}
	e.lines = append(e.lines[:i:i], e.lines[i+1:]...)
}

// SetOverallDiscount sets the cart-level discount percentage.
func (e *Engine) SetOverallDiscount(percent float64) {
	e.cartDiscount = percent
}

// ToggleCategory adds category to the selection, or removes it if selected.
func (e *Engine) ToggleCategory(category string) {
	if _, ok := e.categories[category]; ok {
		delete(e.categories, category)
		return
	}
	e.categories[category] = struct{}{}
}

// SetSearchTerm replaces the catalog search term.
func (e *Engine) SetSearchTerm(term string) {
	e.search = term
}

// Clear empties the cart and resets the cart discount. The catalog view is kept.
func (e *Engine) Clear() {
	e.lines = nil
	e.cartDiscount = 0
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []Line {
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

// CartDiscountPercent returns the cart-level discount.
func (e *Engine) CartDiscountPercent() float64 {
	return e.cartDiscount
}

// SearchTerm returns the current search term.
func (e *Engine) SearchTerm() string {
	return e.search
}

// SelectedCategories returns the selected categories sorted by name.
func (e *Engine) SelectedCategories() []string {
	out := make([]string, 0, len(e.categories))
	for category := range e.categories {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Categories returns every selectable category of the catalog.
func (e *Engine) Categories() []string {
	return e.catalog.Categories()
}

// Visible returns the filtered, cart-first product list.
func (e *Engine) Visible() []catalog.Product {
	inCart := make(map[int64]struct{}, len(e.lines))
	for _, l := range e.lines {
		inCart[l.ProductID] = struct{}{}
	}
	return e.catalog.Visible(catalog.Query{
		Search:     e.search,
		Categories: e.categories,
		InCart:     inCart,
	})
}

// Totals computes subtotal, cart discount and final total from current state.
func (e *Engine) Totals() Totals {
	return ComputeTotals(e.lines, e.cartDiscount)
}

// Checkout builds the handoff for saving the cart under mode.
func (e *Engine) Checkout(mode Mode) Checkout {
	return Checkout{
		Lines:               e.Lines(),
		CartDiscountPercent: e.cartDiscount,
		FinalTotal:          e.Totals().FinalTotal,
		Mode:                mode,
	}
}

func (e *Engine) find(productID int64) int {
	for i, l := range e.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
