// Package catalog exposes the product catalog operators browse while building
// an order or estimate, together with the filter and sort stage that decides
// which products are visible and in what order.
package catalog

// Product is a read-only catalog entry.
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	AvailableQty float64 `json:"available_qty"`
	Category     string  `json:"category"`
}

// Catalog is a loaded product list plus the category universe derived from it.
type Catalog struct {
	products   []Product
	categories []string
	index      map[int64]int
}

// Load builds a Catalog from products. Categories are computed here, once,
// from the full list and keep their first-appearance order.
func Load(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, len(products)),
		index:    make(map[int64]int, len(products)),
	}
	copy(c.products, products)
	seen := make(map[string]struct{})
	for i, p := range c.products {
		if _, ok := c.index[p.ID]; !ok {
			c.index[p.ID] = i
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		c.categories = append(c.categories, p.Category)
	}
	return c
}

// Categories returns the selectable categories.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Lookup finds a product by ID.
func (c *Catalog) Lookup(id int64) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Len reports the number of products in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
