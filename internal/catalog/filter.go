package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Query describes the operator's current view over the catalog.
type Query struct {
	// Search is matched case-insensitively as a substring of the product name.
	Search string
	// Categories restricts the view when non-empty.
	Categories map[string]struct{}
	// InCart holds the product IDs already in the cart; they sort first.
	InCart map[int64]struct{}
}

// Visible applies q to the catalog.
func (c *Catalog) Visible(q Query) []Product {
	if c == nil {
		return []Product{}
	}
	return Filter(c.products, q)
}

// Filter returns the products matching q: category AND name predicates, with
// in-cart products moved ahead of the rest. Both groups keep catalog order.
func Filter(products []Product, q Query) []Product {
	fold := cases.Fold()
	needle := fold.String(q.Search)

	inCart := make([]Product, 0, len(q.InCart))
	rest := make([]Product, 0, len(products))
	for _, p := range products {
		if len(q.Categories) > 0 {
			if _, ok := q.Categories[p.Category]; !ok {
				continue
			}
		}
		if needle != "" && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		if _, ok := q.InCart[p.ID]; ok {
			inCart = append(inCart, p)
			continue
		}
		rest = append(rest, p)
	}
	return append(inCart, rest...)
}
