package catalog

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var propertyCategories = []string{"Electronics", "Clothing", "Food", "Tools"}

func buildProducts(names []string, picks []int) []Product {
	products := make([]Product, 0, len(names))
	for i, name := range names {
		category := propertyCategories[0]
		if i < len(picks) {
			category = propertyCategories[picks[i]%len(propertyCategories)]
		}
		products = append(products, Product{ID: int64(i + 1), Name: name, Category: category})
	}
	return products
}

func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("filter is deterministic", prop.ForAll(
		func(names []string, picks []int, search string) bool {
			products := buildProducts(names, picks)
			q := Query{Search: search, InCart: map[int64]struct{}{1: {}}}
			a := Filter(products, q)
			b := Filter(products, q)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.AlphaString(),
	))

	properties.Property("every visible product satisfies both predicates", prop.ForAll(
		func(names []string, picks []int, search string, pick int) bool {
			products := buildProducts(names, picks)
			category := propertyCategories[pick%len(propertyCategories)]
			q := Query{Search: search, Categories: map[string]struct{}{category: {}}}
			for _, p := range Filter(products, q) {
				if p.Category != category {
					return false
				}
				if !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.AlphaString(),
		gen.IntRange(0, 10),
	))

	properties.Property("cart products form a prefix and each group keeps catalog order", prop.ForAll(
		func(names []string, inCart []int) bool {
			products := buildProducts(names, nil)
			q := Query{InCart: make(map[int64]struct{})}
			for _, id := range inCart {
				q.InCart[int64(id)] = struct{}{}
			}
			got := Filter(products, q)
			if len(got) != len(products) {
				return false
			}
			seenRest := false
			var lastCart, lastRest int64
			for _, p := range got {
				_, ok := q.InCart[p.ID]
				if ok {
					if seenRest || p.ID < lastCart {
						return false
					}
					lastCart = p.ID
					continue
				}
				if p.ID < lastRest {
					return false
				}
				seenRest = true
				lastRest = p.ID
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.Property("category universe ignores the query", prop.ForAll(
		func(names []string, picks []int, search string) bool {
			c := Load(buildProducts(names, picks))
			before := c.Categories()
			_ = c.Visible(Query{Search: search, Categories: map[string]struct{}{"Food": {}}})
			after := c.Categories()
			if len(before) != len(after) {
				return false
			}
			for i := range before {
				if before[i] != after[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
