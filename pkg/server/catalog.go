package server

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type Item struct {
	ID       int
	Name     string
	Category string
	Price    int
}

// Catalog is the in-memory item list served by the demo list server.
type Catalog struct {
	Items      []Item
	Categories []string
}

// NewCatalog creates size items spread over categories with deterministic names and prices.
func NewCatalog(size int, categories ...string) *Catalog {
	if len(categories) == 0 {
		categories = []string{"books", "games", "tools"}
	}
	c := &Catalog{Categories: categories, Items: make([]Item, 0, size)}
	for i := 1; i <= size; i++ {
		category := categories[(i-1)%len(categories)]
		c.Items = append(c.Items, Item{
			ID:       i,
			Name:     fmt.Sprintf("%s %02d", category, i),
			Category: category,
			Price:    (i*37)%100 + 1,
		})
	}
	return c
}

// Find returns the items of the requested page and the number of matching items.
func (c *Catalog) Find(req *ListRequest) ([]Item, int) {
	query := strings.ToLower(req.Query)
	matching := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if req.Category != "" && item.Category != req.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		matching = append(matching, item)
	}
	slices.SortStableFunc(matching, func(a, b Item) int {
		if req.Sort == "price" {
			if n := cmp.Compare(a.Price, b.Price); n != 0 {
				return n
			}
		}
		return cmp.Compare(a.Name, b.Name)
	})
	start := min((req.Page-1)*req.Limit, len(matching))
	end := min(start+req.Limit, len(matching))
	return matching[start:end], len(matching)
}

// Pages returns the page count for total items.
func Pages(total, limit int) int {
	if total == 0 || limit < 1 {
		return 1
	}
	return (total + limit - 1) / limit
}
