// Package catalog holds the immutable region -> weighted item pools that
// draws are made from.
package catalog

import (
	"fmt"
	"strings"

	"github.com/okian/dailyboss/internal/domain/model"
)

// Region is an ordered pool of items sharing a region label.
type Region struct {
	Name  string
	Items []model.Item
}

// Catalog is a read-only, ordered set of items grouped by region.
// Accessors return copies; a Catalog is safe to share.
type Catalog struct {
	regions []Region
	items   []model.Item
	byName  map[string]int
}

// New validates regions and builds a Catalog. Item.Region is filled from the
// enclosing region. Duplicate item names are allowed; Lookup returns the
// first one in catalog order.
func New(regions []Region) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int)}
	for _, r := range regions {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: region without a name", ErrInvalidCatalog)
		}
		region := Region{Name: name, Items: make([]model.Item, 0, len(r.Items))}
		for _, it := range r.Items {
			it.Name = strings.TrimSpace(it.Name)
			if it.Name == "" {
				return nil, fmt.Errorf("%w: unnamed item in region %q", ErrInvalidCatalog, name)
			}
			if it.Weight <= 0 {
				return nil, fmt.Errorf("%w: item %q has weight %d", ErrInvalidCatalog, it.Name, it.Weight)
			}
			it.Region = name
			region.Items = append(region.Items, it)
			if _, seen := c.byName[it.Name]; !seen {
				c.byName[it.Name] = len(c.items)
			}
			c.items = append(c.items, it)
		}
		c.regions = append(c.regions, region)
	}
	if len(c.items) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Items returns every item in catalog order.
func (c *Catalog) Items() []model.Item {
	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Regions returns region names in catalog order.
func (c *Catalog) Regions() []string {
	out := make([]string, len(c.regions))
	for i, r := range c.regions {
		out[i] = r.Name
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Lookup finds an item by name.
func (c *Catalog) Lookup(name string) (model.Item, bool) {
	i, ok := c.byName[name]
	if !ok {
		return model.Item{}, false
	}
	return c.items[i], true
}

// TotalWeight sums the weights of all items.
func (c *Catalog) TotalWeight() int {
	total := 0
	for _, it := range c.items {
		total += it.Weight
	}
	return total
}
