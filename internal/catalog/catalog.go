// Package catalog holds the requirement catalog: the versioned table mapping
// each checklist item to the document types it needs before it can be evaluated.
// The catalog is parsed and validated once at startup and is read-only afterwards.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"registrum/internal/domain"
)

//go:embed checklist.yaml
var embeddedChecklist []byte

// categorySizes is the number of items per category in the accompanying checklist.
var categorySizes = []struct {
	Category domain.Category
	Prefix   string
	Count    int
}{
	{domain.CategoryPrenotacao, "item", 13},
	{domain.CategoryTitulo, "itemT", 27},
	{domain.CategoryConferencia, "itemC", 22},
	{domain.CategoryRegistro, "itemR", 12},
}

// Checklist returns the item IDs of the checklist the embedded catalog must cover, in order.
func Checklist() []string {
	var ids []string
	for _, c := range categorySizes {
		for i := 1; i <= c.Count; i++ {
			ids = append(ids, fmt.Sprintf("%s%d", c.Prefix, i))
		}
	}
	return ids
}

type file struct {
	Version string                 `yaml:"version"`
	Items   []domain.ChecklistItem `yaml:"items"`
}

// Catalog is an immutable, validated requirement catalog.
type Catalog struct {
	version string
	items   []domain.ChecklistItem
	index   map[string]int
}

// Load parses the embedded checklist and validates it against Checklist().
func Load() (*Catalog, error) {
	return Parse(embeddedChecklist, Checklist())
}

// Parse decodes a catalog document and validates it. When checklist is non-nil
// the catalog must contain exactly those item IDs.
func Parse(data []byte, checklist []string) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decoding catalog: %v", domain.ErrCatalogMisconfigured, err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%w: missing version", domain.ErrCatalogMisconfigured)
	}

	c := &Catalog{
		version: f.Version,
		items:   f.Items,
		index:   make(map[string]int, len(f.Items)),
	}
	for i := range c.items {
		item := &c.items[i]
		if err := validateItem(item); err != nil {
			return nil, err
		}
		if _, dup := c.index[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q", domain.ErrCatalogMisconfigured, item.ID)
		}
		if item.RequiredTypes == nil {
			item.RequiredTypes = []domain.DocumentType{}
		}
		c.index[item.ID] = i
	}

	if checklist != nil {
		if err := c.Validate(checklist); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func validateItem(item *domain.ChecklistItem) error {
	if item.ID == "" {
		return fmt.Errorf("%w: item without id", domain.ErrCatalogMisconfigured)
	}
	if !domain.ValidCategories[item.Category] {
		return fmt.Errorf("%w: item %s has unknown category %q", domain.ErrCatalogMisconfigured, item.ID, item.Category)
	}
	if item.Question == "" {
		return fmt.Errorf("%w: item %s has no question", domain.ErrCatalogMisconfigured, item.ID)
	}
	seen := make(map[domain.DocumentType]bool, len(item.RequiredTypes))
	for _, t := range item.RequiredTypes {
		if !t.IsKnown() || t == domain.DocTypeUnknown {
			return fmt.Errorf("%w: item %s requires unknown document type %q", domain.ErrCatalogMisconfigured, item.ID, t)
		}
		if seen[t] {
			return fmt.Errorf("%w: item %s lists %s twice", domain.ErrCatalogMisconfigured, item.ID, t)
		}
		seen[t] = true
	}
	return nil
}

// Validate checks that the catalog covers exactly the given checklist item IDs.
func (c *Catalog) Validate(checklist []string) error {
	want := make(map[string]bool, len(checklist))
	for _, id := range checklist {
		want[id] = true
		if _, ok := c.index[id]; !ok {
			return fmt.Errorf("%w: checklist item %s has no catalog entry", domain.ErrCatalogMisconfigured, id)
		}
	}
	for _, item := range c.items {
		if !want[item.ID] {
			return fmt.Errorf("%w: catalog entry %s is not part of the checklist", domain.ErrCatalogMisconfigured, item.ID)
		}
	}
	return nil
}

// WithMandatory returns a copy of the catalog whose mandatory flags are exactly ids.
// An empty list returns the catalog unchanged.
func (c *Catalog) WithMandatory(ids []string) (*Catalog, error) {
	if len(ids) == 0 {
		return c, nil
	}
	mandatory := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.index[id]; !ok {
			return nil, fmt.Errorf("%w: mandatory item %s is not in the catalog", domain.ErrCatalogMisconfigured, id)
		}
		mandatory[id] = true
	}
	out := &Catalog{
		version: c.version,
		items:   c.Items(),
		index:   c.index,
	}
	for i := range out.items {
		out.items[i].Mandatory = mandatory[out.items[i].ID]
	}
	return out, nil
}

// Version returns the catalog version string.
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns a copy of the items in catalog order.
func (c *Catalog) Items() []domain.ChecklistItem {
	out := make([]domain.ChecklistItem, len(c.items))
	for i, item := range c.items {
		item.RequiredTypes = slices.Clone(item.RequiredTypes)
		out[i] = item
	}
	return out
}

// Item looks up a single item by ID.
func (c *Catalog) Item(id string) (domain.ChecklistItem, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.ChecklistItem{}, false
	}
	item := c.items[i]
	item.RequiredTypes = slices.Clone(item.RequiredTypes)
	return item, true
}
