// Package checklist is the enumerated registry of every field and checklist item
// an inspection request can carry.
//
// Renderers, layouts and templates refer to entries by their stable identifier.
// Anything that names an identifier the registry does not know is rejected before
// a submission is accepted.
package checklist

import (
	"fmt"
	"sort"
	"strings"
)

// Identity and derived text fields.
const (
	FieldUnitName       = "unit_name"
	FieldUnitNum        = "unit_num"
	FieldTenant         = "tenant"
	FieldSerialNo       = "serial_no"
	FieldInspectionDate = "inspection_date"
	FieldEmail          = "email"

	// FieldDate is derived from FieldInspectionDate as YYYY-MM-DD.
	FieldDate = "date"
)

// DateLayout is the format of every rendered date.
const DateLayout = "2006-01-02"

// ItemPrefix prefixes every checklist item identifier.
const ItemPrefix = "chk_"

// Field is a text field of the form.
type Field struct {
	ID      string
	Label   string
	Derived bool
}

// Category groups checklist items on the form.
type Category struct {
	ID     string
	Title  string
	Groups []Group
}

// Group is a sub-heading within a category. The zero Group is the category itself.
type Group struct {
	ID    string
	Title string
	Items []Item
}

// Item is a single boolean checklist entry.
type Item struct {
	ID       string
	Label    string
	Category string
	Group    string
}

// Registry indexes fields and checklist items by identifier.
type Registry struct {
	fields     []Field
	categories []Category
	items      []Item
	index      map[string]kind
}

type kind int

const (
	kindField kind = iota + 1
	kindItem
)

// New builds a registry from fields and categories. Identifiers must be unique and
// every item identifier must carry ItemPrefix.
func New(fields []Field, categories []Category) (*Registry, error) {
	r := &Registry{
		fields:     fields,
		categories: categories,
		index:      make(map[string]kind),
	}
	for _, f := range fields {
		if f.ID == "" {
			return nil, fmt.Errorf("field with label %q has no identifier", f.Label)
		}
		if _, dup := r.index[f.ID]; dup {
			return nil, fmt.Errorf("duplicate identifier %q", f.ID)
		}
		r.index[f.ID] = kindField
	}
	for ci := range categories {
		c := &categories[ci]
		for gi := range c.Groups {
			g := &c.Groups[gi]
			for ii := range g.Items {
				it := &g.Items[ii]
				if !strings.HasPrefix(it.ID, ItemPrefix) {
					return nil, fmt.Errorf("checklist item %q must start with %q", it.ID, ItemPrefix)
				}
				if _, dup := r.index[it.ID]; dup {
					return nil, fmt.Errorf("duplicate identifier %q", it.ID)
				}
				it.Category = c.ID
				it.Group = g.ID
				r.index[it.ID] = kindItem
				r.items = append(r.items, *it)
			}
		}
	}
	return r, nil
}

// Fields returns the text fields in form order.
func (r *Registry) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Categories returns the checklist categories in form order.
func (r *Registry) Categories() []Category {
	return append([]Category(nil), r.categories...)
}

// Items returns every checklist item in form order.
func (r *Registry) Items() []Item {
	return append([]Item(nil), r.items...)
}

// Item looks up a checklist item.
func (r *Registry) Item(id string) (Item, bool) {
	if r.index[id] != kindItem {
		return Item{}, false
	}
	for _, it := range r.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// IsField reports whether id names a text field.
func (r *Registry) IsField(id string) bool { return r.index[id] == kindField }

// IsItem reports whether id names a checklist item.
func (r *Registry) IsItem(id string) bool { return r.index[id] == kindItem }

// Known reports whether id names any registry entry.
func (r *Registry) Known(id string) bool { return r.index[id] != 0 }

// Coverage is the result of checking a set of identifiers against the registry.
type Coverage struct {
	// Unknown lists identifiers the registry does not define.
	Unknown []string
	// Unplaced lists checklist items missing from the checked set.
	Unplaced []string
}

// Check compares ids, as used by a layout or a template, with the registry.
func (r *Registry) Check(ids []string) Coverage {
	var cov Coverage
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
		if !r.Known(id) {
			cov.Unknown = append(cov.Unknown, id)
		}
	}
	for _, it := range r.items {
		if !seen[it.ID] {
			cov.Unplaced = append(cov.Unplaced, it.ID)
		}
	}
	sort.Strings(cov.Unknown)
	return cov
}

// Err returns an error describing the coverage problems. Unplaced items are only an
// error when allowUnplaced is false.
func (c Coverage) Err(allowUnplaced bool) error {
	var parts []string
	if len(c.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown identifiers: %s", strings.Join(c.Unknown, ", ")))
	}
	if len(c.Unplaced) > 0 && !allowUnplaced {
		parts = append(parts, fmt.Sprintf("checklist items without a mapping: %s", strings.Join(c.Unplaced, ", ")))
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}
