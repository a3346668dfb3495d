// Package layout holds the fixed coordinate table used to stamp form data onto the
// static inspection request template.
package layout

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

// Point is a text baseline position in points from the top-left corner of the page.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// FieldPoint places a text field value. LabelX is where the static template prints
// the field label on the same baseline.
type FieldPoint struct {
	Point  `yaml:",inline"`
	LabelX float64 `yaml:"label_x"`
}

// PageSize is the page geometry in points.
type PageSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Font names a core PDF font.
type Font struct {
	Family string  `yaml:"family"`
	Size   float64 `yaml:"size"`
}

// Mark is the glyph drawn for a checked flag.
type Mark struct {
	Font  string  `yaml:"font"`
	Glyph string  `yaml:"glyph"`
	Size  float64 `yaml:"size"`
}

// Layout maps registry identifiers to page positions.
type Layout struct {
	Page     PageSize              `yaml:"page"`
	Font     Font                  `yaml:"font"`
	Mark     Mark                  `yaml:"mark"`
	Fields   map[string]FieldPoint `yaml:"fields"`
	Headings map[string]Point      `yaml:"headings"`
	Flags    map[string]Point      `yaml:"flags"`
}

// Default returns the built-in layout for the A4 inspection request form.
func Default() (*Layout, error) {
	return Parse(defaultLayout)
}

// Load reads a layout from a YAML file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML layout and checks its geometry.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if l.Page.Width <= 0 || l.Page.Height <= 0 {
		return nil, fmt.Errorf("layout page size must be positive, got %.2fx%.2f", l.Page.Width, l.Page.Height)
	}
	if l.Font.Family == "" {
		l.Font.Family = "Helvetica"
	}
	if l.Font.Size <= 0 {
		l.Font.Size = 9
	}
	if l.Mark.Font == "" {
		l.Mark.Font = "ZapfDingbats"
	}
	if l.Mark.Glyph == "" {
		l.Mark.Glyph = "4"
	}
	if l.Mark.Size <= 0 {
		l.Mark.Size = 8
	}
	for id, p := range l.Fields {
		if err := l.inside(id, p.Point); err != nil {
			return nil, err
		}
	}
	for id, p := range l.Flags {
		if err := l.inside(id, p); err != nil {
			return nil, err
		}
	}
	return &l, nil
}

func (l *Layout) inside(id string, p Point) error {
	if p.X < 0 || p.Y < 0 || p.X > l.Page.Width || p.Y > l.Page.Height {
		return fmt.Errorf("position of %q (%.2f, %.2f) is outside the page", id, p.X, p.Y)
	}
	return nil
}

// FieldIDs returns the placed text fields in sorted order.
func (l *Layout) FieldIDs() []string {
	return sortedKeys(l.Fields)
}

// FlagIDs returns the placed checklist items in sorted order.
func (l *Layout) FlagIDs() []string {
	return sortedKeys(l.Flags)
}

// HeadingIDs returns the placed category and group headings in sorted order.
func (l *Layout) HeadingIDs() []string {
	return sortedKeys(l.Headings)
}

// Identifiers returns every placed identifier in sorted order.
func (l *Layout) Identifiers() []string {
	ids := append(l.FieldIDs(), l.FlagIDs()...)
	sort.Strings(ids)
	return ids
}

// Check validates the placed identifiers against the registry. Field entries must
// name text fields and flag entries must name checklist items.
func (l *Layout) Check(reg *checklist.Registry) checklist.Coverage {
	cov := reg.Check(l.Identifiers())
	for _, id := range l.FieldIDs() {
		if reg.IsItem(id) {
			cov.Unknown = append(cov.Unknown, id+" (checklist item placed as a field)")
		}
	}
	for _, id := range l.FlagIDs() {
		if reg.IsField(id) {
			cov.Unknown = append(cov.Unknown, id+" (field placed as a flag)")
		}
	}
	return cov
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
