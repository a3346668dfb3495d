package render

import (
	"context"
	"os"
)

// Render strategies.
const (
	StrategyTemplate = "template"
	StrategyOverlay  = "overlay"
)

// Fetcher reads a resource by location. Implementations must wrap fs.ErrNotExist
// when the resource does not exist.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// LocalFetcher reads resources from the local filesystem.
type LocalFetcher struct{}

// Fetch reads the file at location.
func (LocalFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	return os.ReadFile(location)
}

// Config controls rendering. Zero fields take the value of DefaultConfig.
type Config struct {
	// Strategy is StrategyTemplate or StrategyOverlay.
	Strategy string

	// TemplateDir is searched for <TemplateName>.gohtml before the embedded templates.
	TemplateDir  string
	TemplateName string

	// TemplatePDF is the static form for the overlay strategy. When empty the
	// built-in blank form is generated from the layout.
	TemplatePDF string
	// LayoutFile overrides the embedded coordinate table.
	LayoutFile string

	FontFamily string
	FontSize   float64
	// Margin is the page margin of the template strategy in points.
	Margin float64

	DisableCompression bool
	// AllowUnplaced accepts layouts and templates that omit checklist items.
	AllowUnplaced bool

	Fetcher Fetcher
}

// DefaultConfig returns the default render configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:     StrategyTemplate,
		TemplateName: "inspection",
		FontFamily:   "Helvetica",
		FontSize:     10,
		Margin:       36,
		Fetcher:      LocalFetcher{},
	}
}

func applyConfig(dst *Config, src Config) {
	if src.Strategy != "" {
		dst.Strategy = src.Strategy
	}
	if src.TemplateDir != "" {
		dst.TemplateDir = src.TemplateDir
	}
	if src.TemplateName != "" {
		dst.TemplateName = src.TemplateName
	}
	if src.TemplatePDF != "" {
		dst.TemplatePDF = src.TemplatePDF
	}
	if src.LayoutFile != "" {
		dst.LayoutFile = src.LayoutFile
	}
	if src.FontFamily != "" {
		dst.FontFamily = src.FontFamily
	}
	if src.FontSize > 0 {
		dst.FontSize = src.FontSize
	}
	if src.Margin > 0 {
		dst.Margin = src.Margin
	}
	if src.DisableCompression {
		dst.DisableCompression = true
	}
	if src.AllowUnplaced {
		dst.AllowUnplaced = true
	}
	if src.Fetcher != nil {
		dst.Fetcher = src.Fetcher
	}
}
