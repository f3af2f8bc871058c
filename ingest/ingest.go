// Package ingest turns catalog datasets into community graphs.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TFMV/communitygraph/models"
)

// ErrUnsupportedFormat is returned for dataset formats with no processor
var ErrUnsupportedFormat = errors.New("unsupported format")

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a graph representation
	ProcessData(data []byte) (*models.Graph, error)

	// GetName returns the name of the processor
	GetName() string
}

// Dataset is the on-disk shape of a catalog export
type Dataset struct {
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Categories  []models.Category  `json:"categories" yaml:"categories"`
	Communities []models.Community `json:"communities" yaml:"communities"`
	Links       []models.Link      `json:"links,omitempty" yaml:"links,omitempty"`
}

// Palette provides the colors handed to categories that do not carry one
type Palette struct {
	CategoryColors []string
	Background     string
}

// DefaultPalette returns the catalog palette
func DefaultPalette() *Palette {
	return &Palette{
		CategoryColors: []string{
			"#4285F4", // blue
			"#EA4335", // red
			"#FBBC05", // yellow
			"#34A853", // green
			"#673AB7", // purple
			"#00BCD4", // cyan
			"#FF5722", // deep orange
			"#009688", // teal
		},
		Background: "#f8f8f8",
	}
}

// Colorize fills in missing category colors, cycling through the palette
// in dataset order
func (p *Palette) Colorize(categories []models.Category) {
	if len(p.CategoryColors) == 0 {
		return
	}
	for i := range categories {
		if categories[i].Color == "" {
			categories[i].Color = p.CategoryColors[i%len(p.CategoryColors)]
		}
	}
}

// build validates a decoded dataset and constructs its graph
func build(ds *Dataset, palette *Palette, fallbackName string) (*models.Graph, error) {
	if len(ds.Categories) == 0 && len(ds.Communities) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	palette.Colorize(ds.Categories)

	name := ds.Name
	if name == "" {
		name = fallbackName
	}
	graph, err := models.BuildGraph(name, ds.Categories, ds.Communities, ds.Links)
	if err != nil {
		return nil, fmt.Errorf("error building graph: %w", err)
	}
	return graph, nil
}

// JSONProcessor handles JSON datasets
type JSONProcessor struct {
	palette *Palette
}

// NewJSONProcessor creates a new JSON processor with the specified palette
func NewJSONProcessor(palette *Palette) *JSONProcessor {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &JSONProcessor{palette: palette}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData processes JSON data
func (p *JSONProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return build(&ds, p.palette, "JSON Import")
}

// YAMLProcessor handles YAML datasets
type YAMLProcessor struct {
	palette *Palette
}

// NewYAMLProcessor creates a new YAML processor with the specified palette
func NewYAMLProcessor(palette *Palette) *YAMLProcessor {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &YAMLProcessor{palette: palette}
}

// GetName returns the name of the processor
func (p *YAMLProcessor) GetName() string {
	return "YAML Processor"
}

// ProcessData processes YAML data
func (p *YAMLProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	return build(&ds, p.palette, "YAML Import")
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return NewJSONProcessor(DefaultPalette()), nil
	case "yaml", "yml":
		return NewYAMLProcessor(DefaultPalette()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ProcessFile reads a dataset file and picks the processor by extension
func ProcessFile(path string) (*models.Graph, error) {
	processor, err := GetProcessor(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	graph, err := processor.ProcessData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return graph, nil
}
