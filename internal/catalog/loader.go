package catalog

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/manrura/internal/models"
)

//go:embed data/manrura.yaml
var embedded embed.FS

const defaultDocument = "data/manrura.yaml"

var (
	ErrDuplicatePointID    = errors.New("duplicate point id")
	ErrDuplicateStandardID = errors.New("duplicate standard id")
	ErrMissingID           = errors.New("catalog node id is required")
)

// Default returns the MANRURA catalog compiled into the binary
func Default() (*Catalog, error) {
	data, err := embedded.ReadFile(defaultDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}
	return Parse(data)
}

// Load reads a catalog from path. A file holds the whole document; a
// directory holds one standard per YAML file, ordered by file name.
// An empty path yields the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	if info.IsDir() {
		return LoadFromDir(path)
	}
	return LoadFromFile(path)
}

// LoadFromFile loads a whole catalog document from a YAML file
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Info("catalog loaded", "file", path, "standards", len(cat.standards), "points", cat.PointCount())
	return cat, nil
}

// LoadFromDir loads one standard per YAML file in dir
func LoadFromDir(dir string) (*Catalog, error) {
	slog.Info("loading catalog from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	standards := make([]*models.Standard, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		var sf standardFile
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}

		// Fall back to the file name when the standard has no id
		if sf.ID == "" {
			base := filepath.Base(file)
			sf.ID = strings.TrimSuffix(base, filepath.Ext(base))
		}

		standards = append(standards, sf.toModel())
	}

	cat, err := New(standards)
	if err != nil {
		return nil, err
	}

	slog.Info("catalog loaded", "dir", dir, "standards", len(standards), "points", cat.PointCount())
	return cat, nil
}

// Parse decodes a catalog document
func Parse(data []byte) (*Catalog, error) {
	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	standards := make([]*models.Standard, 0, len(doc.Standards))
	for _, sf := range doc.Standards {
		standards = append(standards, sf.toModel())
	}
	return New(standards)
}

// --- YAML file structs ---

// documentFile is a whole catalog in one file
type documentFile struct {
	Standards []standardFile `yaml:"standards"`
}

type standardFile struct {
	ID       string        `yaml:"id"`
	Title    string        `yaml:"title"`
	Elements []elementFile `yaml:"elements"`
}

type elementFile struct {
	ID     string      `yaml:"id"`
	Title  string      `yaml:"title"`
	Points []pointFile `yaml:"points"`
}

type pointFile struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

func (sf standardFile) toModel() *models.Standard {
	std := &models.Standard{
		ID:       strings.TrimSpace(sf.ID),
		Title:    strings.TrimSpace(sf.Title),
		Elements: make([]*models.Element, 0, len(sf.Elements)),
	}
	for _, ef := range sf.Elements {
		el := &models.Element{
			ID:     strings.TrimSpace(ef.ID),
			Title:  strings.TrimSpace(ef.Title),
			Points: make([]*models.Point, 0, len(ef.Points)),
		}
		for _, pf := range ef.Points {
			el.Points = append(el.Points, &models.Point{
				ID:          strings.TrimSpace(pf.ID),
				Description: strings.TrimSpace(pf.Description),
			})
		}
		std.Elements = append(std.Elements, el)
	}
	return std
}
