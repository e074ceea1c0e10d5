// Package catalog holds the immutable MANRURA standards tree.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/terra-clan/manrura/internal/models"
)

// Catalog is the read-only Standard -> Element -> Point tree.
// It is built once and never mutated, so it is safe for concurrent use.
type Catalog struct {
	standards []*models.Standard
	byID      map[string]*models.Standard
	points    map[string]*models.Point
	pointIDs  []string
	// point id -> standard id
	owner map[string]string
}

// New indexes standards and checks that every point id is unique
func New(standards []*models.Standard) (*Catalog, error) {
	c := &Catalog{
		standards: standards,
		byID:      make(map[string]*models.Standard, len(standards)),
		points:    make(map[string]*models.Point),
		owner:     make(map[string]string),
	}

	for _, std := range standards {
		if std.ID == "" {
			return nil, fmt.Errorf("%w: standard %q", ErrMissingID, std.Title)
		}
		if _, dup := c.byID[std.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStandardID, std.ID)
		}
		c.byID[std.ID] = std

		for _, el := range std.Elements {
			for _, p := range el.Points {
				if p.ID == "" {
					return nil, fmt.Errorf("%w: point in element %s", ErrMissingID, el.ID)
				}
				if prev, dup := c.owner[p.ID]; dup {
					return nil, fmt.Errorf("%w: %s (in %s and %s)", ErrDuplicatePointID, p.ID, prev, std.ID)
				}
				c.points[p.ID] = p
				c.owner[p.ID] = std.ID
				c.pointIDs = append(c.pointIDs, p.ID)
			}
		}
	}

	return c, nil
}

// Standards returns the standards in document order
func (c *Catalog) Standards() []*models.Standard {
	return c.standards
}

// Standard returns a standard by id, or nil
func (c *Catalog) Standard(id string) *models.Standard {
	return c.byID[id]
}

// Point returns a point by id, or nil
func (c *Catalog) Point(id string) *models.Point {
	return c.points[id]
}

// HasPoint reports whether id names a point of the catalog
func (c *Catalog) HasPoint(id string) bool {
	_, ok := c.points[id]
	return ok
}

// StandardOf returns the id of the standard that contains the point
func (c *Catalog) StandardOf(pointID string) string {
	return c.owner[pointID]
}

// PointIDs returns every point id in document order
func (c *Catalog) PointIDs() []string {
	return c.pointIDs
}

// PointCount returns the number of points in the catalog
func (c *Catalog) PointCount() int {
	return len(c.pointIDs)
}

// MaxScore returns the highest score a ward can reach
func (c *Catalog) MaxScore() int {
	return len(c.pointIDs) * models.PointWeight
}

// DefaultStandardID is the standard shown when nothing else is selected
func (c *Catalog) DefaultStandardID() string {
	if len(c.standards) == 0 {
		return ""
	}
	return c.standards[0].ID
}

// List returns a summary row per standard
func (c *Catalog) List() []models.StandardInfo {
	result := make([]models.StandardInfo, 0, len(c.standards))
	for _, std := range c.standards {
		result = append(result, models.StandardInfo{
			ID:            std.ID,
			Title:         std.Title,
			ElementsCount: len(std.Elements),
			PointsCount:   len(std.PointIDs()),
		})
	}
	return result
}

// JSON returns the whole document as JSON, as embedded in assistant prompts
func (c *Catalog) JSON() (string, error) {
	data, err := json.Marshal(c.standards)
	if err != nil {
		return "", fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return string(data), nil
}
