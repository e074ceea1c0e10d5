package models

// PointWeight is the number of score units every point is worth
const PointWeight = 10

// Standard is a top-level chapter of the MANRURA document (e.g. "bab1")
type Standard struct {
	ID       string     `yaml:"id" json:"id"`
	Title    string     `yaml:"title" json:"title"`
	Elements []*Element `yaml:"elements" json:"elements"`
}

// Element groups related points within a standard
type Element struct {
	ID     string   `yaml:"id" json:"id"`
	Title  string   `yaml:"title" json:"title"`
	Points []*Point `yaml:"points" json:"poin"`
}

// Point is the smallest scoreable unit of the catalog
type Point struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

// Weight returns the maximum score of the point
func (p *Point) Weight() int {
	return PointWeight
}

// PointIDs returns the ids of every point in the standard, in document order
func (s *Standard) PointIDs() []string {
	var ids []string
	for _, el := range s.Elements {
		for _, p := range el.Points {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// StandardInfo is the sidebar listing of a standard
type StandardInfo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ElementsCount int    `json:"elementsCount"`
	PointsCount   int    `json:"pointsCount"`
}
