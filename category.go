package seoentity

import (
	"math"
	"strings"
)

// Category is the document-level classification: a breadcrumb path, most
// general label first, and a confidence percentage.
type Category struct {
	Path       []string `json:"path"`
	Confidence int      `json:"confidence"`
}

// ParseCategory converts a service category name of the form "/A/B/C" and a
// confidence in [0,1]. Returns nil when the name has no labels.
func ParseCategory(name string, confidence float64) *Category {
	var path []string
	for _, label := range strings.Split(name, "/") {
		if label = strings.TrimSpace(label); label != "" {
			path = append(path, label)
		}
	}
	if len(path) == 0 {
		return nil
	}
	return &Category{
		Path:       path,
		Confidence: int(math.Round(clampSalience(confidence) * 100)),
	}
}

// Breadcrumb renders the path joined by " > ".
func (c *Category) Breadcrumb() string {
	if c == nil {
		return ""
	}
	return strings.Join(c.Path, " > ")
}
