package domain

import "strings"

// Category groups products. Names are unique ignoring case and surrounding
// whitespace. A category cannot be deleted while products reference it.
type Category struct {
	ID      int64
	Name    string
	Version int64

	// Read-side only.
	ProductCount int
}

// NormalizedName is the uniqueness key for a category name.
func (c *Category) NormalizedName() string {
	return NormalizeCategoryName(c.Name)
}

func NormalizeCategoryName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
