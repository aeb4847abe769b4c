package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Category describes how an incident category label is displayed. The backend
// may return categories outside the configured set; those use the fallback.
type Category struct {
	ID     string `yaml:"id"`     // Lower-case key matched against labels (e.g., "network")
	Name   string `yaml:"name"`   // Display name
	Tone   string `yaml:"tone"`   // Visual tone, used as CSS class and terminal color
	Symbol string `yaml:"symbol"` // Short marker shown before the label
}

// Validate validates the category
func (c *Category) Validate() error {
	if c.ID == "" {
		return goerr.New("category ID is required")
	}
	if c.ID != strings.ToLower(c.ID) {
		return goerr.New("category ID must be lower case", goerr.V("id", c.ID))
	}
	if c.Name == "" {
		return goerr.New("category name is required", goerr.V("id", c.ID))
	}
	return nil
}

// CategoryBadge is a resolved display treatment for one label
type CategoryBadge struct {
	Category
	Label   string
	Unknown bool
}

// FallbackCategoryID is used for labels that match no configured category
const FallbackCategoryID = "application"

// DefaultCategories returns the built-in category display set
func DefaultCategories() []Category {
	return []Category{
		{ID: "network", Name: "Network", Tone: "blue", Symbol: "⇄"},
		{ID: "software", Name: "Software", Tone: "purple", Symbol: "</>"},
		{ID: "hardware", Name: "Hardware", Tone: "gray", Symbol: "▣"},
		{ID: "security", Name: "Security", Tone: "red", Symbol: "⛨"},
		{ID: "database", Name: "Database", Tone: "green", Symbol: "◎"},
		{ID: "application", Name: "Application", Tone: "indigo", Symbol: "▢"},
		{ID: "infrastructure", Name: "Infrastructure", Tone: "orange", Symbol: "≡"},
	}
}

// DisplayCategory resolves the badge for a label with the built-in display set
func DisplayCategory(label string) CategoryBadge {
	return builtinDisplay.Category(label)
}
