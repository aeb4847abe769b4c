package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// DisplayConfig holds the badge treatments for severities and categories
type DisplayConfig struct {
	Severities []Severity `yaml:"severities"`
	Categories []Category `yaml:"categories"`
}

var builtinDisplay = DefaultDisplayConfig()

// DefaultDisplayConfig returns the built-in display configuration
func DefaultDisplayConfig() *DisplayConfig {
	return &DisplayConfig{
		Severities: DefaultSeverities(),
		Categories: DefaultCategories(),
	}
}

// Validate validates the entire configuration
func (c *DisplayConfig) Validate() error {
	if len(c.Severities) == 0 {
		return goerr.New("at least one severity is required")
	}
	if len(c.Categories) == 0 {
		return goerr.New("at least one category is required")
	}

	sevIDs := make(map[string]bool)
	for i, sev := range c.Severities {
		if err := sev.Validate(); err != nil {
			return goerr.Wrap(err, "invalid severity at index",
				goerr.V("index", i),
				goerr.V("id", sev.ID))
		}
		if sevIDs[sev.ID] {
			return goerr.New("duplicate severity ID", goerr.V("id", sev.ID))
		}
		sevIDs[sev.ID] = true
	}
	if !sevIDs[FallbackSeverityID] {
		return goerr.New("fallback severity is required", goerr.V("id", FallbackSeverityID))
	}

	catIDs := make(map[string]bool)
	for i, cat := range c.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category at index",
				goerr.V("index", i),
				goerr.V("id", cat.ID))
		}
		if catIDs[cat.ID] {
			return goerr.New("duplicate category ID", goerr.V("id", cat.ID))
		}
		catIDs[cat.ID] = true
	}
	if !catIDs[FallbackCategoryID] {
		return goerr.New("fallback category is required", goerr.V("id", FallbackCategoryID))
	}

	return nil
}

// Merge returns a config where entries of other replace entries with the same
// ID and new entries are appended
func (c *DisplayConfig) Merge(other *DisplayConfig) *DisplayConfig {
	merged := &DisplayConfig{
		Severities: append([]Severity{}, c.Severities...),
		Categories: append([]Category{}, c.Categories...),
	}
	if other == nil {
		return merged
	}

	for _, sev := range other.Severities {
		replaced := false
		for i := range merged.Severities {
			if merged.Severities[i].ID == sev.ID {
				merged.Severities[i] = sev
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Severities = append(merged.Severities, sev)
		}
	}

	for _, cat := range other.Categories {
		replaced := false
		for i := range merged.Categories {
			if merged.Categories[i].ID == cat.ID {
				merged.Categories[i] = cat
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Categories = append(merged.Categories, cat)
		}
	}

	return merged
}

// FindSeverityByID finds a severity by its ID
func (c *DisplayConfig) FindSeverityByID(id string) *Severity {
	for _, sev := range c.Severities {
		if sev.ID == id {
			result := sev
			return &result
		}
	}
	return nil
}

// FindCategoryByID finds a category by its ID
func (c *DisplayConfig) FindCategoryByID(id string) *Category {
	for _, cat := range c.Categories {
		if cat.ID == id {
			result := cat
			return &result
		}
	}
	return nil
}

// Severity resolves the badge for a severity label. Matching is case-insensitive
// and unknown labels get the fallback treatment; this never fails.
func (c *DisplayConfig) Severity(label string) SeverityBadge {
	badge := SeverityBadge{Label: Capitalize(label)}
	if sev := c.FindSeverityByID(strings.ToLower(strings.TrimSpace(label))); sev != nil {
		badge.Severity = *sev
		return badge
	}

	badge.Unknown = true
	if sev := c.FindSeverityByID(FallbackSeverityID); sev != nil {
		badge.Severity = *sev
	} else {
		badge.Severity = Severity{ID: FallbackSeverityID, Name: SeverityLow, Tone: "green"}
	}
	if badge.Label == "" {
		badge.Label = "Unknown"
	}
	return badge
}

// Category resolves the badge for a category label the same way as Severity
func (c *DisplayConfig) Category(label string) CategoryBadge {
	badge := CategoryBadge{Label: Capitalize(label)}
	if cat := c.FindCategoryByID(strings.ToLower(strings.TrimSpace(label))); cat != nil {
		badge.Category = *cat
		return badge
	}

	badge.Unknown = true
	if cat := c.FindCategoryByID(FallbackCategoryID); cat != nil {
		badge.Category = *cat
	} else {
		badge.Category = Category{ID: FallbackCategoryID, Name: "Application", Tone: "indigo"}
	}
	if badge.Label == "" {
		badge.Label = "Unknown"
	}
	return badge
}
