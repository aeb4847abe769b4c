package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/secmon-lab/incidex/pkg/domain/types"
)

// Incident is an incident as returned by the triage backend
type Incident struct {
	ID              types.IncidentID `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	AffectedService string           `json:"affected_service"`
	AISeverity      string           `json:"ai_severity"`          // Assigned by the backend
	AICategory      string           `json:"ai_category"`          // Assigned by the backend
	CreatedAt       string           `json:"created_at,omitempty"` // Backend-formatted timestamp
	UpdatedAt       string           `json:"updated_at,omitempty"` // Backend-formatted timestamp
}

// Clone returns a copy of the incident
func (x *Incident) Clone() *Incident {
	if x == nil {
		return nil
	}
	c := *x
	return &c
}

// Excerpt returns the description shortened for list views
func (x *Incident) Excerpt() string {
	return Truncate(x.Description, ExcerptLength)
}

// Draft is the user input for creating an incident
type Draft struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	AffectedService string `json:"affected_service"`
}

// Patch holds the fields to change in an update. Nil fields are left untouched.
type Patch struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	AffectedService *string `json:"affected_service,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.AffectedService == nil
}

// Apply returns a copy of the incident with the patch applied
func (p Patch) Apply(x *Incident) *Incident {
	c := x.Clone()
	if c == nil {
		return nil
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.AffectedService != nil {
		c.AffectedService = *p.AffectedService
	}
	return c
}

const (
	// ExcerptLength is the number of characters kept in a list excerpt
	ExcerptLength = 100
	// DescriptionSoftLimit is shown next to the description counter. It is not enforced.
	DescriptionSoftLimit = 1000
)

// Truncate cuts text to maxLen characters and appends "..." when it was cut
func Truncate(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses backend timestamps. The second return is false when the
// value does not match any known layout.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a backend timestamp for people, keeping the raw value
// when it cannot be parsed
func FormatTimestamp(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006 15:04")
}
