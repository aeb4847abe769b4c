package model

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
)

// Severity labels assigned by the triage backend
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Severities lists the known severity labels from most to least urgent
var Severities = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Severity describes how a severity label is displayed
type Severity struct {
	ID     string `yaml:"id"`     // Lower-case key matched against labels (e.g., "high")
	Name   string `yaml:"name"`   // Display name
	Tone   string `yaml:"tone"`   // Visual tone, used as CSS class and terminal color
	Symbol string `yaml:"symbol"` // Short marker shown before the label
	Level  int    `yaml:"level"`  // Sort weight, higher is more urgent
}

// Validate validates the severity
func (s *Severity) Validate() error {
	if s.ID == "" {
		return goerr.New("severity ID is required")
	}
	if s.ID != strings.ToLower(s.ID) {
		return goerr.New("severity ID must be lower case", goerr.V("id", s.ID))
	}
	if s.Name == "" {
		return goerr.New("severity name is required", goerr.V("id", s.ID))
	}
	if s.Level < 0 || s.Level > 99 {
		return goerr.New("severity level must be between 0 and 99",
			goerr.V("level", s.Level))
	}
	return nil
}

// SeverityBadge is a resolved display treatment for one label
type SeverityBadge struct {
	Severity
	Label   string // Text shown to the user
	Unknown bool   // True when the fallback treatment was used
}

// FallbackSeverityID is used for labels that match no configured severity
const FallbackSeverityID = "low"

// DefaultSeverities returns the built-in severity display set
func DefaultSeverities() []Severity {
	return []Severity{
		{ID: "low", Name: SeverityLow, Tone: "green", Symbol: "▲", Level: 10},
		{ID: "medium", Name: SeverityMedium, Tone: "yellow", Symbol: "●", Level: 40},
		{ID: "high", Name: SeverityHigh, Tone: "red", Symbol: "⬢", Level: 70},
		{ID: "critical", Name: SeverityCritical, Tone: "crimson", Symbol: "✖", Level: 90},
	}
}

// Capitalize upper-cases the first character, matching how labels are shown
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// DisplaySeverity resolves the badge for a label with the built-in display set
func DisplaySeverity(label string) SeverityBadge {
	return builtinDisplay.Severity(label)
}
