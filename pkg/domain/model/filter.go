package model

import "strings"

// Filter narrows the incident list on the dashboard. Empty fields match everything.
type Filter struct {
	Query    string // Substring of title, description or affected service
	Severity string // Exact severity label, case-insensitive
	Category string // Exact category label, case-insensitive
}

// IsZero reports whether the filter matches every incident
func (f Filter) IsZero() bool {
	return f.Query == "" && f.Severity == "" && f.Category == ""
}

// Match reports whether the incident satisfies all three predicates
func (f Filter) Match(x *Incident) bool {
	if x == nil {
		return false
	}

	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(x.Title), q) &&
			!strings.Contains(strings.ToLower(x.Description), q) &&
			!strings.Contains(strings.ToLower(x.AffectedService), q) {
			return false
		}
	}

	if f.Severity != "" && !strings.EqualFold(x.AISeverity, f.Severity) {
		return false
	}

	if f.Category != "" && !strings.EqualFold(x.AICategory, f.Category) {
		return false
	}

	return true
}

// Apply returns the matching incidents in their original order
func (f Filter) Apply(incidents []*Incident) []*Incident {
	result := make([]*Incident, 0, len(incidents))
	for _, x := range incidents {
		if f.Match(x) {
			result = append(result, x)
		}
	}
	return result
}

// FilterOptions are the values offered by the severity and category selectors
type FilterOptions struct {
	Severities []string
	Categories []string
}

// NewFilterOptions collects the distinct severity and category labels present in
// the list, in first-seen order
func NewFilterOptions(incidents []*Incident) FilterOptions {
	var opts FilterOptions
	seenSev := make(map[string]bool)
	seenCat := make(map[string]bool)

	for _, x := range incidents {
		if x == nil {
			continue
		}
		if !seenSev[x.AISeverity] {
			seenSev[x.AISeverity] = true
			opts.Severities = append(opts.Severities, x.AISeverity)
		}
		if !seenCat[x.AICategory] {
			seenCat[x.AICategory] = true
			opts.Categories = append(opts.Categories, x.AICategory)
		}
	}

	return opts
}

// Stats summarizes the incident list for the dashboard header
type Stats struct {
	Total    int
	Critical int
	High     int
	Medium   int
	Low      int
}

// NewStats counts incidents per severity. Unlike filtering, the comparison is
// case-sensitive against the stored label, so "high" is not counted as High.
func NewStats(incidents []*Incident) Stats {
	var s Stats
	for _, x := range incidents {
		if x == nil {
			continue
		}
		s.Total++
		switch x.AISeverity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		}
	}
	return s
}

// Count returns the count for a severity label
func (s Stats) Count(severity string) int {
	switch severity {
	case SeverityCritical:
		return s.Critical
	case SeverityHigh:
		return s.High
	case SeverityMedium:
		return s.Medium
	case SeverityLow:
		return s.Low
	default:
		return 0
	}
}
