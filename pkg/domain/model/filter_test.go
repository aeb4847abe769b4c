package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/incidex/pkg/domain/model"
)

func testIncidents() []*model.Incident {
	return []*model.Incident{
		{
			ID:              "1",
			Title:           "Database connection timeout",
			Description:     "Users are experiencing slow response times when accessing the dashboard",
			AffectedService: "user-dashboard",
			AISeverity:      "High",
			AICategory:      "database",
		},
		{
			ID:              "2",
			Title:           "Login page returns 500",
			Description:     "Authentication service fails for all SSO users since deploy",
			AffectedService: "auth-service",
			AISeverity:      "Critical",
			AICategory:      "application",
		},
		{
			ID:              "3",
			Title:           "Packet loss in zone b",
			Description:     "Intermittent packet loss observed between core routers",
			AffectedService: "edge-network",
			AISeverity:      "medium",
			AICategory:      "Network",
		},
		{
			ID:              "4",
			Title:           "Disk nearly full",
			Description:     "Log volume on the batch host is at 95 percent capacity",
			AffectedService: "batch-runner",
			AISeverity:      "Low",
			AICategory:      "infrastructure",
		},
	}
}

func ids(incidents []*model.Incident) []string {
	var result []string
	for _, x := range incidents {
		result = append(result, x.ID.String())
	}
	return result
}

func TestFilterMatch(t *testing.T) {
	incidents := testIncidents()

	tests := []struct {
		name     string
		filter   model.Filter
		expected []string
	}{
		{"Empty filter matches all", model.Filter{}, []string{"1", "2", "3", "4"}},
		{"Query on title", model.Filter{Query: "database"}, []string{"1"}},
		{"Query is case-insensitive", model.Filter{Query: "LOGIN"}, []string{"2"}},
		{"Query on description", model.Filter{Query: "core routers"}, []string{"3"}},
		{"Query on affected service", model.Filter{Query: "batch-runner"}, []string{"4"}},
		{"Severity filter", model.Filter{Severity: "critical"}, []string{"2"}},
		{"Severity filter matches lower-case label", model.Filter{Severity: "Medium"}, []string{"3"}},
		{"Category filter", model.Filter{Category: "network"}, []string{"3"}},
		{"Predicates are ANDed", model.Filter{Query: "users", Severity: "High"}, []string{"1"}},
		{"No match", model.Filter{Query: "users", Category: "network"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(incidents)
			gt.Equal(t, tt.expected, ids(got))
		})
	}
}

func TestFilterByTitlePrefixAlwaysMatches(t *testing.T) {
	for _, x := range testIncidents() {
		f := model.Filter{Query: string([]rune(x.Title)[:3])}
		gt.True(t, f.Match(x))
	}
}

func TestFilterMatchNil(t *testing.T) {
	gt.False(t, model.Filter{}.Match(nil))
}

func TestNewFilterOptions(t *testing.T) {
	incidents := append(testIncidents(), &model.Incident{ID: "5", AISeverity: "High", AICategory: "database"})
	opts := model.NewFilterOptions(incidents)
	gt.Equal(t, []string{"High", "Critical", "medium", "Low"}, opts.Severities)
	gt.Equal(t, []string{"database", "application", "Network", "infrastructure"}, opts.Categories)
}

func TestNewStats(t *testing.T) {
	stats := model.NewStats(testIncidents())
	gt.Equal(t, 4, stats.Total)
	gt.Equal(t, 1, stats.Critical)
	gt.Equal(t, 1, stats.High)
	gt.Equal(t, 0, stats.Medium) // "medium" is not counted, comparison is exact
	gt.Equal(t, 1, stats.Low)
	gt.Equal(t, 1, stats.Count(model.SeverityHigh))
	gt.Equal(t, 0, stats.Count("Severe"))

	empty := model.NewStats(nil)
	gt.Equal(t, model.Stats{}, empty)
}
