package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/model"
)

// outputFormat selects how tables are rendered
type outputFormat int

const (
	formatASCII outputFormat = iota
	formatMarkdown
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(s) {
	case "ascii", "":
		return formatASCII, nil
	case "markdown", "md":
		return formatMarkdown, nil
	}
	return formatASCII, goerr.New("unknown output format", goerr.V("format", s))
}

func newTable(f outputFormat) table.Writer {
	w := table.NewWriter()
	if f == formatASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func renderTable(w io.Writer, t table.Writer, f outputFormat) error {
	out := t.Render()
	if f == formatMarkdown {
		out = t.RenderMarkdown()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func severityCell(display *model.DisplayConfig, label string) string {
	b := display.Severity(label)
	return strings.TrimSpace(b.Symbol + " " + b.Label)
}

func categoryCell(display *model.DisplayConfig, label string) string {
	b := display.Category(label)
	return strings.TrimSpace(b.Symbol + " " + b.Label)
}

// renderIncidentList writes one row per incident with the description excerpt
func renderIncidentList(w io.Writer, incidents []*model.Incident, display *model.DisplayConfig, f outputFormat) error {
	if len(incidents) == 0 {
		_, err := fmt.Fprintln(w, "No incidents found")
		return err
	}

	t := newTable(f)
	t.AppendHeader(table.Row{"ID", "Severity", "Category", "Title", "Service", "Created", "Description"})
	for _, x := range incidents {
		t.AppendRow(table.Row{
			x.ID,
			severityCell(display, x.AISeverity),
			categoryCell(display, x.AICategory),
			x.Title,
			x.AffectedService,
			model.FormatTimestamp(x.CreatedAt),
			x.Excerpt(),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 7, WidthMax: 50},
	})
	return renderTable(w, t, f)
}

func renderStats(w io.Writer, stats model.Stats, f outputFormat) error {
	t := newTable(f)
	t.AppendHeader(table.Row{"Total", model.SeverityCritical, model.SeverityHigh, model.SeverityMedium, model.SeverityLow})
	t.AppendRow(table.Row{stats.Total, stats.Critical, stats.High, stats.Medium, stats.Low})
	return renderTable(w, t, f)
}

// renderIncident writes every field of one incident
func renderIncident(w io.Writer, x *model.Incident, display *model.DisplayConfig, f outputFormat) error {
	t := newTable(f)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"ID", x.ID},
		{"Title", x.Title},
		{"Severity", severityCell(display, x.AISeverity)},
		{"Category", categoryCell(display, x.AICategory)},
		{"Affected service", x.AffectedService},
		{"Created", model.FormatTimestamp(x.CreatedAt)},
		{"Updated", model.FormatTimestamp(x.UpdatedAt)},
		{"Description", x.Description},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 80},
	})
	return renderTable(w, t, f)
}

func renderFieldErrors(w io.Writer, errs model.FormErrors) error {
	for _, field := range errs.Fields() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", field, errs.Message(field)); err != nil {
			return err
		}
	}
	return nil
}
