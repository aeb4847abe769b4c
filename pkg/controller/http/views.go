package http

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/model"
)

// Page template files, each parsed together with layout.html
const (
	pageDashboard = "dashboard.html"
	pageForm      = "form.html"
	pageDetail    = "detail.html"
)

// views renders the dashboard pages
type views struct {
	pages map[string]*template.Template
}

func newViews(fsys fs.FS, display *model.DisplayConfig) (*views, error) {
	funcs := template.FuncMap{
		"severity":    display.Severity,
		"category":    display.Category,
		"timestamp":   model.FormatTimestamp,
		"counter":     model.DescriptionCounter,
		"capitalize":  model.Capitalize,
		"incidentURL": incidentURL,
	}

	v := &views{pages: make(map[string]*template.Template)}
	for _, page := range []string{pageDashboard, pageForm, pageDetail} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse template", goerr.V("page", page))
		}
		v.pages[page] = tmpl
	}
	return v, nil
}

// render executes the page into a buffer first so a template failure can
// still produce a clean 500
func (v *views) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := v.pages[page]
	if !ok {
		writeError(w, r, goerr.New("unknown page", goerr.V("page", page)), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to render page", goerr.V("page", page)), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(r.Context()).Warn("failed to write page", "page", page, "error", err)
	}
}

// base is shared by every page
type base struct {
	Title string
	Nav   string
	Flash *model.Notice
}

// errorPanel is the failure box with a retry button
type errorPanel struct {
	Heading     string
	Message     string
	RetryAction string
}

type dashboardPage struct {
	base
	Filter    model.Filter
	Options   model.FilterOptions
	Stats     model.Stats
	Incidents []*model.Incident
	Error     *errorPanel
}

type formPage struct {
	base
	Heading string
	Editing bool
	ID      string
	Action  string
	Cancel  string
	Submit  string
	Values  model.Draft
	Errors  model.FormErrors
}

type detailPage struct {
	base
	Incident      *model.Incident
	ConfirmDelete bool
	Error         *errorPanel
}
