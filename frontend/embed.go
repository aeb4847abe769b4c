package frontend

import (
	"embed"
	"io/fs"
	"net/http"
)

// FS embeds the dashboard page templates and static assets
//
//go:embed templates static
var FS embed.FS

// Templates returns the page templates
func Templates() (fs.FS, error) {
	return fs.Sub(FS, "templates")
}

// GetHTTPFS returns the static assets for HTTP serving
func GetHTTPFS() (http.FileSystem, error) {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		return nil, err
	}

	if _, err := fs.Stat(sub, "app.css"); err != nil {
		return nil, err
	}

	return http.FS(sub), nil
}
