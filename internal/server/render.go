package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*.css
var staticFS embed.FS

// Views renders the embedded HTML templates.
type Views struct {
	tmpl *template.Template
}

// NewViews parses the embedded templates.
func NewViews() (*Views, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		"prettyJSON": prettyJSON,
	})
	tmpl, err := tmpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Views{tmpl: tmpl}, nil
}

// Render writes the named template to the response. Template data is trusted
// (handler-assembled), so a render failure is a programming error and is
// reported as a 500.
func (v *Views) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := v.tmpl.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// prettyJSON renders an operation payload as indented JSON for the result view.
func prettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

// StaticHandler serves the embedded static assets under /static/.
func StaticHandler() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
