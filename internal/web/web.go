// Package web embeds the HTML views.
package web

import (
	"embed"         // Templates are compiled into the binary
	"html/template" // Auto-escaping HTML templates
	"time"          // Timestamp formatting
)

//go:embed templates/*.html
var files embed.FS

// TimeLayout is how article timestamps are shown
const TimeLayout = "2006-01-02 15:04"

// Templates parses every view. funcs is merged over the defaults and must
// be complete before parsing, so callers pass their helpers here.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	all := template.FuncMap{
		"formatTime": func(t time.Time) string { return t.UTC().Format(TimeLayout) },
	}
	for name, fn := range funcs {
		all[name] = fn
	}
	return template.New("").Funcs(all).ParseFS(files, "templates/*.html")
}
