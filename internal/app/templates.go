package app

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var tmplFS embed.FS

var plannerTmpl = template.Must(template.ParseFS(tmplFS, "templates/planner.html"))
