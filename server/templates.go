package server

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
	}).ParseFS(templateFS, "templates/*.html")
}
