package view

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// HTML writes a standalone page. Filter chips work client-side without any
// further request; images that fail to load remove their own region.
func HTML(w io.Writer, p *Page) error {
	if err := pageTemplate.ExecuteTemplate(w, "page.html.tmpl", p); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

func JSON(w io.Writer, p *Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}
	return nil
}
