package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/wolfeidau/storefront/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type productPage struct {
	Site            string
	Title           string
	Product         *catalog.Product
	RelatedProducts []catalog.ProductSummary
	ScriptsEnabled  bool
	Scripts         []string
}

type indexPage struct {
	Site           string
	Products       []catalog.ProductSummary
	ScriptsEnabled bool
	Scripts        []string
}

type errorPage struct {
	Site    string
	Message string
}

// render executes a template into a buffer first, so a template failure
// never leaks a half-written body.
func render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
