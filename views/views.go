// Package views holds the HTML templates, static assets and the help text.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed ayuda.md
var helpMarkdown []byte

// Raw HTML in the Markdown source is escaped (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var funcs = template.FuncMap{
	// lines splits alert-style messages for display.
	"lines": func(s string) []string { return strings.Split(s, "\n") },
	"inc":   func(i int) int { return i + 1 },
}

// Templates parses every page template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Help renders the catalog help text.
func Help() (template.HTML, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert(helpMarkdown, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
