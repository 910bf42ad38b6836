// Package views renders the server-side HTML pages from embedded templates
// and serves the stylesheet they link to.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/nerrad567/bookshelf/internal/book"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageIndex   = "index"
	PageContact = "contact"
	PageShorts  = "shorts"
)

// Data is the context every page template receives.
type Data struct {
	Title   string
	Heading string
	Books   []book.Book
}

// Renderer holds the parsed page templates.
// It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the layout together with each page template.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageIndex, PageContact, PageShorts} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes page with data into w. Output is buffered so a template
// error never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, page string, data Data) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
