package api

import (
	"net/http"

	"github.com/nerrad567/bookshelf/internal/views"
)

// page describes one server-rendered route.
type page struct {
	name    string
	title   string
	heading string
}

var (
	indexPage   = page{name: views.PageIndex, title: "Home", heading: "Hello from index"}
	contactPage = page{name: views.PageContact, title: "Contact"}
	shortsPage  = page{name: views.PageShorts, title: "Shorts"}
)

// handlePage renders p with the current collection.
func (s *Server) handlePage(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := s.registry.List(r.Context())
		if err != nil {
			s.internalError(w, r, "listing books for page", err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = s.views.Render(w, p.name, views.Data{
			Title:   p.title,
			Heading: p.heading,
			Books:   books,
		})
		if err != nil {
			s.internalError(w, r, "rendering page", err)
		}
	}
}
