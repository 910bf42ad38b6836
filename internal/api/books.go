package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/bookshelf/internal/book"
)

// Not-found messages.
const (
	msgNoBookWithName = "no book with this name exists"
	msgNoBookWithID   = "no book with this id exists"
)

// handleListBooks returns the whole collection.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.registry.List(r.Context())
	if err != nil {
		s.internalError(w, r, "listing books", err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// handleFindBookByName returns the first book whose name equals ?name= exactly.
func (s *Server) handleFindBookByName(w http.ResponseWriter, r *http.Request) {
	b, err := s.registry.FindByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeBookError(w, r, err, msgNoBookWithName)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleGetBook returns one book by id. The trailing shelf segment is ignored.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	b, err := s.registry.Get(r.Context(), id)
	if err != nil {
		s.writeBookError(w, r, err, msgNoBookWithID)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleCreateBook validates the body and appends a new book.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	in, err := decodeBookInput(r)
	if err != nil {
		s.writeBookError(w, r, err, "")
		return
	}

	b, err := s.registry.Create(r.Context(), in)
	if err != nil {
		s.writeBookError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// handleUpdateBook replaces a book in place, keeping the path id.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	in, err := decodeBookInput(r)
	if err != nil {
		s.writeBookError(w, r, err, "")
		return
	}

	b, err := s.registry.Update(r.Context(), id, in)
	if err != nil {
		s.writeBookError(w, r, err, msgNoBookWithID)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleDeleteBook removes a book and returns the remaining collection.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	remaining, err := s.registry.Delete(r.Context(), id)
	if err != nil {
		s.writeBookError(w, r, err, msgNoBookWithID)
		return
	}
	writeJSON(w, http.StatusOK, remaining)
}

// bookID parses the {id} URL parameter, writing a 400 when it is not an integer.
func bookID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeBadRequest(w, "book id must be an integer, got "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}

// writeBookError maps registry and decoding errors to HTTP responses.
func (s *Server) writeBookError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr *book.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr.Message)
	case errors.Is(err, book.ErrBookNotFound):
		writeNotFound(w, notFoundMsg)
	case errors.Is(err, errMalformedBody):
		writeBadRequest(w, err.Error())
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
	case errors.Is(err, errUnsupportedMedia):
		writeError(w, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMedia,
			"content type must be "+mediaJSON+" or "+mediaForm)
	default:
		s.internalError(w, r, "book operation failed", err)
	}
}

// internalError logs err and writes a generic 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, "error", err, "request_id", requestID(r))
	writeInternalError(w, "internal server error")
}
