package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/nerrad567/bookshelf/internal/book"
)

// Body decoding errors that are not validation failures.
var (
	errMalformedBody    = errors.New("request body must be a JSON object")
	errBodyTooLarge     = errors.New("request body too large")
	errUnsupportedMedia = errors.New("unsupported content type")
)

const (
	mediaJSON = "application/json"
	mediaForm = "application/x-www-form-urlencoded"
)

// decodeBookInput reads a create/update payload from a JSON or
// url-encoded form body and validates it.
//
// Field order of the checks is name, year, then unknown fields, so the
// first reported problem is stable. Year accepts a number or a numeric
// string; name must be a string.
func decodeBookInput(r *http.Request) (book.Input, error) {
	var (
		fields map[string]json.RawMessage
		err    error
	)

	switch mediaType(r) {
	case mediaForm:
		fields, err = formFields(r)
	case mediaJSON, "":
		fields, err = jsonFields(r.Body)
	default:
		return book.Input{}, errUnsupportedMedia
	}
	if err != nil {
		return book.Input{}, err
	}

	var in book.Input

	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil || isNull(raw) {
			return book.Input{}, book.TypeMismatch("name", "string")
		}
		in.Name = &name
	}
	if err := book.ValidateName(in.Name); err != nil {
		return book.Input{}, err
	}

	if raw, ok := fields["year"]; ok {
		year, ok := parseYear(raw)
		if !ok {
			return book.Input{}, book.TypeMismatch("year", "number")
		}
		in.Year = &year
	}
	if err := book.ValidateYear(in.Year); err != nil {
		return book.Input{}, err
	}

	unknown := make([]string, 0)
	for k := range fields {
		if k != "name" && k != "year" {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return book.Input{}, book.UnknownField(unknown[0])
	}

	return in, nil
}

// mediaType returns the request's media type without parameters.
func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return strings.ToLower(mt)
}

// jsonFields decodes a JSON object body. An empty body is an empty object.
func jsonFields(body io.Reader) (map[string]json.RawMessage, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, errMalformedBody
	}

	fields := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, errMalformedBody
	}
	return fields, nil
}

// formFields converts url-encoded fields to JSON strings so both body
// types share one validation path. Repeated keys keep the first value.
func formFields(r *http.Request) (map[string]json.RawMessage, error) {
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, errMalformedBody
	}

	fields := make(map[string]json.RawMessage, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) == 0 {
			continue
		}
		raw, _ := json.Marshal(v[0]) //nolint:errcheck // strings always marshal
		fields[k] = raw
	}
	return fields, nil
}

// parseYear accepts a JSON number or a string holding a finite one.
func parseYear(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
