package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nerrad567/bookshelf/internal/book"
)

func TestRender(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		page string
		data Data
		want []string
	}{
		{PageIndex, Data{Title: "Home", Heading: "Hello from index", Books: book.Seed()},
			[]string{"<title>Home</title>", "<h1>Hello from index</h1>", "Atomic habits (2000)", `data-id="3"`}},
		{PageContact, Data{Title: "Contact", Books: book.Seed()},
			[]string{"<title>Contact</title>", "Harry potter (2008)"}},
		{PageShorts, Data{Title: "Shorts", Books: book.Seed()},
			[]string{"<title>Shorts</title>", "<li>Rich dad and poor dad</li>"}},
		{PageContact, Data{Title: "Contact"},
			[]string{"No books yet."}},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Render(&buf, tt.page, tt.data); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, s := range tt.want {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output missing %q:\n%s", s, buf.String())
				}
			}
		})
	}
}

func TestRender_EscapesNames(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	data := Data{Title: "Shorts", Books: []book.Book{{ID: 1, Name: "<script>x</script>", Year: 2000}}}
	if err := r.Render(&buf, PageShorts, data); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Error("book names must be HTML-escaped")
	}
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Render(&bytes.Buffer{}, "about", Data{}); err == nil {
		t.Error("Render() should fail for an unknown page")
	}
}
