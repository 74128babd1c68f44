package page

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const fixture = `<html><head><title>  Demo   page </title>
<meta property="og:image" content="https://cdn.example.com/og.png"></head>
<body>
  <main>
    <div class="card" data-urn="urn:1">
      <p class="text">Hello
         world</p>
      <a href="/post/1">link</a>
      <span id="leaf">leaf</span>
    </div>
  </main>
  <script>var ignored = 1;</script>
</body></html>`

func mustParse(t *testing.T, html, url string) *Document {
	t.Helper()
	doc, err := ParseString(html, url)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func TestDocumentBasics(t *testing.T) {
	doc := mustParse(t, fixture, "https://example.com/a/b")

	if doc.URL() != "https://example.com/a/b" {
		t.Errorf("URL() = %q", doc.URL())
	}
	if doc.Title() != "Demo   page" {
		t.Errorf("Title() = %q, want %q", doc.Title(), "Demo   page")
	}
	if got := doc.Query(`meta[property="og:image"]`).Attr("content"); got != "https://cdn.example.com/og.png" {
		t.Errorf("og:image = %q", got)
	}
	if got := doc.Query(".card .text").Text(); got != "Hello world" {
		t.Errorf("Text() = %q, want %q", got, "Hello world")
	}
	if got := doc.Body().Text(); got != "Hello world link leaf" {
		t.Errorf("Body().Text() = %q, want script-free collapsed text", got)
	}
}

func TestElementMissing(t *testing.T) {
	doc := mustParse(t, fixture, "https://example.com/")

	missing := doc.Query(".nope")
	if missing.Exists() {
		t.Fatal("Exists() = true for unmatched selector")
	}
	if missing.Text() != "" || missing.Attr("href") != "" {
		t.Error("missing element should yield empty values")
	}
	if missing.Find("p").Exists() || missing.Closest("div").Exists() {
		t.Error("lookups on a missing element should stay missing")
	}
}

func TestElementClosest(t *testing.T) {
	doc := mustParse(t, fixture, "https://example.com/")

	leaf := doc.Target("#leaf")
	if leaf == nil {
		t.Fatal("Target(#leaf) = nil")
	}
	card := leaf.Closest("[data-urn]")
	if card.Attr("data-urn") != "urn:1" {
		t.Errorf("Closest() data-urn = %q, want urn:1", card.Attr("data-urn"))
	}
	if !card.Closest(".card").Exists() {
		t.Error("Closest() should match the element itself")
	}
}

func TestDocumentTarget(t *testing.T) {
	doc := mustParse(t, fixture, "https://example.com/")

	if doc.Target("") != nil {
		t.Error("Target(\"\") should be nil")
	}
	if doc.Target(".absent") != nil {
		t.Error("Target(.absent) should be nil")
	}
}

func TestDocumentResolve(t *testing.T) {
	doc := mustParse(t, fixture, "https://example.com/a/b")

	tests := []struct {
		ref  string
		want string
	}{
		{ref: "/post/1", want: "https://example.com/post/1"},
		{ref: "c", want: "https://example.com/a/c"},
		{ref: "https://other.org/x", want: "https://other.org/x"},
		{ref: "", want: ""},
	}
	for _, tt := range tests {
		if got := doc.Resolve(tt.ref); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(fixture))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		case "/boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, 1<<20)
	ctx := context.Background()

	doc, err := f.Fetch(ctx, srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Fetch(/ok) error = %v", err)
	}
	if doc.Title() != "Demo   page" {
		t.Errorf("Fetch(/ok) title = %q", doc.Title())
	}
	if doc.URL() != srv.URL+"/ok" {
		t.Errorf("Fetch(/ok) url = %q", doc.URL())
	}

	if _, err := f.Fetch(ctx, srv.URL+"/empty"); !errors.Is(err, ErrNotReady) {
		t.Errorf("Fetch(/empty) error = %v, want ErrNotReady", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/boom"); !errors.Is(err, ErrNotReady) {
		t.Errorf("Fetch(/boom) error = %v, want ErrNotReady", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/missing"); !errors.Is(err, ErrRejected) {
		t.Errorf("Fetch(/missing) error = %v, want ErrRejected", err)
	}
	if _, err := f.Fetch(ctx, "http://127.0.0.1:1/unreachable"); !errors.Is(err, ErrNotReady) {
		t.Errorf("Fetch(unreachable) error = %v, want ErrNotReady", err)
	}
}
