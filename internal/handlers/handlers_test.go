package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/schizo-studios/pubsite/internal/config"
	"github.com/schizo-studios/pubsite/internal/discography"
)

const testCatalog = `{
	"generated_from": "/var/www/publications",
	"items": [
		{"title": "Atlas", "relative_path": "books/atlas.pdf", "category": "Books", "size_bytes": 2048, "updated_utc": "2025-05-01T00:00:00Z"},
		{"title": "Atlas (Book)", "relative_path": "books/atlas.epub", "category": "Books"},
		{"title": "Cookbook", "relative_path": "food/cookbook.pdf", "category": "Food"},
		{"title": "Secret", "relative_path": "hidden/secret.mobi"}
	]
}`

const testNav = `<nav class="site-nav"><a href="/">Home</a><a href="/publications/">Publications</a></nav>`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/publications.json":
			w.Write([]byte(testCatalog))
		case "/components/nav.html", "/components/footer.html":
			w.Write([]byte(testNav))
		case "/discography.json":
			w.Write([]byte(`[{"name": "Run", "album": "Singles", "releaseDate": "2025-08-13", "type": "single", "duration": "3:41", "url": "audio/run.wav"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(upstream string) *config.Config {
	return &config.Config{
		BaseURL:               "/publications/",
		CatalogCandidates:     []string{upstream + "/publications.json"},
		NavCandidates:         []string{upstream + "/components/nav.html"},
		FooterCandidates:      []string{upstream + "/components/footer.html"},
		DiscographyCandidates: []string{upstream + "/discography.json"},
		FragmentMinLength:     20,
		StaticDir:             "static",
	}
}

func loadedHandler(t *testing.T) *Handler {
	t.Helper()
	h := New(testConfig(newUpstream(t).URL))
	if err := h.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	return h
}

func TestHandleBooks(t *testing.T) {
	h := loadedHandler(t)

	rec := httptest.NewRecorder()
	h.HandleBooks(rec, httptest.NewRequest(http.MethodGet, "/api/books", nil))

	var resp booksResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}

	// Atlas pdf+epub merge into one book; the mobi item never appears.
	if resp.BookCount != 2 {
		t.Fatalf("expected 2 books, got %d (%s)", resp.BookCount, resp.Stats)
	}
	if resp.Stats != "2 books • 2 categories" {
		t.Errorf("unexpected stats %q", resp.Stats)
	}
	if len(resp.TypeOptions) != 2 || resp.TypeOptions[0] != "epub" {
		t.Errorf("unexpected type options %v", resp.TypeOptions)
	}
	for _, cat := range resp.Categories {
		for _, b := range cat.Books {
			if strings.Contains(b.Title, "Secret") {
				t.Error("mobi-backed book leaked into the response")
			}
		}
	}
}

func TestHandleBooksTypeFilter(t *testing.T) {
	h := loadedHandler(t)

	rec := httptest.NewRecorder()
	h.HandleBooks(rec, httptest.NewRequest(http.MethodGet, "/api/books?type=epub", nil))

	var resp booksResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.BookCount != 1 {
		t.Fatalf("expected only the epub-bearing book, got %d", resp.BookCount)
	}
	if resp.Categories[0].Books[0].Title != "Atlas" {
		t.Errorf("unexpected book %q", resp.Categories[0].Books[0].Title)
	}
}

func TestHandleCatalogDownload(t *testing.T) {
	h := loadedHandler(t)

	rec := httptest.NewRecorder()
	h.HandleCatalogDownload(rec, httptest.NewRequest(http.MethodGet, "/api/catalog.json", nil))

	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="publications.json"` {
		t.Errorf("unexpected disposition %q", got)
	}
	if rec.Body.String() != testCatalog {
		t.Error("download must return the raw catalog bytes unchanged")
	}
}

func TestHandleCatalogDownloadUnavailable(t *testing.T) {
	h := New(testConfig("http://127.0.0.1:0"))

	rec := httptest.NewRecorder()
	h.HandleCatalogDownload(rec, httptest.NewRequest(http.MethodGet, "/api/catalog.json", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestReloadFailureKeepsSnapshot(t *testing.T) {
	var broken atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(testCatalog))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CatalogCandidates = []string{srv.URL + "/publications.json"}
	h := New(cfg)
	if err := h.LoadCatalog(context.Background()); err != nil {
		t.Fatal(err)
	}

	broken.Store(true)

	rec := httptest.NewRecorder()
	h.HandleReload(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 from failed reload, got %d", rec.Code)
	}

	// The old snapshot still serves.
	rec = httptest.NewRecorder()
	h.HandleBooks(rec, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	var resp booksResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Loaded || resp.BookCount != 2 {
		t.Errorf("expected previous snapshot to survive, got %+v", resp.Page)
	}
}

func TestPublicationsPage(t *testing.T) {
	h := loadedHandler(t)

	rec := httptest.NewRecorder()
	h.HandlePublications(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `data-nav-loaded="true"`) {
		t.Error("expected nav marked loaded")
	}
	if !strings.Contains(body, "2 books • 2 categories") {
		t.Error("expected stats line in page")
	}
	if !strings.Contains(body, "Atlas") || !strings.Contains(body, "Cookbook") {
		t.Error("expected book titles in page")
	}
	if strings.Contains(body, "Secret") {
		t.Error("mobi item leaked into the page")
	}
}

func TestPublicationsPageCatalogDown(t *testing.T) {
	// No upstream at all: catalog, nav, and footer all fail.
	h := New(testConfig("http://127.0.0.1:0"))

	rec := httptest.NewRecorder()
	h.HandlePublications(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "0 books • 0 categories") {
		t.Error("expected zeroed stats when catalog is unavailable")
	}
	if !strings.Contains(body, `class="status bad"`) {
		t.Error("expected bad status banner")
	}
	if !strings.Contains(body, `data-nav-loaded="false"`) {
		t.Error("expected nav marked not loaded")
	}
}

func TestPublicationsPageEmptyResult(t *testing.T) {
	h := loadedHandler(t)

	rec := httptest.NewRecorder()
	h.HandlePublications(rec, httptest.NewRequest(http.MethodGet, "/?q=zzzznotfound", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `class="status warn"`) {
		t.Error("expected warn banner for empty result set")
	}
	if !strings.Contains(body, "0 books • 0 categories") {
		t.Error("expected zeroed stats for empty result set")
	}
}

func TestHandleDiscography(t *testing.T) {
	h := loadedHandler(t)

	rec := httptest.NewRecorder()
	h.HandleDiscography(rec, httptest.NewRequest(http.MethodGet, "/api/discography", nil))

	var tracks []discography.Track
	if err := json.NewDecoder(rec.Body).Decode(&tracks); err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].Name != "Run" {
		t.Errorf("unexpected tracks %+v", tracks)
	}
}

func TestHandleStaticTraversalGuard(t *testing.T) {
	h := loadedHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/static/foo", nil)
	req.URL.Path = "/static/../go.mod"
	h.HandleStatic(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for traversal attempt, got %d", rec.Code)
	}
}
