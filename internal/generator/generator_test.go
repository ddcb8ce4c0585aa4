package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGuessTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"grand_atlas.pdf", "grand atlas"},
		{"the-big-book.epub", "the big book"},
		{"already nice.pdf", "already nice"},
		{"messy__file--name.pdf", "messy file name"},
	}
	for _, tt := range tests {
		if got := GuessTitle(tt.in); got != tt.want {
			t.Errorf("GuessTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "books", "fiction", "grand_atlas.pdf"), "pdf bytes")
	writeFile(t, filepath.Join(root, "books", "cover.png"), "png bytes")
	writeFile(t, filepath.Join(root, "notes.txt"), "loose file")
	writeFile(t, filepath.Join(root, "index.html"), "skip me")
	writeFile(t, filepath.Join(root, ".hidden.pdf"), "skip me")
	writeFile(t, filepath.Join(root, ".git", "config"), "skip me")
	writeFile(t, filepath.Join(root, "shop_map.yaml"),
		"/books/fiction/grand_atlas.pdf: https://shop.example/products/grand-atlas\n")

	g := &Generator{
		Root:            root,
		ShopMapPath:     filepath.Join(root, "shop_map.yaml"),
		ShopFallbackURL: "https://shop.example/",
		Now:             func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}

	doc, err := g.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if doc.Count != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", doc.Count, doc.Items)
	}
	if doc.GeneratedUTC != "2026-08-30T12:00:00Z" {
		t.Errorf("unexpected generated_utc %q", doc.GeneratedUTC)
	}
	if len(doc.PaidExts) != 4 || doc.PaidExts[0] != "azw3" {
		t.Errorf("unexpected paid_exts %v", doc.PaidExts)
	}

	// Sorted by (category, visibility, title, path): category "books"
	// precedes "Unsorted", and paid precedes public within a category.
	if doc.Items[0].RelativePath != "books/fiction/grand_atlas.pdf" {
		t.Errorf("unexpected first item %q", doc.Items[0].RelativePath)
	}
	if doc.Items[len(doc.Items)-1].RelativePath != "notes.txt" {
		t.Errorf("unexpected last item %q", doc.Items[len(doc.Items)-1].RelativePath)
	}

	var atlas *Item
	for i := range doc.Items {
		if doc.Items[i].RelativePath == "books/fiction/grand_atlas.pdf" {
			atlas = &doc.Items[i]
		}
	}
	if atlas == nil {
		t.Fatalf("atlas entry missing from %+v", doc.Items)
	}
	if atlas.Title != "grand atlas" {
		t.Errorf("unexpected title %q", atlas.Title)
	}
	if atlas.Category != "books" {
		t.Errorf("unexpected category %q", atlas.Category)
	}
	if len(atlas.Tags) != 1 || atlas.Tags[0] != "fiction" {
		t.Errorf("unexpected tags %v", atlas.Tags)
	}
	if atlas.Visibility != "paid" {
		t.Errorf("expected pdf cataloged as paid, got %q", atlas.Visibility)
	}
	if atlas.ShopURL == nil || *atlas.ShopURL != "https://shop.example/products/grand-atlas" {
		t.Errorf("expected shop map URL, got %v", atlas.ShopURL)
	}
	if atlas.SizeBytes != int64(len("pdf bytes")) {
		t.Errorf("unexpected size %d", atlas.SizeBytes)
	}

	for _, it := range doc.Items {
		if it.RelativePath == "index.html" || it.RelativePath == ".hidden.pdf" || it.RelativePath == ".git/config" || it.RelativePath == "shop_map.yaml" {
			t.Errorf("junk entry %q survived the walk", it.RelativePath)
		}
		if it.Visibility == "public" && it.ShopURL != nil {
			t.Errorf("public entry %q should have null shop_url", it.RelativePath)
		}
	}
}

func TestBuildFallbackShopURL(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "books", "unmapped.epub"), "epub bytes")

	g := &Generator{Root: root, ShopFallbackURL: "https://shop.example/"}
	doc, err := g.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(doc.Items))
	}
	if doc.Items[0].ShopURL == nil || *doc.Items[0].ShopURL != "https://shop.example/" {
		t.Errorf("expected fallback shop URL, got %v", doc.Items[0].ShopURL)
	}
}

func TestWriteJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "books", "a.pdf"), "x")

	g := &Generator{Root: root, ShopFallbackURL: "https://shop.example/"}
	doc, err := g.Build()
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "publications.json")
	if err := g.WriteJSON(doc, out); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("expected trailing newline")
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["count"].(float64) != 1 {
		t.Errorf("unexpected count %v", decoded["count"])
	}
}

func TestLoadShopMapMissingFile(t *testing.T) {
	m, err := LoadShopMap(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing shop map should not error: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestLoadShopMapSkipsNonStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop_map.yaml")
	writeFile(t, path, "good.pdf: https://shop.example/good\nbad.pdf: 42\n")

	m, err := LoadShopMap(path)
	if err != nil {
		t.Fatalf("LoadShopMap failed: %v", err)
	}
	if m["good.pdf"] != "https://shop.example/good" {
		t.Errorf("expected good entry kept, got %v", m)
	}
	if _, ok := m["bad.pdf"]; ok {
		t.Error("expected non-string entry skipped")
	}
}

func TestWriteParquet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "books", "a.pdf"), "x")

	g := &Generator{Root: root, ShopFallbackURL: "https://shop.example/"}
	doc, err := g.Build()
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "publications.parquet")
	if err := WriteParquet(doc, out); err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty parquet file")
	}
}
