package catalog

import (
	"regexp"
	"sort"
	"strings"
)

// Book is one logical publication: every file record of the same work
// (e.g. a PDF and an EPUB) merged into a single entry. Books are derived
// views, rebuilt from scratch on every load and never mutated in place.
type Book struct {
	Key        string
	Title      string
	Category   string
	Tags       []string
	Visibility string
	ShopURL    string
	Formats    map[string]bool
	PDF        *Item
	EPUB       *Item
	SizeBytes  int64
	UpdatedUTC string
	Items      []Item
}

// HasFormat reports whether the book includes the given file format.
func (b *Book) HasFormat(ext string) bool {
	return b.Formats[strings.ToLower(ext)]
}

// FormatList returns the book's formats sorted ascending.
func (b *Book) FormatList() []string {
	formats := make([]string, 0, len(b.Formats))
	for f := range b.Formats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

var (
	extSuffix  = regexp.MustCompile(`(?i)\.(pdf|epub)\s*$`)
	bookSuffix = regexp.MustCompile(`(?i)\s*\(book\)\s*$`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// CanonicalTitle derives the default grouping key for an item: its title,
// or else the last path segment, with a leaked file extension and a
// trailing "(Book)" marker stripped and whitespace collapsed.
func CanonicalTitle(it Item) string {
	raw := it.Title
	if raw == "" {
		raw = lastSegment(it.RelativePath)
	}

	t := extSuffix.ReplaceAllString(raw, "")
	t = bookSuffix.ReplaceAllString(t, "")
	t = spaceRun.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)

	if t == "" {
		return strings.TrimSpace(raw)
	}
	return t
}

// GroupKey computes the aggregation identity for an item. Paid items with
// a shop URL share identity through that URL regardless of title; paid
// identity takes precedence over title matching.
func GroupKey(it Item) string {
	if it.Visibility == VisibilityPaid && it.ShopURL != "" {
		return "PAID::" + it.ShopURL
	}
	return "TITLE::" + CanonicalTitle(it)
}

// GroupBooks merges normalized items into books, one per distinct group
// key. The result preserves first-seen key order; callers sort for
// display.
//
// Merge policy: the per-format representative slot is last write wins,
// sizes accumulate, updated_utc keeps the lexicographic maximum, and a
// paid item with a shop URL flips the whole book to paid permanently.
func GroupBooks(items []Item) []*Book {
	byKey := make(map[string]*Book, len(items))
	var order []string

	for i := range items {
		it := items[i]
		key := GroupKey(it)

		b, ok := byKey[key]
		if !ok {
			b = &Book{
				Key:        key,
				Title:      CanonicalTitle(it),
				Category:   bookCategory(it),
				Tags:       it.Tags,
				Visibility: it.Visibility,
				ShopURL:    it.ShopURL,
				Formats:    make(map[string]bool),
			}
			byKey[key] = b
			order = append(order, key)
		}

		b.Items = append(b.Items, it)

		if it.Ext != "" {
			b.Formats[it.Ext] = true
		}
		switch it.Ext {
		case "pdf":
			b.PDF = &it
		case "epub":
			b.EPUB = &it
		}

		if it.SizeBytes != nil {
			b.SizeBytes += *it.SizeBytes
		}
		if it.UpdatedUTC != "" && it.UpdatedUTC > b.UpdatedUTC {
			b.UpdatedUTC = it.UpdatedUTC
		}

		// Paid status is sticky: once any contributing item routes to the
		// shop, the whole book does.
		if it.Visibility == VisibilityPaid && it.ShopURL != "" {
			b.Visibility = VisibilityPaid
			b.ShopURL = it.ShopURL
		}
	}

	books := make([]*Book, 0, len(order))
	for _, key := range order {
		books = append(books, byKey[key])
	}
	return books
}

func bookCategory(it Item) string {
	if it.Category != "" {
		return it.Category
	}
	if seg, _, _ := strings.Cut(it.RelativePath, "/"); seg != "" {
		return seg
	}
	return "Unsorted"
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
