package catalog

import "strings"

// Filter holds the two user-facing browse controls: a free-text query and
// an exact format filter. The zero value matches everything.
type Filter struct {
	Query string
	Type  string
}

func (f Filter) normQuery() string {
	return strings.TrimSpace(strings.ToLower(f.Query))
}

func (f Filter) normType() string {
	return strings.TrimSpace(strings.ToLower(f.Type))
}

// MatchItem is the item-level pre-filter: allowed extension, optional
// exact format match, and the query matched case-insensitively as a
// substring over every searchable field. The format check here only
// reduces aggregation work; FilterBooks re-applies it authoritatively.
func (f Filter) MatchItem(it Item) bool {
	ext := strings.ToLower(it.Ext)
	if !AllowedExts[ext] {
		return false
	}

	if t := f.normType(); t != "" && ext != t {
		return false
	}

	q := f.normQuery()
	if q == "" {
		return true
	}

	haystack := strings.ToLower(strings.Join([]string{
		it.Title,
		it.RelativePath,
		it.Category,
		strings.Join(it.Tags, " "),
		it.Ext,
		it.Visibility,
		it.ShopURL,
	}, " | "))

	return strings.Contains(haystack, q)
}

// FilterBooks applies the format filter after aggregation. A book keeps
// its place when its format set contains the requested type, so a book
// holding both a PDF and an EPUB matches a filter for either; the
// item-level pre-filter alone cannot guarantee that once merging combines
// formats from different items.
func (f Filter) FilterBooks(books []*Book) []*Book {
	t := f.normType()
	if t == "" {
		return books
	}
	out := make([]*Book, 0, len(books))
	for _, b := range books {
		if b.Formats[t] {
			out = append(out, b)
		}
	}
	return out
}

// Apply runs the full browse pipeline: item pre-filter, aggregation into
// books, then the book-level format filter.
func (f Filter) Apply(items []Item) []*Book {
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if f.MatchItem(it) {
			kept = append(kept, it)
		}
	}
	return f.FilterBooks(GroupBooks(kept))
}
