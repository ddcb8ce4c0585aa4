// Package view shapes filtered, aggregated books into the display model
// the page template and the books API share: category groups with
// locale-aware ordering, display links, format labels, and human-readable
// sizes.
package view

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/schizo-studios/pubsite/internal/catalog"
)

// Page is the full display model for one render.
type Page struct {
	Stats      string          `json:"stats"`
	BookCount  int             `json:"book_count"`
	Categories []CategoryGroup `json:"categories"`
}

// CategoryGroup is one category card: its name and the books under it,
// sorted by title.
type CategoryGroup struct {
	Name  string `json:"name"`
	Books []Book `json:"books"`
}

// Book is the display projection of one aggregated book.
type Book struct {
	Title    string   `json:"title"`
	Href     string   `json:"href,omitempty"`
	Paid     bool     `json:"paid"`
	Formats  []string `json:"formats"`
	Label    string   `json:"label"`
	Meta     string   `json:"meta,omitempty"`
	SubPath  string   `json:"sub_path,omitempty"`
	PDFPath  string   `json:"pdf_path,omitempty"`
	EPUBPath string   `json:"epub_path,omitempty"`
}

// Shape groups books by category and sorts both category names and the
// books inside each category with locale-aware collation.
func Shape(books []*catalog.Book, baseURL string) Page {
	grouped := make(map[string][]*catalog.Book)
	for _, b := range books {
		cat := b.Category
		if cat == "" {
			cat = "Unsorted"
		}
		grouped[cat] = append(grouped[cat], b)
	}

	coll := collate.New(language.Und)
	cats := make([]string, 0, len(grouped))
	for cat := range grouped {
		cats = append(cats, cat)
	}
	coll.SortStrings(cats)

	page := Page{
		BookCount:  len(books),
		Stats:      fmt.Sprintf("%d books • %d categories", len(books), len(cats)),
		Categories: make([]CategoryGroup, 0, len(cats)),
	}

	for _, cat := range cats {
		list := grouped[cat]
		sort.SliceStable(list, func(i, j int) bool {
			return coll.CompareString(list[i].Title, list[j].Title) < 0
		})

		group := CategoryGroup{Name: cat, Books: make([]Book, 0, len(list))}
		for _, b := range list {
			group.Books = append(group.Books, shapeBook(b, baseURL))
		}
		page.Categories = append(page.Categories, group)
	}

	return page
}

func shapeBook(b *catalog.Book, baseURL string) Book {
	v := Book{
		Title:   b.Title,
		Href:    Href(b, baseURL),
		Paid:    b.Visibility == catalog.VisibilityPaid,
		Formats: b.FormatList(),
		Label:   Label(b),
	}

	if b.PDF != nil {
		v.PDFPath = b.PDF.RelativePath
	}
	if b.EPUB != nil {
		v.EPUBPath = b.EPUB.RelativePath
	}

	var sub []string
	if v.PDFPath != "" {
		sub = append(sub, "PDF: "+v.PDFPath)
	}
	if v.EPUBPath != "" {
		sub = append(sub, "EPUB: "+v.EPUBPath)
	}
	v.SubPath = strings.Join(sub, " • ")

	var meta []string
	if formats := strings.Join(upper(v.Formats), ", "); formats != "" {
		meta = append(meta, formats)
	}
	if b.SizeBytes != 0 {
		meta = append(meta, HumanBytes(b.SizeBytes))
	}
	if b.UpdatedUTC != "" {
		meta = append(meta, "updated "+datePart(b.UpdatedUTC))
	}
	v.Meta = strings.Join(meta, " • ")

	return v
}

// Href picks the display link for a book: paid books route to the shop,
// public books prefer the PDF file, then the EPUB. Empty means there is
// nothing to link to.
func Href(b *catalog.Book, baseURL string) string {
	if b.Visibility == catalog.VisibilityPaid && b.ShopURL != "" {
		return b.ShopURL
	}
	pick := b.PDF
	if pick == nil {
		pick = b.EPUB
	}
	if pick == nil {
		return ""
	}
	return baseURL + strings.TrimLeft(pick.RelativePath, "/")
}

// Label renders the corner tag for a book card.
func Label(b *catalog.Book) string {
	if b.Visibility == catalog.VisibilityPaid {
		return "PAID (Shop)"
	}
	formats := strings.Join(upper(b.FormatList()), ", ")
	if formats == "" {
		return "FILE"
	}
	return formats
}

// TypeOptions returns the distinct formats across all books, sorted, for
// the type dropdown.
func TypeOptions(books []*catalog.Book) []string {
	seen := make(map[string]bool)
	for _, b := range books {
		for f := range b.Formats {
			if f != "" {
				seen[f] = true
			}
		}
	}
	options := make([]string, 0, len(seen))
	for f := range seen {
		options = append(options, f)
	}
	collate.New(language.Und).SortStrings(options)
	return options
}

// HumanBytes renders a byte count with binary (1024-based) scaling: no
// decimals for plain bytes or values of ten units and up, one decimal
// otherwise. Zero is special-cased as "0 B".
func HumanBytes(n int64) string {
	if n == 0 {
		return "0 B"
	}
	if n < 0 {
		return ""
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}

	if v >= 10 || i == 0 {
		return fmt.Sprintf("%.0f %s", v, units[i])
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}

func upper(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func datePart(updated string) string {
	if len(updated) > 10 {
		return updated[:10]
	}
	return updated
}
