package catalog

import (
	"encoding/json"
	"strings"
)

// AllowedExts is the strict allow-list of file types that may appear in
// the catalog. Records with any other extension are dropped at the
// normalization boundary and never reach aggregation.
var AllowedExts = map[string]bool{
	"pdf":  true,
	"epub": true,
}

const (
	VisibilityPublic = "public"
	VisibilityPaid   = "paid"
)

// Item is a catalog entry after normalization. Every Item has a non-empty
// RelativePath (leading slashes stripped) and an extension from
// AllowedExts.
type Item struct {
	Title        string   `json:"title,omitempty"`
	RelativePath string   `json:"relative_path"`
	Category     string   `json:"category,omitempty"`
	Tags         []string `json:"tags"`
	SizeBytes    *int64   `json:"size_bytes,omitempty"`
	UpdatedUTC   string   `json:"updated_utc,omitempty"`
	Ext          string   `json:"ext"`
	Visibility   string   `json:"visibility"`
	ShopURL      string   `json:"shop_url,omitempty"`
}

// rawItem mirrors the loosely-typed JSON entries found in hand-edited or
// legacy catalogs. Fields that third parties routinely get wrong are held
// as RawMessage so a single bad field can be coerced instead of rejecting
// the whole entry.
type rawItem struct {
	Title        string          `json:"title"`
	RelativePath string          `json:"relative_path"`
	Path         string          `json:"path"` // legacy key
	Category     string          `json:"category"`
	Tags         json.RawMessage `json:"tags"`
	SizeBytes    json.RawMessage `json:"size_bytes"`
	UpdatedUTC   string          `json:"updated_utc"`
	Ext          string          `json:"ext"`
	Visibility   string          `json:"visibility"`
	ShopURL      string          `json:"shop_url"`
}

// normalize converts a raw record into an Item. The second return value is
// false when the record must be dropped: empty path after stripping, or an
// extension outside AllowedExts.
func normalize(r rawItem) (Item, bool) {
	path := r.RelativePath
	if path == "" {
		path = r.Path
	}
	path = strings.TrimLeft(path, "/")

	ext := strings.ToLower(r.Ext)
	if ext == "" {
		ext = ExtOf(path)
	}

	if path == "" || !AllowedExts[ext] {
		return Item{}, false
	}

	visibility := r.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	return Item{
		Title:        r.Title,
		RelativePath: path,
		Category:     r.Category,
		Tags:         coerceTags(r.Tags),
		SizeBytes:    coerceSize(r.SizeBytes),
		UpdatedUTC:   r.UpdatedUTC,
		Ext:          ext,
		Visibility:   visibility,
		ShopURL:      r.ShopURL,
	}, true
}

// coerceTags keeps tags only when they decode as a list of strings;
// anything else becomes an empty list.
func coerceTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// coerceSize keeps size_bytes only when numeric; anything else is absent,
// not zero.
func coerceSize(raw json.RawMessage) *int64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	n := int64(f)
	return &n
}

// ExtOf derives the lower-cased extension from a filename: the substring
// after the last dot, with any query string or fragment suffix ignored.
// No dot, or anything but letters and digits after it, yields "".
func ExtOf(path string) string {
	clean := path
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.ToLower(clean)

	dot := strings.LastIndexByte(clean, '.')
	if dot < 0 || dot == len(clean)-1 {
		return ""
	}
	ext := clean[dot+1:]
	for _, c := range ext {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
