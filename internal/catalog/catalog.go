// Package catalog holds the publications domain: tolerant normalization of
// raw catalog records, aggregation of file records into logical books, and
// the query/format filtering that drives the browsing UI.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Catalog is a parsed publications document: generator metadata plus the
// normalized item list. Only items that survive normalization are kept.
type Catalog struct {
	GeneratedFrom string `json:"generated_from,omitempty"`
	GeneratedUTC  string `json:"generated_utc,omitempty"`
	Items         []Item `json:"items"`
}

// Parse decodes a publications.json document. Individual entries that are
// malformed, unresolvable, or outside the allowed file types are dropped;
// only an unusable document as a whole is an error.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		GeneratedFrom string            `json:"generated_from"`
		GeneratedUTC  string            `json:"generated_utc"`
		Items         []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		GeneratedFrom: doc.GeneratedFrom,
		GeneratedUTC:  doc.GeneratedUTC,
		Items:         make([]Item, 0, len(doc.Items)),
	}

	dropped := 0
	for i, raw := range doc.Items {
		var r rawItem
		if err := json.Unmarshal(raw, &r); err != nil {
			slog.Warn("Dropping malformed catalog entry", "index", i, "err", err)
			dropped++
			continue
		}
		item, ok := normalize(r)
		if !ok {
			dropped++
			continue
		}
		c.Items = append(c.Items, item)
	}

	if dropped > 0 {
		slog.Debug("Catalog normalized", "kept", len(c.Items), "dropped", dropped)
	}

	return c, nil
}
