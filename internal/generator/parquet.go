package generator

import (
	"fmt"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ParquetItem is the flat schema for the analytics export. Tags collapse
// to a single comma-joined column; shop_url is empty for public entries.
type ParquetItem struct {
	Title        string `parquet:"title"`
	RelativePath string `parquet:"relative_path"`
	Category     string `parquet:"category"`
	Tags         string `parquet:"tags"`
	Ext          string `parquet:"ext"`
	SizeBytes    int64  `parquet:"size_bytes"`
	UpdatedUTC   string `parquet:"updated_utc"`
	Visibility   string `parquet:"visibility"`
	ShopURL      string `parquet:"shop_url"`
}

// WriteParquet writes the catalog's item list as a Parquet file.
func WriteParquet(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	rows := make([]ParquetItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		row := ParquetItem{
			Title:        it.Title,
			RelativePath: it.RelativePath,
			Category:     it.Category,
			Tags:         strings.Join(it.Tags, ","),
			Ext:          it.Ext,
			SizeBytes:    it.SizeBytes,
			UpdatedUTC:   it.UpdatedUTC,
			Visibility:   it.Visibility,
		}
		if it.ShopURL != nil {
			row.ShopURL = *it.ShopURL
		}
		rows = append(rows, row)
	}

	w := parquet.NewGenericWriter[ParquetItem](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return f.Close()
}
