package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/schizo-studios/pubsite/internal/config"
	"github.com/schizo-studios/pubsite/internal/generator"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var root, out, shopMap, fallback, parquetOut string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build publications.json from a publications directory",
		Long: `Walks a publications directory and writes the catalog document.

Paid formats (pdf/epub/mobi/azw3) are cataloged as visibility="paid" and
always route to a shop URL from the shop map, never a direct download.
Everything else is public and keeps its local relative path.`,
		Example: `  # Build the catalog in place
  pubsite generate --root /var/www/publications

  # Also export a flat Parquet copy for analysis
  pubsite generate --root /var/www/publications --parquet items.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if root == "" {
				root = cfg.PublicationsRoot
			}
			if shopMap == "" {
				shopMap = cfg.ShopMapPath
			}
			if fallback == "" {
				fallback = cfg.ShopFallbackURL
			}
			if out == "" {
				out = filepath.Join(root, "publications.json")
			}

			g := &generator.Generator{
				Root:            root,
				ShopMapPath:     shopMap,
				ShopFallbackURL: fallback,
			}

			doc, err := g.Build()
			if err != nil {
				return err
			}
			if err := g.WriteJSON(doc, out); err != nil {
				return err
			}
			slog.Info("Catalog written", "path", out, "items", doc.Count)

			if parquetOut != "" {
				if err := generator.WriteParquet(doc, parquetOut); err != nil {
					return err
				}
				slog.Info("Parquet export written", "path", parquetOut, "rows", doc.Count)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Publications directory to walk (default from env)")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default <root>/publications.json)")
	cmd.Flags().StringVar(&shopMap, "shop-map", "", "Shop map file, YAML or JSON (default from env)")
	cmd.Flags().StringVar(&fallback, "shop-fallback", "", "Shop URL for unmapped paid items (default from env)")
	cmd.Flags().StringVar(&parquetOut, "parquet", "", "Also export the item list as Parquet")

	return cmd
}
