package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/schizo-studios/pubsite/internal/config"
	"github.com/schizo-studios/pubsite/internal/discography"
	"github.com/spf13/cobra"
)

func newTracksCmd() *cobra.Command {
	var root, out, baseURL string

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Build discography.json from an audio directory",
		Long: `Scans an audio directory and writes the discography document.

Track names, albums, and release years come from embedded tags where
readable; untagged masters fall back to the filename and file mtime.`,
		Example: `  pubsite tracks --root music/audio --out music/data/discography.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if root == "" {
				root = cfg.AudioRoot
			}
			if baseURL == "" {
				baseURL = cfg.AudioBaseURL
			}
			if out == "" {
				out = filepath.Join(filepath.Dir(root), "data", "discography.json")
			}

			tracks, err := discography.Scan(root, baseURL)
			if err != nil {
				return err
			}
			if err := discography.WriteJSON(tracks, out); err != nil {
				return err
			}

			slog.Info("Discography written", "path", out, "tracks", len(tracks))
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Audio directory to scan (default from env)")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default <root>/../data/discography.json)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "URL prefix for track files (default from env)")

	return cmd
}
