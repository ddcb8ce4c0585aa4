package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pubsite",
		Short: "Schizo Studios site server and catalog tooling",
		Long: `Pubsite serves the Schizo Studios publications browser and builds the
site's data files.

The serve command renders the publications catalog (grouped into logical
books), injects shared nav/footer fragments, and exposes the JSON APIs the
site uses. The generate and tracks commands build publications.json and
discography.json from directories on disk.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newTracksCmd())

	return cmd
}
