package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "visor",
	Short: "Sync your followed manga lists from the catalog site.",
	Long: `Sync your followed manga lists from the catalog site.

Provide a configuration file using one of the following methods:
1. Use the --config <path> or -c <path> flag.
2. Place a config.yaml file in the default user configuration directory (e.g., ~/.config/visor/).
3. Place a config.yaml file a folder inside your home directory (e.g., ~/.visor/).
4. Place a config.yaml file in the directory of the binary.

Credentials saved with "visor login" take precedence over the ones in the config file.`,
	SilenceUsage: true,
}

func init() {
	initRootFlags()
	initLoginFlags()
	initBooksFlags()
	initChaptersFlags()
	initSyncFlags()
	initExportFlags()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(exportCmd)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
