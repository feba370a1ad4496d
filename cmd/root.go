package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Origin is the URL of the weaviate instance under test.
	Origin string
	// ConfigPath optionally points at a yaml scenario config.
	ConfigPath string
)

var rootCmd = &cobra.Command{
	Use:   "backup-and-restore",
	Short: "Verify data consistency across a write/delete/backup/restore lifecycle",
	Long: "Populates collections with a deterministic synthetic dataset, deletes " +
		"part of it, and asserts through several independent query modalities " +
		"that the observable state matches the expected state at every " +
		"checkpoint, before and after a backup/restore cycle.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&Origin, "origin", "o",
		"http://localhost:8080", "origin of the weaviate instance under test")
	rootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c",
		"", "optional yaml scenario config file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
