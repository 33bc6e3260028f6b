// Package cli implements the fingerspell command line.
package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "fingerspell",
	Short: "Recognize ASL fingerspelling from hand landmarks",
	Long: `fingerspell classifies a single hand pose as one of the 26 letters of
the ASL fingerspelling alphabet. It serves a practice page and API, and can
watch a camera and send recognized letters to output plugins.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $FINGERSPELL_CONFIG or ./config.yaml)")
}

// Execute loads .env if present and runs the root command.
func Execute() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return rootCmd.Execute()
}
