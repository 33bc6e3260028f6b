package cli

import (
	"github.com/spf13/cobra"

	"github.com/ayusman/fingerspell/internal/gesture"
)

var lettersCmd = &cobra.Command{
	Use:   "letters",
	Short: "List the fingerspelling alphabet",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("LETTER  DIFFICULTY  HANDSHAPE")
		for _, s := range gesture.Alphabet.Signs() {
			cmd.Printf("%-6s  %-10d  %s\n", s.Letter, s.Difficulty, s.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(lettersCmd)
}
