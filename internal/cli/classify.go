package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
)

var (
	classifyReject float64
	classifyJSON   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a landmarks JSON document",
	Long: `Reads one hand as JSON ({"points": [{"x":..,"y":..,"z":..}, ...]} with 21
points) from file, or from stdin when no file or "-" is given, and prints the
recognized letter with every matching candidate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Float64Var(&classifyReject, "reject", gesture.DefaultRejectThreshold,
		"confidence the best match must exceed")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(classifyCmd)
}

type classifyOutput struct {
	Letter     gesture.Letter      `json:"letter"`
	Confidence float64             `json:"confidence"`
	Candidates []gesture.Candidate `json:"candidates"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	hand, err := detector.ParseHand(data)
	if err != nil {
		return err
	}

	c := gesture.NewClassifier(gesture.WithRejectThreshold(classifyReject))
	out := classifyOutput{Candidates: c.Candidates(hand.Slice())}
	res := c.ClassifyHand(&hand)
	out.Letter, out.Confidence = res.Letter, res.Confidence
	if out.Candidates == nil {
		out.Candidates = []gesture.Candidate{}
	}

	if classifyJSON {
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(encoded))
		return nil
	}

	if out.Letter == gesture.None {
		cmd.Println("No letter recognized.")
	} else {
		cmd.Printf("Letter: %s (%.2f)\n", out.Letter, out.Confidence)
	}
	if len(out.Candidates) == 0 {
		return nil
	}
	cmd.Println("Candidates:")
	for _, cand := range out.Candidates {
		cmd.Printf("  %s  %.2f\n", cand.Letter, cand.Confidence)
	}
	return nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read landmarks: %w", err)
	}
	return data, nil
}
