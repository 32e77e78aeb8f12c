package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the chunks extracted from a knowledge-base file",
	Long: `Runs the record extractor on a knowledge-base file and prints every chunk
without embedding anything. The output is deterministic: the same file always
yields the same chunk IDs and texts in the same order.`,
	Annotations: map[string]string{scopeAnnotation: string(ScopeSettings)},
	Args:        cobra.ExactArgs(1),
	RunE:        runExtract,
}

// extractedChunk is the JSON form of a chunk.
type extractedChunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if chunkExtractor == nil {
		return errors.New("extractor not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	chunks, err := chunkExtractor.Extract(data)
	if err != nil {
		return fmt.Errorf("extract %s: %w", args[0], err)
	}

	if extractJSON {
		out := make([]extractedChunk, len(chunks))
		for i, c := range chunks {
			out[i] = extractedChunk{ID: c.ID, Text: c.Text}
		}
		return outputJSON(cmd, out)
	}

	for _, c := range chunks {
		cmd.Printf("[%s]\n%s\n\n", c.ID, c.Text)
	}
	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}
