package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

// previewLength bounds the chunk text printed per result.
const previewLength = 160

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve the closest knowledge-base chunks",
	Long: `Embeds the query and returns the nearest chunks from the active collection,
highest similarity first. No answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	warmup(cmd)
	results, err := chatService.Retrieve(commandContext(cmd), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results domain.QueryResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, results[i].ID, results[i].Score)
		if results[i].Text != "" {
			cmd.Printf("      %s\n", preview(results[i].Text, previewLength))
		}
		cmd.Println()
	}

	return nil
}

// preview collapses whitespace and truncates text to at most n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-3]) + "..."
}
