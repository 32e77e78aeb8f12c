package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the knowledge base",
	Long: `Answers one question using the retrieval and answer pipeline.

When no grounded answer is possible, for example because the model is still
loading or generation timed out, the fallback message is printed instead.
The cause is logged with --verbose.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// askOutput is the JSON form of an answer.
type askOutput struct {
	RequestID string   `json:"request_id"`
	Answer    string   `json:"answer"`
	Fallback  bool     `json:"fallback"`
	Sources   []string `json:"sources"`
}

func init() {
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the chunks used as context")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	warmup(cmd)
	answer := chatService.Answer(commandContext(cmd), question)

	sources := make([]string, len(answer.Matches))
	for i, m := range answer.Matches {
		sources[i] = m.ID
	}

	if askJSON {
		return outputJSON(cmd, askOutput{
			RequestID: answer.RequestID,
			Answer:    answer.Text,
			Fallback:  answer.Fallback,
			Sources:   sources,
		})
	}

	cmd.Println(answer.Text)

	if askSources && len(answer.Matches) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, m := range answer.Matches {
			cmd.Printf("  %s (%.3f)\n", m.ID, m.Score)
		}
	}

	return nil
}
