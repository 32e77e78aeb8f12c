package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
)

var chatTheme string

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive terminal chat",
	Long: `Launch the interactive terminal chat for Merkuze.

Ask questions about the hospital and read answers drawn from the knowledge
base. The status bar shows whether the embedding model is ready and how many
chunks the active collection holds.

Controls:
  Enter    - Send / Select
  Ctrl+S   - Show sources of the last answer
  Ctrl+L   - Clear the conversation
  Esc      - Back
  Ctrl+C   - Quit

Use --theme light or --theme high-contrast on bright or low-colour terminals.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatTheme, "theme", styles.ThemeDark,
		fmt.Sprintf("colour theme %v", styles.ThemeNames()))
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	// Recover so a rendering bug restores the terminal with a stack trace.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = errors.New("chat crashed")
		}
	}()

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	theme, err := styles.ThemeByName(chatTheme)
	if err != nil {
		return err
	}

	if startEmbedder != nil {
		startEmbedder()
	}

	app, err := tui.NewApp(
		tui.NewPorts(chatService, indexService, documentService),
		tui.WithTheme(theme),
	)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	if err := app.WithContext(commandContext(cmd)).Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}

	return nil
}
