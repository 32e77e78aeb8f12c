package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	indexJSON         bool
	indexRetireStale  bool
	indexHistoryLimit int
	indexResetForce   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Administer the vector index",
	Long: `Inspect and manage the physical collections behind the logical collection.

Each embedding dimension gets its own physical collection named
<collection>-d<dimension>. Switching to a model of another dimension creates a
new collection on the next ingestion; old ones stay until retired or reset.`,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the active collection's health",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

var indexEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the collection for the current embedding dimension",
	Args:  cobra.NoArgs,
	RunE:  runIndexEnsure,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List physical collections",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

var indexResetCmd = &cobra.Command{
	Use:   "reset [collection]",
	Short: "Delete a physical collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexReset,
}

var indexHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent ingestion runs",
	Args:  cobra.NoArgs,
	RunE:  runIndexHistory,
}

func init() {
	indexStatsCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")
	indexListCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")
	indexHistoryCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")
	indexEnsureCmd.Flags().BoolVar(&indexRetireStale, "retire-stale", false, "delete collections of other dimensions")
	indexResetCmd.Flags().BoolVarP(&indexResetForce, "force", "f", false, "skip the confirmation prompt")
	indexHistoryCmd.Flags().IntVarP(&indexHistoryLimit, "limit", "n", 10, "number of runs to show")

	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexEnsureCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexResetCmd)
	indexCmd.AddCommand(indexHistoryCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, err := indexService.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get index stats: %w", err)
	}

	if indexJSON {
		return outputJSON(cmd, stats)
	}

	if stats.Collection == "" {
		cmd.Printf("No collection for dimension %d yet. Run 'merkuze ingest' first.\n", stats.Dimension)
		return nil
	}

	cmd.Printf("Collection: %s\n", stats.Collection)
	cmd.Printf("Dimension:  %d\n", stats.Dimension)
	cmd.Printf("Chunks:     %d\n", stats.Count)
	return nil
}

func runIndexEnsure(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	handle, err := indexService.Ensure(commandContext(cmd), indexRetireStale)
	if err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	if handle.Created {
		cmd.Printf("Created collection %s (dimension %d)\n", handle.Name, handle.Dimension)
	} else {
		cmd.Printf("Collection %s (dimension %d) is ready\n", handle.Name, handle.Dimension)
	}
	for _, name := range handle.Retired {
		cmd.Printf("Retired %s\n", name)
	}
	return nil
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	collections, err := indexService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if indexJSON {
		return outputJSON(cmd, collections)
	}

	if len(collections) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, c := range collections {
		cmd.Printf("  %-40s dim=%-5d %s\n", c.Name, c.Dimension, c.Metric)
	}
	cmd.Printf("\nTotal: %d collections\n", len(collections))
	return nil
}

func runIndexReset(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	name := args[0]
	if !indexResetForce && !confirm(cmd, fmt.Sprintf("Delete collection %s and every vector in it?", name)) {
		cmd.Println("Aborted.")
		return nil
	}

	if err := indexService.Reset(commandContext(cmd), name); err != nil {
		return fmt.Errorf("failed to reset collection: %w", err)
	}

	cmd.Printf("Collection %s deleted.\n", name)
	return nil
}

func runIndexHistory(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	runs, err := ingestionService.History(commandContext(cmd), indexHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if indexJSON {
		return outputJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No ingestion runs recorded.")
		return nil
	}

	for _, r := range runs {
		cmd.Printf("  %s  %-32s ok=%-4d failed=%d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Collection, r.Succeeded, r.Failed)
	}
	return nil
}
