package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

var (
	ingestCollection  string
	ingestRetireStale bool
	ingestJSON        bool
	ingestDryRun      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|glob]...",
	Short: "Ingest the hospital knowledge base",
	Long: `Extracts chunks from structured knowledge-base files (JSON or YAML), embeds
each chunk and upserts it into the vector index.

Arguments may be file paths or glob patterns, including ** for recursive
matching. Chunks from all files are ingested in one run. Re-ingesting the
same chunk ID replaces the previous entry.

A chunk that fails is reported and skipped; the command only fails when the
run itself cannot start, for example on a schema error or an unreachable
vector store.

Examples:
  merkuze ingest data/hospital.json
  merkuze ingest 'kb/**/*.yaml' --retire-stale
  merkuze ingest data/hospital.json --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "logical collection name (default from settings)")
	ingestCmd.Flags().BoolVar(&ingestRetireStale, "retire-stale", false, "delete collections of other dimensions after migrating")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "extract chunks without embedding them")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if chunkExtractor == nil {
		return errors.New("extractor not configured")
	}
	if !ingestDryRun && ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	files, err := expandPaths(args)
	if err != nil {
		return err
	}

	chunks, err := extractFiles(cmd, files)
	if err != nil {
		return err
	}

	if ingestDryRun {
		cmd.Printf("Extracted %d chunks from %d files (dry run, nothing ingested)\n", len(chunks), len(files))
		return nil
	}

	opts := driving.IngestOptions{
		Collection:  ingestCollection,
		RetireStale: ingestRetireStale,
	}

	var bar *progressbar.ProgressBar
	if !ingestJSON && len(chunks) > 0 {
		bar = progressbar.NewOptions(len(chunks),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Embedding"),
			progressbar.OptionClearOnFinish(),
		)
		opts.Progress = func(done, _ int, _ string) {
			_ = bar.Set(done)
		}
	}

	report, err := ingestionService.Ingest(commandContext(cmd), chunks, opts)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		return outputJSON(cmd, report)
	}
	printReport(cmd, report)
	return nil
}

// expandPaths resolves globs and plain paths into a sorted, de-duplicated
// file list. A pattern that matches nothing is an error.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		sort.Strings(matches)

		found := 0
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			found++
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
		if found == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
	}

	return files, nil
}

// extractFiles extracts every file before anything is embedded, so a schema
// error in any file aborts the whole run.
func extractFiles(cmd *cobra.Command, files []string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		fileChunks, err := chunkExtractor.Extract(data)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		if !ingestJSON {
			cmd.Printf("%s: %d chunks\n", path, len(fileChunks))
		}
		chunks = append(chunks, fileChunks...)
	}
	return chunks, nil
}

func printReport(cmd *cobra.Command, report *domain.IngestionReport) {
	cmd.Printf("Collection: %s\n", report.Collection)
	cmd.Printf("Ingested %d of %d chunks in %s\n",
		len(report.Succeeded), report.Total(), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	if report.OK() {
		return
	}

	cmd.Printf("\nFailed (%d):\n", len(report.Failed))
	for _, f := range report.Failed {
		cmd.Printf("  %s: %s\n", f.ID, f.Reason)
	}
}

// outputJSON prints v as indented JSON.
func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
