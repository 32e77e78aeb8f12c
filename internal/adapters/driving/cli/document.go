package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage knowledge documents",
	Long: `Upload, list, view or remove administrator knowledge documents.

Documents are kept as records for staff. They are not searchable until their
content is part of an ingested knowledge-base file.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentAdd,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document and its content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

var (
	documentTitle string
	documentJSON  bool
)

func init() {
	documentAddCmd.Flags().StringVarP(&documentTitle, "title", "t", "", "document title (default: file name)")
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	filename := filepath.Base(path)
	title := documentTitle
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	doc, err := documentService.Add(commandContext(cmd), title, filename, string(content))
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Document %s added: %s\n", doc.ID, doc.Title)
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		return outputJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title:    %s\n", docs[i].Title)
		if docs[i].Filename != "" {
			cmd.Printf("    File:     %s\n", docs[i].Filename)
		}
		cmd.Printf("    Uploaded: %s\n", docs[i].UploadedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  File:     %s\n", doc.Filename)
	cmd.Printf("  Uploaded: %s\n", doc.UploadedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	if err := documentService.Remove(commandContext(cmd), docID); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Document %s removed.\n", docID)
	return nil
}
