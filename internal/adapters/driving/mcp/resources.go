package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "merkuze://"

	StatsURI       = uriScheme + "index/stats"
	CollectionsURI = uriScheme + "index/collections"
	DocumentsURI   = uriScheme + "documents"

	documentPrefix = DocumentsURI + "/"
)

// documentInfo is a document listing entry. Content is left out; clients
// read it through the per-document template.
type documentInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploaded_at"`
}

func (s *Server) registerResources() {
	static := []struct {
		uri, name, desc string
		read            mcp.ResourceHandler
	}{
		{StatsURI, "index-stats", "Entry count and dimension of the active collection", s.handleStatsResource},
		{CollectionsURI, "collections", "Every physical collection in the vector store", s.handleCollectionsResource},
		{DocumentsURI, "documents", "Administrator-uploaded knowledge documents", s.handleDocumentsResource},
	}
	for _, r := range static {
		s.server.AddResource(&mcp.Resource{
			URI: r.uri, Name: r.name, Description: r.desc, MIMEType: "application/json",
		}, r.read)
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentPrefix + "{documentId}",
		Name:        "document-content",
		Description: "Text of one knowledge document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

func (s *Server) handleStatsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleCollectionsResource includes collections left behind by earlier
// embedding models, so an administrator can spot what `index reset` would free.
func (s *Server) handleCollectionsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	cols, err := s.ports.Index.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	if cols == nil {
		return jsonResource(req.Params.URI, []struct{}{})
	}
	return jsonResource(req.Params.URI, cols)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	infos := []documentInfo{}
	if s.ports.Document == nil {
		return jsonResource(req.Params.URI, infos)
	}
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	for _, d := range docs {
		infos = append(infos, documentInfo{
			ID:         d.ID,
			Title:      d.Title,
			Filename:   d.Filename,
			UploadedAt: d.UploadedAt.Format(time.RFC3339),
		})
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleDocumentContentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := extractDocumentID(req.Params.URI)
	if s.ports.Document == nil || id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	doc, err := s.ports.Document.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return textResource(req.Params.URI, "text/plain", doc.Content), nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return textResource(uri, "application/json", string(data)), nil
}

func textResource(uri, mime, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mime, Text: text}},
	}
}

// extractDocumentID returns the {documentId} of merkuze://documents/{documentId},
// or "" for any other URI.
func extractDocumentID(uri string) string {
	id, ok := strings.CutPrefix(uri, documentPrefix)
	if !ok {
		return ""
	}
	return id
}
