package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.DocumentRepository = (*documentRepository)(nil)

type documentRepository struct {
	db *sql.DB
}

const documentColumns = "id, title, filename, content, uploaded_at"

// Save inserts doc or replaces the stored one with the same ID.
func (r *documentRepository) Save(ctx context.Context, doc domain.KnowledgeDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			filename    = excluded.filename,
			content     = excluded.content,
			uploaded_at = excluded.uploaded_at`,
		doc.ID, doc.Title, doc.Filename, doc.Content, formatTime(doc.UploadedAt))
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// List returns every document, newest upload first.
func (r *documentRepository) List(ctx context.Context) ([]domain.KnowledgeDocument, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY uploaded_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.KnowledgeDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Delete reports domain.ErrNotFound for an unknown ID.
func (r *documentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	} else if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner is *sql.Row or *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.KnowledgeDocument, error) {
	var (
		doc      domain.KnowledgeDocument
		uploaded string
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.Filename, &doc.Content, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.UploadedAt = parseTime(uploaded)
	return &doc, nil
}
