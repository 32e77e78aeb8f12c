package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func knowledgeDoc(id string, uploaded time.Time) domain.KnowledgeDocument {
	return domain.KnowledgeDocument{
		ID:         id,
		Title:      "Doc " + id,
		Filename:   id + ".json",
		Content:    `{"notes": "x"}`,
		UploadedAt: uploaded,
	}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	doc := knowledgeDoc("doc-1", time.Now())

	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc, *got)
}

func TestDocumentStore_SaveReplaces(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	doc := knowledgeDoc("doc-1", time.Now())
	require.NoError(t, store.Save(ctx, doc))

	doc.Title = "Updated"
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)

	docs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentStore_SaveRequiresID(t *testing.T) {
	store := NewDocumentStore()
	err := store.Save(context.Background(), knowledgeDoc("", time.Now()))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_GetNotFound(t *testing.T) {
	store := NewDocumentStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, knowledgeDoc("old", base)))
	require.NoError(t, store.Save(ctx, knowledgeDoc("new", base.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, knowledgeDoc("b-tie", base)))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "b-tie", docs[1].ID)
	assert.Equal(t, "old", docs[2].ID)
}

func TestDocumentStore_ListEmpty(t *testing.T) {
	docs, err := NewDocumentStore().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, knowledgeDoc("doc-1", time.Now())))

	require.NoError(t, store.Delete(ctx, "doc-1"))
	_, err := store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "doc-1"), domain.ErrNotFound)
}
