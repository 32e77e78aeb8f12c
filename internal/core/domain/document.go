package domain

import "time"

// KnowledgeDocument is an administrator-managed source document, such as an
// uploaded policy sheet. The repository that stores these is separate from the
// vector index; documents become retrievable only through ingestion.
type KnowledgeDocument struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// Filename is the original file name supplied on upload.
	Filename string

	// Content is the raw document body.
	Content string

	// UploadedAt is when the document was added.
	UploadedAt time.Time
}

// Chunk is one retrievable unit of hospital knowledge.
// Chunks are immutable; re-ingesting the same ID supersedes the previous entry.
type Chunk struct {
	// ID is a stable, human-meaningful slug such as "dept-0".
	ID string

	// Text is the natural-language rendering of one logical record.
	Text string
}

// MetadataText is the metadata key that carries a chunk's text in the index.
const MetadataText = "text"

// IndexedEntry is a vector stored in a collection.
type IndexedEntry struct {
	// ID matches a Chunk ID and is the primary key.
	ID string

	// Vector is the chunk embedding.
	Vector []float32

	// Metadata holds at least MetadataText.
	Metadata map[string]string
}

// Text returns the chunk text stored in the entry metadata.
func (e IndexedEntry) Text() string {
	return e.Metadata[MetadataText]
}
