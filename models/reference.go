package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceFormat represents the format a reference document arrived in
type SourceFormat string

const (
	FormatPlain    SourceFormat = "plain"
	FormatMarkdown SourceFormat = "markdown"
	FormatPDF      SourceFormat = "pdf"
	FormatDOCX     SourceFormat = "docx"
)

// ElementKind represents the kind of a structural element
type ElementKind string

const (
	ElementTitle     ElementKind = "title"
	ElementSegment   ElementKind = "segment"
	ElementBullet    ElementKind = "bullet"
	ElementParagraph ElementKind = "paragraph"
)

// StructuralElement represents one parsed unit of a document. The parser
// emits them in document order; the sequence is recomputed on every parse.
type StructuralElement struct {
	Kind ElementKind `json:"kind"`
	Text string      `json:"text"`

	// Segment fields. Duration is minutes; nil means the source carried no
	// timing annotation, which is distinct from an explicit zero.
	Ordinal  int  `json:"ordinal,omitempty"`
	Duration *int `json:"duration,omitempty"`

	// Bullet indent level, zero-based.
	Level int `json:"level,omitempty"`
}

// ReferenceDocument represents an ingested reference document
type ReferenceDocument struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Filename    string       `json:"filename"`
	Format      SourceFormat `json:"format"`
	Content     string       `json:"content"`
	StoragePath string       `json:"storage_path"`
	IngestSeq   int64        `json:"ingest_seq"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Excerpt represents a retrieved slice of a reference document
type Excerpt struct {
	ReferenceID    uuid.UUID `json:"reference_id"`
	ReferenceTitle string    `json:"reference_title"`
	SegmentTitle   string    `json:"segment_title,omitempty"`
	Text           string    `json:"text"`
	Score          float64   `json:"score"`
}
