package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SegmentSpec represents a caller-required segment in a specification
type SegmentSpec struct {
	Title       string `json:"title"`
	Duration    *int   `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Specification represents the caller's description of the outline to
// generate: what the workshop is about, how long it runs, and how closely
// the result should follow the reference corpus (0 = ignore references,
// 1 = follow them as closely as possible).
type Specification struct {
	Title          string        `json:"title"`
	Objectives     string        `json:"objectives"`
	TotalDuration  int           `json:"total_duration"`
	Segments       []SegmentSpec `json:"segments,omitempty"`
	StyleAdherence float64       `json:"style_adherence"`
	ReferenceIDs   []uuid.UUID   `json:"reference_ids,omitempty"`
}

// Value implements driver.Valuer for JSONB
func (s Specification) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *Specification) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// OutlineSegment represents one segment of a generated outline. Body holds
// the segment's complete text block including its heading line, so sibling
// segments can be spliced around it byte for byte.
type OutlineSegment struct {
	Title    string `json:"title"`
	Duration *int   `json:"duration,omitempty"`
	Body     string `json:"body"`
}

// OutlineSegments is the derived segment list, persisted as JSONB
type OutlineSegments []OutlineSegment

// Value implements driver.Valuer for JSONB
func (s OutlineSegments) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *OutlineSegments) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// GeneratedOutline represents a generated programme outline. Content is the
// authoritative text; Segments are derived from it and recomputed whenever
// the content changes.
type GeneratedOutline struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Objectives    string          `json:"objectives"`
	TotalDuration int             `json:"total_duration"`
	Content       string          `json:"content"`
	Segments      OutlineSegments `json:"segments"`
	Spec          Specification   `json:"spec"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
