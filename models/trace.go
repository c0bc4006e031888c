package models

import (
	"time"

	"github.com/google/uuid"
)

// TraceKind represents the kind of generation a trace records
type TraceKind string

const (
	TraceKindFull    TraceKind = "full"
	TraceKindSegment TraceKind = "segment"
)

// TraceStatus represents the outcome of a generation attempt
type TraceStatus string

const (
	TraceStatusSucceeded TraceStatus = "succeeded"
	TraceStatusFailed    TraceStatus = "failed"
)

// GenerationTrace represents one call to the generation model, kept for
// replay and debugging since generation output is non-deterministic.
type GenerationTrace struct {
	ID           uuid.UUID   `json:"id"`
	OutlineID    *uuid.UUID  `json:"outline_id,omitempty"`
	Kind         TraceKind   `json:"kind"`
	Status       TraceStatus `json:"status"`
	Provider     string      `json:"provider"`
	Model        string      `json:"model"`
	Prompt       string      `json:"prompt"`
	RawResponse  string      `json:"raw_response"`
	Attempts     int         `json:"attempts"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
