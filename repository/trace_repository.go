package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/metakael/programme-outline/models"
)

// TraceRepository handles database operations for generation traces
type TraceRepository struct {
	db *pgxpool.Pool
}

// NewTraceRepository creates a new trace repository
func NewTraceRepository(db *pgxpool.Pool) *TraceRepository {
	return &TraceRepository{db: db}
}

// Create inserts a generation trace
func (r *TraceRepository) Create(ctx context.Context, trace *models.GenerationTrace) error {
	query := `
		INSERT INTO generation_traces (
			outline_id, kind, status, provider, model, prompt, raw_response,
			attempts, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		trace.OutlineID,
		trace.Kind,
		trace.Status,
		trace.Provider,
		trace.Model,
		trace.Prompt,
		trace.RawResponse,
		trace.Attempts,
		trace.ErrorMessage,
	).Scan(&trace.ID, &trace.CreatedAt)

	return err
}

// GetByID retrieves a generation trace by ID
func (r *TraceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationTrace, error) {
	trace := &models.GenerationTrace{}
	query := `
		SELECT id, outline_id, kind, status, provider, model, prompt,
			raw_response, attempts, error_message, created_at
		FROM generation_traces
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&trace.ID,
		&trace.OutlineID,
		&trace.Kind,
		&trace.Status,
		&trace.Provider,
		&trace.Model,
		&trace.Prompt,
		&trace.RawResponse,
		&trace.Attempts,
		&trace.ErrorMessage,
		&trace.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return trace, nil
}

// ListByOutlineID retrieves all traces recorded for an outline, newest
// first.
func (r *TraceRepository) ListByOutlineID(ctx context.Context, outlineID uuid.UUID) ([]*models.GenerationTrace, error) {
	query := `
		SELECT id, outline_id, kind, status, provider, model, prompt,
			raw_response, attempts, error_message, created_at
		FROM generation_traces
		WHERE outline_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, outlineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var traces []*models.GenerationTrace
	for rows.Next() {
		trace := &models.GenerationTrace{}
		err := rows.Scan(
			&trace.ID,
			&trace.OutlineID,
			&trace.Kind,
			&trace.Status,
			&trace.Provider,
			&trace.Model,
			&trace.Prompt,
			&trace.RawResponse,
			&trace.Attempts,
			&trace.ErrorMessage,
			&trace.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		traces = append(traces, trace)
	}

	return traces, rows.Err()
}
