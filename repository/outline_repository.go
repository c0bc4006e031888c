package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/metakael/programme-outline/models"
)

// OutlineRepository handles database operations for generated outlines
type OutlineRepository struct {
	db *pgxpool.Pool
}

// NewOutlineRepository creates a new outline repository
func NewOutlineRepository(db *pgxpool.Pool) *OutlineRepository {
	return &OutlineRepository{db: db}
}

// Create inserts a generated outline
func (r *OutlineRepository) Create(ctx context.Context, outline *models.GeneratedOutline) error {
	query := `
		INSERT INTO generated_outlines (
			title, objectives, total_duration, content, segments, spec
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		outline.Title,
		outline.Objectives,
		outline.TotalDuration,
		outline.Content,
		outline.Segments,
		outline.Spec,
	).Scan(&outline.ID, &outline.CreatedAt, &outline.UpdatedAt)

	return err
}

// GetByID retrieves a generated outline by ID
func (r *OutlineRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedOutline, error) {
	outline := &models.GeneratedOutline{}
	query := `
		SELECT id, title, objectives, total_duration, content, segments, spec,
			created_at, updated_at
		FROM generated_outlines
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&outline.ID,
		&outline.Title,
		&outline.Objectives,
		&outline.TotalDuration,
		&outline.Content,
		&outline.Segments,
		&outline.Spec,
		&outline.CreatedAt,
		&outline.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return outline, nil
}

// List retrieves generated outlines, newest first
func (r *OutlineRepository) List(ctx context.Context, limit, offset int) ([]*models.GeneratedOutline, error) {
	query := `
		SELECT id, title, objectives, total_duration, content, segments, spec,
			created_at, updated_at
		FROM generated_outlines
		ORDER BY created_at DESC`

	var args []interface{}
	argIndex := 1

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outlines []*models.GeneratedOutline
	for rows.Next() {
		outline := &models.GeneratedOutline{}
		err := rows.Scan(
			&outline.ID,
			&outline.Title,
			&outline.Objectives,
			&outline.TotalDuration,
			&outline.Content,
			&outline.Segments,
			&outline.Spec,
			&outline.CreatedAt,
			&outline.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		outlines = append(outlines, outline)
	}

	return outlines, rows.Err()
}

// Update updates a generated outline
func (r *OutlineRepository) Update(ctx context.Context, outline *models.GeneratedOutline) error {
	query := `
		UPDATE generated_outlines SET
			title = $2,
			objectives = $3,
			total_duration = $4,
			content = $5,
			segments = $6,
			spec = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		outline.ID,
		outline.Title,
		outline.Objectives,
		outline.TotalDuration,
		outline.Content,
		outline.Segments,
		outline.Spec,
	).Scan(&outline.UpdatedAt)

	return err
}

// UpdateContent updates only the outline text and its derived segments
func (r *OutlineRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, segments models.OutlineSegments) error {
	query := `
		UPDATE generated_outlines SET
			content = $2,
			segments = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, content, segments)
	return err
}

// Delete deletes a generated outline
func (r *OutlineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM generated_outlines WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
