package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/metakael/programme-outline/models"
)

// ReferenceRepository handles database operations for reference documents
type ReferenceRepository struct {
	db *pgxpool.Pool
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(db *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Create inserts a reference document. The database assigns the id and the
// ingestion sequence number.
func (r *ReferenceRepository) Create(ctx context.Context, ref *models.ReferenceDocument) error {
	query := `
		INSERT INTO reference_documents (
			title, description, filename, format, content, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, ingest_seq, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		ref.Title,
		ref.Description,
		ref.Filename,
		ref.Format,
		ref.Content,
		ref.StoragePath,
	).Scan(&ref.ID, &ref.IngestSeq, &ref.CreatedAt, &ref.UpdatedAt)

	return err
}

// GetByID retrieves a reference document by ID
func (r *ReferenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReferenceDocument, error) {
	ref := &models.ReferenceDocument{}
	query := `
		SELECT id, title, description, filename, format, content, storage_path,
			ingest_seq, created_at, updated_at
		FROM reference_documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&ref.ID,
		&ref.Title,
		&ref.Description,
		&ref.Filename,
		&ref.Format,
		&ref.Content,
		&ref.StoragePath,
		&ref.IngestSeq,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return ref, nil
}

// GetByIDs retrieves the given reference documents in ingestion order.
// Unknown ids are silently absent from the result.
func (r *ReferenceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.ReferenceDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, title, description, filename, format, content, storage_path,
			ingest_seq, created_at, updated_at
		FROM reference_documents
		WHERE id = ANY($1)
		ORDER BY ingest_seq ASC`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.ReferenceDocument
	for rows.Next() {
		ref := &models.ReferenceDocument{}
		err := rows.Scan(
			&ref.ID,
			&ref.Title,
			&ref.Description,
			&ref.Filename,
			&ref.Format,
			&ref.Content,
			&ref.StoragePath,
			&ref.IngestSeq,
			&ref.CreatedAt,
			&ref.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// ListAll retrieves every reference document in ingestion order
func (r *ReferenceRepository) ListAll(ctx context.Context) ([]*models.ReferenceDocument, error) {
	query := `
		SELECT id, title, description, filename, format, content, storage_path,
			ingest_seq, created_at, updated_at
		FROM reference_documents
		ORDER BY ingest_seq ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.ReferenceDocument
	for rows.Next() {
		ref := &models.ReferenceDocument{}
		err := rows.Scan(
			&ref.ID,
			&ref.Title,
			&ref.Description,
			&ref.Filename,
			&ref.Format,
			&ref.Content,
			&ref.StoragePath,
			&ref.IngestSeq,
			&ref.CreatedAt,
			&ref.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// Delete deletes a reference document record
func (r *ReferenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM reference_documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
