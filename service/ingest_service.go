package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/metakael/programme-outline/extract"
	"github.com/metakael/programme-outline/index"
	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/parser"
	"github.com/metakael/programme-outline/repository"
	"github.com/metakael/programme-outline/storage"

	"github.com/google/uuid"
)

// IngestService handles reference document ingestion: normalizing uploads,
// persisting them, and keeping the embedding index in step with the corpus.
type IngestService struct {
	referenceRepo *repository.ReferenceRepository
	store         storage.Storage
	idx           *index.Index
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithReferenceRepository sets the reference repository
func IngestWithReferenceRepository(repo *repository.ReferenceRepository) IngestServiceOption {
	return func(s *IngestService) {
		s.referenceRepo = repo
	}
}

// IngestWithStorage sets the blob storage for raw uploads
func IngestWithStorage(store storage.Storage) IngestServiceOption {
	return func(s *IngestService) {
		s.store = store
	}
}

// IngestWithIndex sets the embedding index
func IngestWithIndex(idx *index.Index) IngestServiceOption {
	return func(s *IngestService) {
		s.idx = idx
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrReferenceNotFound = errors.New("reference document not found")
	ErrReferenceTooLarge = errors.New("reference document exceeds the upload size limit")
	ErrReferenceEmpty    = errors.New("reference document contains no text")
)

const maxUploadBytes = 16 << 20 // 16 MB

// IngestReferenceRequest represents a request to ingest a reference document
type IngestReferenceRequest struct {
	Filename    string
	Description *string
	Data        io.Reader
}

// IngestReferenceResult represents the result of ingesting a reference
type IngestReferenceResult struct {
	Reference *models.ReferenceDocument
}

// IngestReference normalizes and parses an upload, stores the raw bytes,
// records the reference row, and rebuilds the index so the new document is
// retrievable immediately.
func (s *IngestService) IngestReference(ctx context.Context, req IngestReferenceRequest) (*IngestReferenceResult, error) {
	if s.referenceRepo == nil {
		return nil, errors.New("reference repository not set")
	}
	if s.store == nil {
		return nil, errors.New("storage not set")
	}

	raw, err := io.ReadAll(io.LimitReader(req.Data, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(raw) > maxUploadBytes {
		return nil, ErrReferenceTooLarge
	}

	format := extract.DetectFormat(req.Filename)
	normalized, err := extract.Normalize(raw, format)
	if err != nil {
		return nil, err
	}
	if normalized.Text == "" {
		return nil, ErrReferenceEmpty
	}

	// Title comes from the document structure when it has one; the
	// filename is the fallback.
	p := parser.New(parser.WithBulletMarkers(normalized.Markers...))
	title := parser.DocumentTitle(p.Parse(normalized.Text))
	filename := filepath.Base(req.Filename)
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	storagePath, err := s.store.Upload(ctx, uuid.New(), filename, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	ref := &models.ReferenceDocument{
		Title:       title,
		Description: req.Description,
		Filename:    filename,
		Format:      format,
		Content:     normalized.Text,
		StoragePath: storagePath,
	}

	if err := s.referenceRepo.Create(ctx, ref); err != nil {
		if cleanupErr := s.store.Delete(ctx, storagePath); cleanupErr != nil {
			log.Printf("Warning: failed to remove stored upload %s: %v", storagePath, cleanupErr)
		}
		return nil, fmt.Errorf("failed to save reference document: %w", err)
	}

	if err := s.RebuildIndex(ctx); err != nil {
		log.Printf("Warning: failed to rebuild index after ingesting %s: %v", filename, err)
	}

	return &IngestReferenceResult{Reference: ref}, nil
}

// GetReferenceRequest represents a request to get a reference document
type GetReferenceRequest struct {
	ID uuid.UUID
}

// GetReferenceResult represents the result of getting a reference
type GetReferenceResult struct {
	Reference *models.ReferenceDocument
}

// GetReference retrieves a reference document by ID
func (s *IngestService) GetReference(ctx context.Context, req GetReferenceRequest) (*GetReferenceResult, error) {
	if s.referenceRepo == nil {
		return nil, errors.New("reference repository not set")
	}

	ref, err := s.referenceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrReferenceNotFound
	}

	return &GetReferenceResult{Reference: ref}, nil
}

// ListReferencesRequest represents a request to list reference documents
type ListReferencesRequest struct{}

// ListReferencesResult represents the result of listing references
type ListReferencesResult struct {
	References []*models.ReferenceDocument
}

// ListReferences lists all reference documents in ingestion order
func (s *IngestService) ListReferences(ctx context.Context, req ListReferencesRequest) (*ListReferencesResult, error) {
	if s.referenceRepo == nil {
		return nil, errors.New("reference repository not set")
	}

	refs, err := s.referenceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ListReferencesResult{References: refs}, nil
}

// DeleteReferenceRequest represents a request to delete a reference document
type DeleteReferenceRequest struct {
	ID uuid.UUID
}

// DeleteReferenceResult represents the result of deleting a reference
type DeleteReferenceResult struct{}

// DeleteReference removes a reference document's row and stored upload,
// then rebuilds the index so its vectors disappear with it.
func (s *IngestService) DeleteReference(ctx context.Context, req DeleteReferenceRequest) (*DeleteReferenceResult, error) {
	if s.referenceRepo == nil {
		return nil, errors.New("reference repository not set")
	}
	if s.store == nil {
		return nil, errors.New("storage not set")
	}

	ref, err := s.referenceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrReferenceNotFound
	}

	if err := s.referenceRepo.Delete(ctx, req.ID); err != nil {
		return nil, fmt.Errorf("failed to delete reference document: %w", err)
	}

	if ref.StoragePath != "" {
		if err := s.store.Delete(ctx, ref.StoragePath); err != nil {
			log.Printf("Warning: failed to delete stored upload %s: %v", ref.StoragePath, err)
		}
	}

	if err := s.RebuildIndex(ctx); err != nil {
		log.Printf("Warning: failed to rebuild index after deleting %s: %v", req.ID, err)
	}

	return &DeleteReferenceResult{}, nil
}

// RebuildIndex reparses the whole corpus and swaps in a fresh snapshot.
// Queries running against the previous snapshot are not disturbed.
func (s *IngestService) RebuildIndex(ctx context.Context) error {
	if s.referenceRepo == nil {
		return errors.New("reference repository not set")
	}
	if s.idx == nil {
		return errors.New("index not set")
	}

	refs, err := s.referenceRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reference documents: %w", err)
	}

	docs := make([]index.Document, 0, len(refs))
	for _, ref := range refs {
		p := parser.New(parser.WithBulletMarkers(extract.ScanMarkers(ref.Content)...))
		doc := index.Document{
			ID:    ref.ID,
			Title: ref.Title,
			Seq:   ref.IngestSeq,
		}
		for _, seg := range parser.GroupSegments(p.Parse(ref.Content)) {
			doc.Sections = append(doc.Sections, index.Section{
				Title: seg.Title,
				Text:  seg.FlatText(),
			})
		}
		docs = append(docs, doc)
	}

	snap := s.idx.Rebuild(docs)
	log.Printf("Rebuilt reference index: version %d, %d sections from %d documents",
		snap.Version(), snap.Len(), len(refs))

	return nil
}
