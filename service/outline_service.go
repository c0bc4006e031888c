package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/parser"
	"github.com/metakael/programme-outline/repository"

	"github.com/google/uuid"
)

// OutlineService handles stored outline reads and whole-document edits
type OutlineService struct {
	outlineRepo *repository.OutlineRepository
	traceRepo   *repository.TraceRepository
}

// OutlineServiceOption is a functional option for OutlineService
type OutlineServiceOption func(*OutlineService)

// OutlineWithOutlineRepository sets the outline repository
func OutlineWithOutlineRepository(repo *repository.OutlineRepository) OutlineServiceOption {
	return func(s *OutlineService) {
		s.outlineRepo = repo
	}
}

// OutlineWithTraceRepository sets the trace repository
func OutlineWithTraceRepository(repo *repository.TraceRepository) OutlineServiceOption {
	return func(s *OutlineService) {
		s.traceRepo = repo
	}
}

// NewOutlineService creates a new outline service
func NewOutlineService(opts ...OutlineServiceOption) *OutlineService {
	s := &OutlineService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOutlineRequest represents a request to get an outline
type GetOutlineRequest struct {
	ID uuid.UUID
}

// GetOutlineResult represents the result of getting an outline
type GetOutlineResult struct {
	Outline *models.GeneratedOutline
}

// GetOutline retrieves a generated outline by ID
func (s *OutlineService) GetOutline(ctx context.Context, req GetOutlineRequest) (*GetOutlineResult, error) {
	if s.outlineRepo == nil {
		return nil, errors.New("outline repository not set")
	}

	outline, err := s.outlineRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrOutlineNotFound
	}

	return &GetOutlineResult{Outline: outline}, nil
}

// ListOutlinesRequest represents a request to list outlines
type ListOutlinesRequest struct {
	Limit  int
	Offset int
}

// ListOutlinesResult represents the result of listing outlines
type ListOutlinesResult struct {
	Outlines []*models.GeneratedOutline
}

// ListOutlines lists generated outlines, newest first
func (s *OutlineService) ListOutlines(ctx context.Context, req ListOutlinesRequest) (*ListOutlinesResult, error) {
	if s.outlineRepo == nil {
		return nil, errors.New("outline repository not set")
	}

	outlines, err := s.outlineRepo.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &ListOutlinesResult{Outlines: outlines}, nil
}

// UpdateOutlineContentRequest represents a whole-document content edit
type UpdateOutlineContentRequest struct {
	ID      uuid.UUID
	Content string
}

// UpdateOutlineContentResult represents the result of a content edit
type UpdateOutlineContentResult struct {
	Outline *models.GeneratedOutline
}

// UpdateOutlineContent replaces an outline's content and re-derives its
// segment list from the new text.
func (s *OutlineService) UpdateOutlineContent(ctx context.Context, req UpdateOutlineContentRequest) (*UpdateOutlineContentResult, error) {
	if s.outlineRepo == nil {
		return nil, errors.New("outline repository not set")
	}

	outline, err := s.outlineRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrOutlineNotFound
	}

	content := strings.ReplaceAll(req.Content, "\r\n", "\n")
	segments := parser.New().OutlineSegments(content)

	if err := s.outlineRepo.UpdateContent(ctx, req.ID, content, segments); err != nil {
		return nil, fmt.Errorf("failed to update outline content: %w", err)
	}

	outline.Content = content
	outline.Segments = segments

	return &UpdateOutlineContentResult{Outline: outline}, nil
}

// DeleteOutlineRequest represents a request to delete an outline
type DeleteOutlineRequest struct {
	ID uuid.UUID
}

// DeleteOutlineResult represents the result of deleting an outline
type DeleteOutlineResult struct{}

// DeleteOutline removes a generated outline
func (s *OutlineService) DeleteOutline(ctx context.Context, req DeleteOutlineRequest) (*DeleteOutlineResult, error) {
	if s.outlineRepo == nil {
		return nil, errors.New("outline repository not set")
	}

	if _, err := s.outlineRepo.GetByID(ctx, req.ID); err != nil {
		return nil, ErrOutlineNotFound
	}

	if err := s.outlineRepo.Delete(ctx, req.ID); err != nil {
		return nil, fmt.Errorf("failed to delete outline: %w", err)
	}

	return &DeleteOutlineResult{}, nil
}

var ErrTraceNotFound = errors.New("generation trace not found")

// ListTracesRequest represents a request to list an outline's traces
type ListTracesRequest struct {
	OutlineID uuid.UUID
}

// ListTracesResult represents the result of listing traces
type ListTracesResult struct {
	Traces []*models.GenerationTrace
}

// ListTraces lists the generation traces recorded for an outline, newest
// first.
func (s *OutlineService) ListTraces(ctx context.Context, req ListTracesRequest) (*ListTracesResult, error) {
	if s.traceRepo == nil {
		return nil, errors.New("trace repository not set")
	}

	traces, err := s.traceRepo.ListByOutlineID(ctx, req.OutlineID)
	if err != nil {
		return nil, err
	}

	return &ListTracesResult{Traces: traces}, nil
}

// GetTraceRequest represents a request to get a single generation trace
type GetTraceRequest struct {
	ID uuid.UUID
}

// GetTraceResult represents the result of getting a trace
type GetTraceResult struct {
	Trace *models.GenerationTrace
}

// GetTrace retrieves one generation trace with its full prompt and raw
// response, for replaying a generation after the fact.
func (s *OutlineService) GetTrace(ctx context.Context, req GetTraceRequest) (*GetTraceResult, error) {
	if s.traceRepo == nil {
		return nil, errors.New("trace repository not set")
	}

	trace, err := s.traceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrTraceNotFound
	}

	return &GetTraceResult{Trace: trace}, nil
}
