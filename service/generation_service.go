package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/metakael/programme-outline/generation"
	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/parser"
	"github.com/metakael/programme-outline/repository"
	"github.com/metakael/programme-outline/retrieval"

	"github.com/google/uuid"
)

// GenerationService runs the full pipeline: retrieve excerpts, infer the
// corpus style, call the generator, and persist outline and trace.
type GenerationService struct {
	referenceRepo *repository.ReferenceRepository
	outlineRepo   *repository.OutlineRepository
	traceRepo     *repository.TraceRepository
	retriever     *retrieval.Retriever
	client        generation.Client
	provider      string
	model         string
}

// GenerationServiceOption is a functional option for GenerationService
type GenerationServiceOption func(*GenerationService)

// GenerationWithReferenceRepository sets the reference repository
func GenerationWithReferenceRepository(repo *repository.ReferenceRepository) GenerationServiceOption {
	return func(s *GenerationService) {
		s.referenceRepo = repo
	}
}

// GenerationWithOutlineRepository sets the outline repository
func GenerationWithOutlineRepository(repo *repository.OutlineRepository) GenerationServiceOption {
	return func(s *GenerationService) {
		s.outlineRepo = repo
	}
}

// GenerationWithTraceRepository sets the trace repository
func GenerationWithTraceRepository(repo *repository.TraceRepository) GenerationServiceOption {
	return func(s *GenerationService) {
		s.traceRepo = repo
	}
}

// GenerationWithRetriever sets the excerpt retriever
func GenerationWithRetriever(r *retrieval.Retriever) GenerationServiceOption {
	return func(s *GenerationService) {
		s.retriever = r
	}
}

// GenerationWithClient sets the LLM client
func GenerationWithClient(client generation.Client) GenerationServiceOption {
	return func(s *GenerationService) {
		s.client = client
	}
}

// GenerationWithProviderInfo sets the provider and model recorded on traces
func GenerationWithProviderInfo(provider, model string) GenerationServiceOption {
	return func(s *GenerationService) {
		s.provider = provider
		s.model = model
	}
}

// NewGenerationService creates a new generation service
func NewGenerationService(opts ...GenerationServiceOption) *GenerationService {
	s := &GenerationService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrOutlineNotFound      = errors.New("generated outline not found")
	ErrInvalidSpecification = errors.New("invalid outline specification")
)

// GenerateOutlineRequest represents a request to generate an outline
type GenerateOutlineRequest struct {
	Spec models.Specification
}

// GenerateOutlineResult represents the result of generating an outline
type GenerateOutlineResult struct {
	Outline  *models.GeneratedOutline
	Warnings []string
}

// GenerateOutline generates a complete outline from a specification and
// persists it. The generation trace is recorded whether or not the call
// succeeds.
func (s *GenerationService) GenerateOutline(ctx context.Context, req GenerateOutlineRequest) (*GenerateOutlineResult, error) {
	if s.outlineRepo == nil {
		return nil, errors.New("outline repository not set")
	}
	if s.retriever == nil {
		return nil, errors.New("retriever not set")
	}
	if s.client == nil {
		return nil, errors.New("llm client not set")
	}

	if err := validateSpecification(req.Spec); err != nil {
		return nil, err
	}

	excerpts := s.retriever.Select(req.Spec)
	style, patterns := s.corpusStyle(ctx, excerpts)

	var trace *models.GenerationTrace
	gen := s.newGenerator(func(t *models.GenerationTrace) { trace = t })

	result, err := gen.Generate(ctx, generation.GenerateRequest{
		Spec:     req.Spec,
		Excerpts: excerpts,
		Style:    style,
		Patterns: patterns,
	})
	if err != nil {
		s.recordTrace(ctx, trace)
		return nil, err
	}

	if err := s.outlineRepo.Create(ctx, result.Outline); err != nil {
		s.recordTrace(ctx, trace)
		return nil, fmt.Errorf("failed to save generated outline: %w", err)
	}

	if trace != nil {
		outlineID := result.Outline.ID
		trace.OutlineID = &outlineID
	}
	s.recordTrace(ctx, trace)

	return &GenerateOutlineResult{Outline: result.Outline, Warnings: result.Warnings}, nil
}

// RegenerateSegmentRequest represents a request to regenerate one segment
// of a stored outline. Zero-valued override fields keep the segment's
// current title and duration.
type RegenerateSegmentRequest struct {
	OutlineID    uuid.UUID
	SegmentIndex int
	Title        string
	Duration     *int
	Description  string
}

// RegenerateSegmentResult represents the result of regenerating a segment
type RegenerateSegmentResult struct {
	Outline  *models.GeneratedOutline
	Warnings []string
}

// RegenerateSegment replaces one segment of a stored outline and persists
// the updated document. Sibling segments are untouched; on failure the
// stored outline is left exactly as it was.
func (s *GenerationService) RegenerateSegment(ctx context.Context, req RegenerateSegmentRequest) (*RegenerateSegmentResult, error) {
	if s.outlineRepo == nil {
		return nil, errors.New("outline repository not set")
	}
	if s.retriever == nil {
		return nil, errors.New("retriever not set")
	}
	if s.client == nil {
		return nil, errors.New("llm client not set")
	}

	outline, err := s.outlineRepo.GetByID(ctx, req.OutlineID)
	if err != nil {
		return nil, ErrOutlineNotFound
	}

	excerpts := s.retriever.SelectQuery(
		segmentQuery(outline, req),
		outline.Spec.ReferenceIDs,
		outline.Spec.StyleAdherence,
	)
	style, _ := s.corpusStyle(ctx, excerpts)

	var trace *models.GenerationTrace
	gen := s.newGenerator(func(t *models.GenerationTrace) { trace = t })

	result, err := gen.RegenerateSegment(ctx, generation.RegenerateRequest{
		Outline:      outline,
		SegmentIndex: req.SegmentIndex,
		Title:        req.Title,
		Duration:     req.Duration,
		Description:  req.Description,
		Excerpts:     excerpts,
		Style:        style,
	})
	if err != nil {
		s.recordTrace(ctx, trace)
		return nil, err
	}

	if err := s.outlineRepo.Update(ctx, result.Outline); err != nil {
		s.recordTrace(ctx, trace)
		return nil, fmt.Errorf("failed to save regenerated outline: %w", err)
	}

	s.recordTrace(ctx, trace)
	return &RegenerateSegmentResult{Outline: result.Outline, Warnings: result.Warnings}, nil
}

// newGenerator builds a generator whose trace recorder hands the finished
// trace back to the calling operation for persistence.
func (s *GenerationService) newGenerator(recorder func(*models.GenerationTrace)) *generation.Generator {
	return generation.NewGenerator(
		generation.WithClient(s.client),
		generation.WithProviderInfo(s.provider, s.model),
		generation.WithTraceRecorder(recorder),
	)
}

// corpusStyle derives the merged style profile and segment patterns from
// the references behind the selected excerpts. With no excerpts, or when
// the references cannot be loaded, generation falls back to the default
// profile rather than failing.
func (s *GenerationService) corpusStyle(ctx context.Context, excerpts []models.Excerpt) (parser.StyleProfile, parser.SegmentPatterns) {
	ids := excerptReferenceIDs(excerpts)
	if len(ids) == 0 || s.referenceRepo == nil {
		return parser.DefaultStyle(), parser.SegmentPatterns{}
	}

	refs, err := s.referenceRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("Warning: failed to load references for style analysis: %v", err)
		return parser.DefaultStyle(), parser.SegmentPatterns{}
	}

	p := parser.New()
	profiles := make([]parser.StyleProfile, 0, len(refs))
	outlines := make([][]parser.Segment, 0, len(refs))
	for _, ref := range refs {
		profiles = append(profiles, parser.DetectStyle(ref.Content))
		outlines = append(outlines, parser.GroupSegments(p.Parse(ref.Content)))
	}

	return parser.MergeStyles(profiles), parser.ExtractPatterns(outlines)
}

// recordTrace persists a generation trace. Trace persistence never fails a
// generation that already succeeded.
func (s *GenerationService) recordTrace(ctx context.Context, trace *models.GenerationTrace) {
	if trace == nil || s.traceRepo == nil {
		return
	}
	if err := s.traceRepo.Create(ctx, trace); err != nil {
		log.Printf("Warning: failed to record generation trace: %v", err)
	}
}

// validateSpecification checks the fields generation depends on
func validateSpecification(spec models.Specification) error {
	if strings.TrimSpace(spec.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidSpecification)
	}
	if spec.TotalDuration <= 0 {
		return fmt.Errorf("%w: total duration must be a positive number of minutes", ErrInvalidSpecification)
	}
	if spec.StyleAdherence < 0 || spec.StyleAdherence > 1 {
		return fmt.Errorf("%w: style adherence must be between 0 and 1", ErrInvalidSpecification)
	}
	return nil
}

// segmentQuery builds the retrieval query for a segment regeneration from
// the override fields, the stored segment title, and the outline's
// objectives.
func segmentQuery(outline *models.GeneratedOutline, req RegenerateSegmentRequest) string {
	var parts []string

	if req.Title != "" {
		parts = append(parts, req.Title)
	} else if req.SegmentIndex >= 0 && req.SegmentIndex < len(outline.Segments) {
		parts = append(parts, outline.Segments[req.SegmentIndex].Title)
	}
	if req.Description != "" {
		parts = append(parts, req.Description)
	}
	if outline.Objectives != "" {
		parts = append(parts, outline.Objectives)
	}

	return strings.Join(parts, "\n")
}

// excerptReferenceIDs collects the distinct reference ids behind a set of
// excerpts, preserving retrieval order.
func excerptReferenceIDs(excerpts []models.Excerpt) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, ex := range excerpts {
		if seen[ex.ReferenceID] {
			continue
		}
		seen[ex.ReferenceID] = true
		ids = append(ids, ex.ReferenceID)
	}
	return ids
}
