package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/parser"
)

const (
	defaultTemperature       = 0.4
	defaultDurationTolerance = 10

	// One strict-format retry after an unparseable reply, then terminal.
	maxValidationAttempts = 2
)

var (
	headingLinePattern     = regexp.MustCompile(`^(\d{1,3})([.)])\s+(.*)$`)
	headingDurationPattern = regexp.MustCompile(`(?i)\((\d+)\s*min(?:ute)?s?\)`)
)

// Generator produces outlines through a configured model client, treating
// everything the model returns as untrusted input that must re-parse.
type Generator struct {
	client            Client
	parser            *parser.Parser
	temperature       float64
	durationTolerance int
	provider          string
	model             string
	recordTrace       func(*models.GenerationTrace)
}

// GeneratorOption is a functional option for Generator
type GeneratorOption func(*Generator)

// WithClient sets the model client
func WithClient(client Client) GeneratorOption {
	return func(g *Generator) {
		g.client = client
	}
}

// WithParser sets the structural parser used to validate replies
func WithParser(p *parser.Parser) GeneratorOption {
	return func(g *Generator) {
		g.parser = p
	}
}

// WithTemperature overrides the sampling temperature
func WithTemperature(t float64) GeneratorOption {
	return func(g *Generator) {
		g.temperature = t
	}
}

// WithDurationTolerance sets the allowed drift, in minutes, between the
// specification total and the sum of generated segment durations
func WithDurationTolerance(minutes int) GeneratorOption {
	return func(g *Generator) {
		g.durationTolerance = minutes
	}
}

// WithProviderInfo records which provider and model traces should name
func WithProviderInfo(provider, model string) GeneratorOption {
	return func(g *Generator) {
		g.provider = provider
		g.model = model
	}
}

// WithTraceRecorder registers a hook that receives a trace for every
// invocation, successful or failed
func WithTraceRecorder(fn func(*models.GenerationTrace)) GeneratorOption {
	return func(g *Generator) {
		g.recordTrace = fn
	}
}

// NewGenerator creates a generator
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		parser:            parser.New(),
		temperature:       defaultTemperature,
		durationTolerance: defaultDurationTolerance,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateRequest represents a request to generate a complete outline
type GenerateRequest struct {
	Spec     models.Specification
	Excerpts []models.Excerpt
	Style    parser.StyleProfile
	Patterns parser.SegmentPatterns
}

// RegenerateRequest represents a request to regenerate one segment of an
// existing outline. Zero-valued override fields keep the segment's current
// title and duration.
type RegenerateRequest struct {
	Outline      *models.GeneratedOutline
	SegmentIndex int
	Title        string
	Duration     *int
	Description  string
	Excerpts     []models.Excerpt
	Style        parser.StyleProfile
}

// GenerateResult represents the outcome of a generation call
type GenerateResult struct {
	Outline  *models.GeneratedOutline
	Warnings []string
	Attempts int
}

// Generate produces a complete outline for the specification. The client is
// called once; transport failures surface immediately as a TransientError
// and an unparseable reply earns exactly one strict-format retry before the
// call fails with an InvalidResultError.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if g.client == nil {
		return nil, errors.New("llm client not set")
	}

	prompt := BuildOutlinePrompt(PromptInput{
		Spec:     req.Spec,
		Excerpts: req.Excerpts,
		Style:    req.Style,
		Patterns: req.Patterns,
	})

	trace := g.newTrace(models.TraceKindFull)
	defer g.record(trace)

	raw, err := g.complete(ctx, prompt, validateOutline, trace)
	if err != nil {
		return nil, err
	}

	outline := &models.GeneratedOutline{
		ID:            uuid.New(),
		Title:         req.Spec.Title,
		Objectives:    req.Spec.Objectives,
		TotalDuration: req.Spec.TotalDuration,
		Content:       raw,
		Segments:      g.parser.OutlineSegments(raw),
		Spec:          req.Spec,
	}

	result := &GenerateResult{Outline: outline, Attempts: trace.Attempts}
	if warning := g.durationWarning(outline.Segments, req.Spec.TotalDuration); warning != "" {
		log.Printf("Warning: %s", warning)
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

// RegenerateSegment replaces one segment of an existing outline, keeping
// every sibling line byte for byte. The input outline is never mutated; on
// any failure it is returned to the caller untouched.
func (g *Generator) RegenerateSegment(ctx context.Context, req RegenerateRequest) (*GenerateResult, error) {
	if g.client == nil {
		return nil, errors.New("llm client not set")
	}
	if req.Outline == nil {
		return nil, errors.New("outline not set")
	}

	spans := g.parser.Spans(req.Outline.Content)
	if req.SegmentIndex < 0 || req.SegmentIndex >= len(spans) {
		return nil, ErrSegmentOutOfRange
	}
	span := spans[req.SegmentIndex]

	lines := strings.Split(req.Outline.Content, "\n")
	current := strings.Join(lines[span.Start:span.End], "\n")

	title := req.Title
	if title == "" {
		title = span.Title
	}
	duration := req.Duration
	if duration == nil {
		duration = segmentDuration(g.parser, current)
	}

	input := SegmentPromptInput{
		Current:        current,
		Title:          title,
		Duration:       duration,
		Description:    req.Description,
		Excerpts:       req.Excerpts,
		Style:          req.Style,
		StyleAdherence: req.Outline.Spec.StyleAdherence,
	}
	if req.SegmentIndex > 0 {
		input.PreviousTitle = spans[req.SegmentIndex-1].Title
	}
	if req.SegmentIndex+1 < len(spans) {
		input.NextTitle = spans[req.SegmentIndex+1].Title
	}

	trace := g.newTrace(models.TraceKindSegment)
	outlineID := req.Outline.ID
	trace.OutlineID = &outlineID
	defer g.record(trace)

	raw, err := g.complete(ctx, BuildSegmentPrompt(input), validateSingleSegment, trace)
	if err != nil {
		return nil, err
	}

	block := normalizeSegmentBlock(raw, span.Ordinal, req.Duration)

	updated := make([]string, 0, len(lines))
	updated = append(updated, lines[:span.Start]...)
	updated = append(updated, strings.Split(block, "\n")...)
	updated = append(updated, lines[span.End:]...)

	outline := *req.Outline
	outline.Content = strings.Join(updated, "\n")
	outline.Segments = g.parser.OutlineSegments(outline.Content)

	result := &GenerateResult{Outline: &outline, Attempts: trace.Attempts}
	if warning := g.durationWarning(outline.Segments, outline.TotalDuration); warning != "" {
		log.Printf("Warning: %s", warning)
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

// complete runs the prompt against the client and re-parses the reply,
// retrying once with a strict format instruction when validation fails.
func (g *Generator) complete(ctx context.Context, prompt string, validate func([]models.StructuralElement) error, trace *models.GenerationTrace) (string, error) {
	attemptPrompt := prompt
	var raw string
	var lastErr error

	for attempt := 1; attempt <= maxValidationAttempts; attempt++ {
		trace.Attempts = attempt
		trace.Prompt = attemptPrompt

		reply, err := g.client.Complete(ctx, CompletionRequest{
			System:      systemInstruction,
			Prompt:      attemptPrompt,
			Temperature: g.temperature,
		})
		if err != nil {
			return "", g.fail(trace, &TransientError{Provider: g.provider, Err: err})
		}

		raw = strings.TrimSpace(reply)
		trace.RawResponse = raw

		lastErr = validate(g.parser.Parse(raw))
		if lastErr == nil {
			trace.Status = models.TraceStatusSucceeded
			return raw, nil
		}
		if attempt < maxValidationAttempts {
			log.Printf("Warning: generated output failed validation (%v), retrying with strict format instruction", lastErr)
			attemptPrompt = prompt + strictFormatInstruction
		}
	}

	return "", g.fail(trace, &InvalidResultError{Reason: lastErr.Error(), Raw: raw})
}

func (g *Generator) fail(trace *models.GenerationTrace, err error) error {
	trace.Status = models.TraceStatusFailed
	msg := err.Error()
	trace.ErrorMessage = &msg
	return err
}

func (g *Generator) newTrace(kind models.TraceKind) *models.GenerationTrace {
	return &models.GenerationTrace{
		ID:       uuid.New(),
		Kind:     kind,
		Provider: g.provider,
		Model:    g.model,
	}
}

func (g *Generator) record(trace *models.GenerationTrace) {
	if g.recordTrace != nil {
		g.recordTrace(trace)
	}
}

func (g *Generator) durationWarning(segments []models.OutlineSegment, total int) string {
	if total <= 0 {
		return ""
	}

	sum, counted := 0, 0
	for _, seg := range segments {
		if seg.Duration != nil {
			sum += *seg.Duration
			counted++
		}
	}
	if counted == 0 {
		return ""
	}

	diff := sum - total
	if diff < 0 {
		diff = -diff
	}
	if diff > g.durationTolerance {
		return fmt.Sprintf("segment durations sum to %d minutes, specification asks for %d", sum, total)
	}
	return ""
}

func validateOutline(elements []models.StructuralElement) error {
	for _, el := range elements {
		if el.Kind == models.ElementSegment {
			return nil
		}
	}
	return errors.New("no numbered segments found")
}

func validateSingleSegment(elements []models.StructuralElement) error {
	count := 0
	for _, el := range elements {
		if el.Kind == models.ElementSegment {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("expected exactly one segment, found %d", count)
	}
	return nil
}

func segmentDuration(p *parser.Parser, block string) *int {
	for _, el := range p.Parse(block) {
		if el.Kind == models.ElementSegment {
			return el.Duration
		}
	}
	return nil
}

// normalizeSegmentBlock rewrites the replacement block's heading so it sits
// correctly in its slot: the ordinal becomes the slot position, and a
// duration override replaces whatever the model put in parentheses.
func normalizeSegmentBlock(block string, ordinal int, duration *int) string {
	lines := strings.Split(block, "\n")
	for i, raw := range lines {
		if strings.HasPrefix(raw, "  ") || strings.HasPrefix(raw, "\t") {
			continue
		}
		m := headingLinePattern.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}

		rest := m[3]
		if duration != nil {
			replacement := fmt.Sprintf("(%d min)", *duration)
			if loc := headingDurationPattern.FindStringIndex(rest); loc != nil {
				rest = rest[:loc[0]] + replacement + rest[loc[1]:]
			} else {
				rest = rest + " " + replacement
			}
		}

		lines[i] = fmt.Sprintf("%d%s %s", ordinal, m[2], rest)
		break
	}
	return strings.Join(lines, "\n")
}
