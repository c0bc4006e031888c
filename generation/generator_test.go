package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/parser"
)

const validOutline = `Team Workshop

1. Welcome (10 min)
• Introductions

2. Deep Dive (45 min)
• Case study

3. Close (5 min)
• Takeaways`

// scriptedClient replays canned replies and errors in call order
type scriptedClient struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (c *scriptedClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, req.Prompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i >= len(c.replies) {
		i = len(c.replies) - 1
	}
	return c.replies[i], nil
}

func intp(n int) *int { return &n }

func testSpec() models.Specification {
	return models.Specification{
		Title:          "Team Workshop",
		Objectives:     "Strengthen collaboration",
		TotalDuration:  60,
		StyleAdherence: 0.8,
	}
}

func testOutline() *models.GeneratedOutline {
	return &models.GeneratedOutline{
		ID:            uuid.New(),
		Title:         "Team Workshop",
		TotalDuration: 60,
		Content:       validOutline,
		Segments:      parser.New().OutlineSegments(validOutline),
		Spec:          testSpec(),
	}
}

func TestGenerateAssemblesOutline(t *testing.T) {
	var recorded []*models.GenerationTrace
	client := &scriptedClient{replies: []string{validOutline}}
	g := NewGenerator(
		WithClient(client),
		WithProviderInfo("mock", "test-model"),
		WithTraceRecorder(func(tr *models.GenerationTrace) { recorded = append(recorded, tr) }),
	)

	res, err := g.Generate(context.Background(), GenerateRequest{
		Spec:  testSpec(),
		Style: parser.DefaultStyle(),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Outline)

	assert.Equal(t, validOutline, res.Outline.Content)
	assert.Equal(t, "Team Workshop", res.Outline.Title)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Outline.Segments, 3)
	assert.Equal(t, "Welcome", res.Outline.Segments[0].Title)
	assert.Equal(t, "1. Welcome (10 min)\n• Introductions", res.Outline.Segments[0].Body)
	require.NotNil(t, res.Outline.Segments[1].Duration)
	assert.Equal(t, 45, *res.Outline.Segments[1].Duration)

	require.Len(t, recorded, 1)
	assert.Equal(t, models.TraceKindFull, recorded[0].Kind)
	assert.Equal(t, models.TraceStatusSucceeded, recorded[0].Status)
	assert.Equal(t, "mock", recorded[0].Provider)
	assert.Equal(t, "test-model", recorded[0].Model)
	assert.Equal(t, validOutline, recorded[0].RawResponse)
}

func TestGenerateTransportErrorStaysTransient(t *testing.T) {
	var recorded []*models.GenerationTrace
	client := &scriptedClient{errs: []error{context.DeadlineExceeded, context.DeadlineExceeded}}
	g := NewGenerator(
		WithClient(client),
		WithProviderInfo("gemini", "test-model"),
		WithTraceRecorder(func(tr *models.GenerationTrace) { recorded = append(recorded, tr) }),
	)

	_, err := g.Generate(context.Background(), GenerateRequest{Spec: testSpec()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationTransient)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, client.calls, "transport errors must not be retried internally")

	var terr *TransientError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "gemini", terr.Provider)

	// A second timeout reports the same way, never an escalated error.
	_, err = g.Generate(context.Background(), GenerateRequest{Spec: testSpec()})
	assert.ErrorIs(t, err, ErrGenerationTransient)
	assert.Equal(t, 2, client.calls)

	require.Len(t, recorded, 2)
	assert.Equal(t, models.TraceStatusFailed, recorded[0].Status)
	require.NotNil(t, recorded[0].ErrorMessage)
}

func TestGenerateRetriesOnceWithStrictInstruction(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"Sure! Here is a summary of what you asked for.",
		validOutline,
	}}
	g := NewGenerator(WithClient(client))

	res, err := g.Generate(context.Background(), GenerateRequest{Spec: testSpec()})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, client.calls)
	require.Len(t, client.prompts, 2)
	assert.NotContains(t, client.prompts[0], "STRICT FORMAT REQUIREMENT")
	assert.Contains(t, client.prompts[1], "STRICT FORMAT REQUIREMENT")
}

func TestGenerateInvalidAfterStrictRetry(t *testing.T) {
	var recorded []*models.GenerationTrace
	lastReply := "Here are some thoughts instead of an outline."
	client := &scriptedClient{replies: []string{
		"I could not generate an outline for that request.",
		lastReply,
	}}
	g := NewGenerator(
		WithClient(client),
		WithTraceRecorder(func(tr *models.GenerationTrace) { recorded = append(recorded, tr) }),
	)

	_, err := g.Generate(context.Background(), GenerateRequest{Spec: testSpec()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationInvalid)
	assert.Equal(t, 2, client.calls)

	var ierr *InvalidResultError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, lastReply, ierr.Raw)

	require.Len(t, recorded, 1)
	assert.Equal(t, models.TraceStatusFailed, recorded[0].Status)
	assert.Equal(t, 2, recorded[0].Attempts)
}

func TestGenerateWarnsOnDurationDrift(t *testing.T) {
	client := &scriptedClient{replies: []string{validOutline}}
	g := NewGenerator(WithClient(client))

	spec := testSpec()
	spec.TotalDuration = 120

	res, err := g.Generate(context.Background(), GenerateRequest{Spec: spec})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "60")
	assert.Contains(t, res.Warnings[0], "120")
}

func TestGenerateDurationDriftWithinTolerance(t *testing.T) {
	client := &scriptedClient{replies: []string{validOutline}}
	g := NewGenerator(WithClient(client), WithDurationTolerance(15))

	spec := testSpec()
	spec.TotalDuration = 72 // parsed sum is 60, drift 12 warns at the default tolerance

	res, err := g.Generate(context.Background(), GenerateRequest{Spec: spec})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}

func TestGenerateWithMockClient(t *testing.T) {
	g := NewGenerator(WithClient(MockClient{}))

	res, err := g.Generate(context.Background(), GenerateRequest{Spec: testSpec()})
	require.NoError(t, err)
	require.Len(t, res.Outline.Segments, 3)
}

func TestRegenerateSegmentSplicesInPlace(t *testing.T) {
	outline := testOutline()
	client := &scriptedClient{replies: []string{
		"5. Case Clinic (45 min)\n• Real cases from the group\n• Peer feedback",
	}}
	g := NewGenerator(WithClient(client))

	res, err := g.RegenerateSegment(context.Background(), RegenerateRequest{
		Outline:      outline,
		SegmentIndex: 1,
	})
	require.NoError(t, err)
	got := res.Outline

	// Ordinal normalized to the slot position.
	assert.Contains(t, got.Content, "2. Case Clinic (45 min)")
	assert.NotContains(t, got.Content, "5. Case Clinic")

	// Sibling lines stay byte for byte.
	origLines := strings.Split(validOutline, "\n")
	newLines := strings.Split(got.Content, "\n")
	assert.Equal(t, origLines[:5], newLines[:5])
	assert.Equal(t, origLines[7:], newLines[len(newLines)-3:])

	// Input outline untouched.
	assert.Equal(t, validOutline, outline.Content)
	assert.Equal(t, "Deep Dive", outline.Segments[1].Title)

	require.Len(t, got.Segments, 3)
	assert.Equal(t, "Case Clinic", got.Segments[1].Title)
	require.NotNil(t, got.Segments[1].Duration)
	assert.Equal(t, 45, *got.Segments[1].Duration)
}

func TestRegenerateSegmentDurationOverride(t *testing.T) {
	outline := testOutline()
	client := &scriptedClient{replies: []string{"2. Deep Dive (45 min)\n• Updated exercise"}}
	g := NewGenerator(WithClient(client))

	res, err := g.RegenerateSegment(context.Background(), RegenerateRequest{
		Outline:      outline,
		SegmentIndex: 1,
		Duration:     intp(30),
	})
	require.NoError(t, err)

	assert.Contains(t, res.Outline.Content, "2. Deep Dive (30 min)")
	assert.NotContains(t, res.Outline.Content, "(45 min)\n• Updated exercise")
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "- Duration: 30 minutes")
}

func TestRegenerateSegmentIndexOutOfRange(t *testing.T) {
	outline := testOutline()
	client := &scriptedClient{}
	g := NewGenerator(WithClient(client))

	for _, index := range []int{-1, 3, 7} {
		_, err := g.RegenerateSegment(context.Background(), RegenerateRequest{
			Outline:      outline,
			SegmentIndex: index,
		})
		assert.ErrorIs(t, err, ErrSegmentOutOfRange)
	}
	assert.Equal(t, 0, client.calls, "range check must run before any model call")
}

func TestRegenerateSegmentRejectsMultiSegmentReply(t *testing.T) {
	outline := testOutline()
	multi := "2. First Thing (20 min)\n• a\n3. Second Thing (25 min)\n• b"
	client := &scriptedClient{replies: []string{multi, multi}}
	g := NewGenerator(WithClient(client))

	_, err := g.RegenerateSegment(context.Background(), RegenerateRequest{
		Outline:      outline,
		SegmentIndex: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationInvalid)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, validOutline, outline.Content, "failed regeneration must leave the outline untouched")
}

func TestRegenerateSegmentPromptCarriesPosition(t *testing.T) {
	outline := testOutline()
	client := &scriptedClient{replies: []string{"2. Deep Dive (45 min)\n• Variant"}}
	g := NewGenerator(WithClient(client))

	_, err := g.RegenerateSegment(context.Background(), RegenerateRequest{
		Outline:      outline,
		SegmentIndex: 1,
	})
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "CURRENT SEGMENT:\n2. Deep Dive (45 min)")
	assert.Contains(t, prompt, "- Preceded by: Welcome")
	assert.Contains(t, prompt, "- Followed by: Close")
}
