package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/parser"
)

func gateExcerpts() []models.Excerpt {
	return []models.Excerpt{
		{ReferenceTitle: "Agile Day", SegmentTitle: "Opening", Text: strings.Repeat("x", 1600)},
		{ReferenceTitle: "Team Day", SegmentTitle: "Warm Up", Text: "Short example two"},
		{ReferenceTitle: "Retro", SegmentTitle: "Actions", Text: "Short example three"},
	}
}

func TestBuildOutlinePromptAdherenceGates(t *testing.T) {
	patterns := parser.SegmentPatterns{
		CommonDurations: []int{10, 30},
		SegmentTypes:    []string{"introduction", "break"},
	}

	build := func(adherence float64) string {
		spec := testSpec()
		spec.StyleAdherence = adherence
		return BuildOutlinePrompt(PromptInput{
			Spec:     spec,
			Excerpts: gateExcerpts(),
			Style:    parser.DefaultStyle(),
			Patterns: patterns,
		})
	}

	low := build(0.5)
	assert.NotContains(t, low, "REFERENCE EXAMPLE")
	assert.NotContains(t, low, "COMMON PATTERNS")

	mid := build(0.6)
	assert.Contains(t, mid, "REFERENCE EXAMPLE:")
	assert.NotContains(t, mid, "REFERENCE EXAMPLES:")
	assert.NotContains(t, mid, "COMMON PATTERNS")

	withPatterns := build(0.65)
	assert.Contains(t, withPatterns, "COMMON PATTERNS:")
	assert.Contains(t, withPatterns, "- Typical durations: 10, 30 minutes")
	assert.Contains(t, withPatterns, "- Typical segment types: introduction, break")
	assert.Contains(t, withPatterns, "REFERENCE EXAMPLE:")
	assert.NotContains(t, withPatterns, "EXAMPLE 2:")

	high := build(0.8)
	assert.Contains(t, high, "REFERENCE EXAMPLES:")
	assert.Contains(t, high, "EXAMPLE 1:")
	assert.Contains(t, high, "EXAMPLE 3:")
}

func TestBuildOutlinePromptTruncatesLongExcerpts(t *testing.T) {
	spec := testSpec()
	spec.StyleAdherence = 0.8

	prompt := BuildOutlinePrompt(PromptInput{
		Spec:     spec,
		Excerpts: gateExcerpts(),
		Style:    parser.DefaultStyle(),
	})

	assert.Contains(t, prompt, strings.Repeat("x", maxExcerptLength)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", maxExcerptLength+1))
}

func TestBuildOutlinePromptSingleExcerptStaysSingle(t *testing.T) {
	spec := testSpec()
	spec.StyleAdherence = 0.9

	prompt := BuildOutlinePrompt(PromptInput{
		Spec:     spec,
		Excerpts: gateExcerpts()[:1],
		Style:    parser.DefaultStyle(),
	})

	assert.Contains(t, prompt, "REFERENCE EXAMPLE:")
	assert.NotContains(t, prompt, "REFERENCE EXAMPLES:")
}

func TestBuildOutlinePromptSpecification(t *testing.T) {
	spec := models.Specification{
		Title:         "Feedback Workshop",
		Objectives:    "Practice giving and receiving feedback",
		TotalDuration: 90,
		Segments: []models.SegmentSpec{
			{Title: "Opening", Duration: intp(15), Description: "welcome and framing"},
			{Title: "Practice", Description: "feedback rounds"},
		},
		StyleAdherence: 0.4,
	}

	prompt := BuildOutlinePrompt(PromptInput{Spec: spec, Style: parser.DefaultStyle()})

	assert.Contains(t, prompt, "TITLE: Feedback Workshop")
	assert.Contains(t, prompt, "WORKSHOP OBJECTIVES:\nPractice giving and receiving feedback")
	assert.Contains(t, prompt, "TOTAL DURATION: 90 minutes")
	assert.Contains(t, prompt, "- Opening (15 min): welcome and framing")
	assert.Contains(t, prompt, "- Practice: feedback rounds")
	assert.Contains(t, prompt, "style adherence level of 40%")
	assert.Contains(t, prompt, "Generate ONLY the outline itself")
}

func TestBuildOutlinePromptWithoutSegments(t *testing.T) {
	prompt := BuildOutlinePrompt(PromptInput{Spec: testSpec(), Style: parser.DefaultStyle()})
	assert.Contains(t, prompt, "No specific segment requirements.")
}

func TestBuildOutlinePromptStyleGuidelines(t *testing.T) {
	style := parser.StyleProfile{
		UsesBullets:    true,
		UsesNumbering:  true,
		UsesTiming:     true,
		UsesColons:     true,
		Capitalization: parser.CapUppercase,
	}

	prompt := BuildOutlinePrompt(PromptInput{Spec: testSpec(), Style: style})

	assert.Contains(t, prompt, "- Use bullet points (•) for subsections")
	assert.Contains(t, prompt, "- Use numbered sections (1., 2., etc.) for main segments")
	assert.Contains(t, prompt, "- Include duration in minutes for each segment in parentheses")
	assert.Contains(t, prompt, "- Use UPPERCASE for main section titles")
	assert.Contains(t, prompt, "- Use colons after section titles")
}

func TestBuildSegmentPrompt(t *testing.T) {
	in := SegmentPromptInput{
		Current:        "2. Deep Dive (45 min)\n• Case study",
		Title:          "Deep Dive",
		Duration:       intp(45),
		Description:    "hands-on case work",
		PreviousTitle:  "Welcome",
		NextTitle:      "Close",
		Excerpts:       gateExcerpts()[:1],
		Style:          parser.DefaultStyle(),
		StyleAdherence: 0.3,
	}

	prompt := BuildSegmentPrompt(in)

	assert.Contains(t, prompt, "CURRENT SEGMENT:\n2. Deep Dive (45 min)")
	assert.Contains(t, prompt, "- Preceded by: Welcome")
	assert.Contains(t, prompt, "- Followed by: Close")
	assert.Contains(t, prompt, "- Title: Deep Dive")
	assert.Contains(t, prompt, "- Duration: 45 minutes")
	assert.Contains(t, prompt, "- Description: hands-on case work")
	assert.Contains(t, prompt, "only include the regenerated segment")
	assert.NotContains(t, prompt, "REFERENCE EXAMPLE", "low adherence must keep excerpts out")
}

func TestBuildSegmentPromptAtEdges(t *testing.T) {
	in := SegmentPromptInput{
		Current: "1. Welcome (10 min)\n• Introductions",
		Title:   "Welcome",
		Style:   parser.DefaultStyle(),
	}

	prompt := BuildSegmentPrompt(in)
	assert.Contains(t, prompt, "This is the first segment")
	assert.Contains(t, prompt, "This is the final segment")
	assert.NotContains(t, prompt, "- Duration:")
}
