package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/parser"
)

// systemInstruction frames every outline exchange with the provider
const systemInstruction = "You are a specialized assistant that creates workshop programme outlines. You strictly adhere to the style and structure of reference outlines. Pay close attention to the formatting, segment structure, and language style of the references."

// strictFormatInstruction is appended to the prompt for the single retry
// after an unparseable reply.
const strictFormatInstruction = "\n\nSTRICT FORMAT REQUIREMENT: The previous reply could not be parsed. Respond with the outline text only. Every main segment MUST start on its own line with a number, a period, and a space, for example \"1. Opening (10 min)\"."

// Style adherence gates controlling how much reference material enters the
// prompt. Below excerptGate the prompt carries structural guidance only.
const (
	excerptGate      = 0.5
	patternGate      = 0.6
	multiExcerptGate = 0.7

	maxPromptExcerpts = 3
	maxExcerptLength  = 1500
)

// PromptInput collects everything the full-outline prompt draws on
type PromptInput struct {
	Spec     models.Specification
	Excerpts []models.Excerpt
	Style    parser.StyleProfile
	Patterns parser.SegmentPatterns
}

// BuildOutlinePrompt renders the generation prompt for a complete outline.
// Style adherence gates the reference material: excerpts above 0.5, pattern
// guidance above 0.6, multiple truncated excerpts above 0.7.
func BuildOutlinePrompt(in PromptInput) string {
	var sb strings.Builder

	sb.WriteString("Create a workshop programme outline with the following specifications:\n\n")
	fmt.Fprintf(&sb, "TITLE: %s\n\n", in.Spec.Title)
	fmt.Fprintf(&sb, "WORKSHOP OBJECTIVES:\n%s\n\n", in.Spec.Objectives)
	fmt.Fprintf(&sb, "TOTAL DURATION: %d minutes\n\n", in.Spec.TotalDuration)
	fmt.Fprintf(&sb, "REQUIRED SEGMENTS:\n%s\n\n", segmentRequirements(in.Spec.Segments))
	fmt.Fprintf(&sb, "STYLE GUIDELINES:\n%s\n", styleGuidelines(in.Style))

	fmt.Fprintf(&sb, "Your task is to create a complete workshop outline that follows the style and structure of the reference examples with a style adherence level of %.0f%%.\n", in.Spec.StyleAdherence*100)
	fmt.Fprintf(&sb, "The outline should incorporate all the specified objectives and segment requirements while maintaining the total duration of %d minutes.\n", in.Spec.TotalDuration)

	sb.WriteString(referenceSection(in.Excerpts, in.Spec.StyleAdherence))
	sb.WriteString(patternSection(in.Patterns, in.Spec.StyleAdherence))

	sb.WriteString("\nIMPORTANT FORMATTING INSTRUCTIONS:\n")
	sb.WriteString("1. Pay careful attention to the numbering and indentation patterns in the reference examples\n")
	sb.WriteString("2. Maintain the exact same format for specifying durations (e.g., \"(15 min)\" or \"(15 minutes)\")\n")
	sb.WriteString("3. Use consistent capitalization and punctuation as shown in the references\n")
	sb.WriteString("4. Follow the bullet point style exactly as shown in the references\n")
	sb.WriteString("5. Preserve any special sections like introductions, breaks, or closing segments in the same style\n")
	sb.WriteString("\nGenerate ONLY the outline itself without additional explanations or comments.\n")

	return sb.String()
}

// SegmentPromptInput collects what the single-segment prompt draws on.
// Title, Duration, and Description are the effective values after overrides
// have been resolved against the current segment.
type SegmentPromptInput struct {
	Current        string
	Title          string
	Duration       *int
	Description    string
	PreviousTitle  string
	NextTitle      string
	Excerpts       []models.Excerpt
	Style          parser.StyleProfile
	StyleAdherence float64
}

// BuildSegmentPrompt renders the prompt for regenerating one segment in
// place, anchored by the titles around it.
func BuildSegmentPrompt(in SegmentPromptInput) string {
	var sb strings.Builder

	sb.WriteString("I have a workshop outline and need to regenerate the following segment:\n\n")
	fmt.Fprintf(&sb, "CURRENT SEGMENT:\n%s\n\n", in.Current)

	sb.WriteString("POSITION IN OUTLINE:\n")
	if in.PreviousTitle != "" {
		fmt.Fprintf(&sb, "- Preceded by: %s\n", in.PreviousTitle)
	} else {
		sb.WriteString("- This is the first segment\n")
	}
	if in.NextTitle != "" {
		fmt.Fprintf(&sb, "- Followed by: %s\n", in.NextTitle)
	} else {
		sb.WriteString("- This is the final segment\n")
	}

	sb.WriteString("\nNEW SPECIFICATIONS:\n")
	fmt.Fprintf(&sb, "- Title: %s\n", in.Title)
	if in.Duration != nil {
		fmt.Fprintf(&sb, "- Duration: %d minutes\n", *in.Duration)
	}
	if in.Description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", in.Description)
	}

	fmt.Fprintf(&sb, "\nSTYLE GUIDELINES:\n%s", styleGuidelines(in.Style))
	sb.WriteString(referenceSection(in.Excerpts, in.StyleAdherence))

	sb.WriteString("\nPlease regenerate this segment while maintaining the style and structure consistency with the rest of the outline. The output should only include the regenerated segment, not the entire outline.\n")

	return sb.String()
}

// styleGuidelines renders the merged style profile as prompt bullet lines
func styleGuidelines(style parser.StyleProfile) string {
	var sb strings.Builder

	if style.UsesBullets {
		sb.WriteString("- Use bullet points (•) for subsections\n")
	}
	if style.UsesNumbering {
		sb.WriteString("- Use numbered sections (1., 2., etc.) for main segments\n")
	}
	if style.UsesTiming {
		sb.WriteString("- Include duration in minutes for each segment in parentheses\n")
	}
	switch style.Capitalization {
	case parser.CapUppercase:
		sb.WriteString("- Use UPPERCASE for main section titles\n")
	case parser.CapTitleCase:
		sb.WriteString("- Use Title Case for main section titles\n")
	}
	if style.UsesColons {
		sb.WriteString("- Use colons after section titles\n")
	}

	if sb.Len() == 0 {
		sb.WriteString("- Follow a clear numbered outline structure\n")
	}
	return sb.String()
}

func segmentRequirements(segments []models.SegmentSpec) string {
	reqs := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Title == "" {
			continue
		}
		if seg.Duration != nil && *seg.Duration > 0 {
			reqs = append(reqs, fmt.Sprintf("- %s (%d min): %s", seg.Title, *seg.Duration, seg.Description))
		} else {
			reqs = append(reqs, fmt.Sprintf("- %s: %s", seg.Title, seg.Description))
		}
	}
	if len(reqs) == 0 {
		return "No specific segment requirements."
	}
	return strings.Join(reqs, "\n")
}

func referenceSection(excerpts []models.Excerpt, adherence float64) string {
	if len(excerpts) == 0 || adherence <= excerptGate {
		return ""
	}

	var sb strings.Builder
	if len(excerpts) > 1 && adherence > multiExcerptGate {
		sb.WriteString("\nREFERENCE EXAMPLES:\n\n")
		for i, ex := range excerpts {
			if i == maxPromptExcerpts {
				break
			}
			fmt.Fprintf(&sb, "EXAMPLE %d:\n%s\n\n", i+1, truncateExcerpt(ex.Text))
		}
	} else {
		fmt.Fprintf(&sb, "\nREFERENCE EXAMPLE:\n\n%s\n\n", excerpts[0].Text)
	}
	return sb.String()
}

func patternSection(patterns parser.SegmentPatterns, adherence float64) string {
	if patterns.Empty() || adherence <= patternGate {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\nCOMMON PATTERNS:\n")
	if len(patterns.CommonDurations) > 0 {
		durations := make([]string, len(patterns.CommonDurations))
		for i, d := range patterns.CommonDurations {
			durations[i] = strconv.Itoa(d)
		}
		fmt.Fprintf(&sb, "- Typical durations: %s minutes\n", strings.Join(durations, ", "))
	}
	if len(patterns.SegmentTypes) > 0 {
		fmt.Fprintf(&sb, "- Typical segment types: %s\n", strings.Join(patterns.SegmentTypes, ", "))
	}
	return sb.String()
}

func truncateExcerpt(text string) string {
	if len(text) <= maxExcerptLength {
		return text
	}
	return text[:maxExcerptLength] + "..."
}
