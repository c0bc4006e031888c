package parser

import (
	"strconv"
	"strings"

	"github.com/metakael/programme-outline/models"
)

// Bullet represents a sub-list item inside a segment
type Bullet struct {
	Text  string
	Level int
}

// Segment is a grouped view over a parsed element sequence: one ordinal
// heading plus the bullets and paragraphs that follow it.
type Segment struct {
	Title      string
	Ordinal    int
	Duration   *int
	Bullets    []Bullet
	Paragraphs []string
}

// FlatText concatenates the segment's title, bullets, and paragraphs into
// one block, the unit of text the embedding index works on.
func (s Segment) FlatText() string {
	parts := make([]string, 0, 1+len(s.Bullets)+len(s.Paragraphs))
	if s.Title != "" {
		parts = append(parts, s.Title)
	}
	for _, b := range s.Bullets {
		parts = append(parts, b.Text)
	}
	parts = append(parts, s.Paragraphs...)
	return strings.Join(parts, "\n")
}

// GroupSegments groups elements into per-segment views. When the document
// has ordinal segments, material preceding the first heading is treated as
// front matter and left out, so the i-th view lines up with the i-th span.
// A document with no ordinal segments at all collapses into a single
// unnamed segment holding everything.
func GroupSegments(elements []models.StructuralElement) []Segment {
	var segments []Segment
	current := -1

	hasHeadings := false
	for _, el := range elements {
		if el.Kind == models.ElementSegment {
			hasHeadings = true
			break
		}
	}

	for _, el := range elements {
		switch el.Kind {
		case models.ElementSegment:
			segments = append(segments, Segment{
				Title:    el.Text,
				Ordinal:  el.Ordinal,
				Duration: el.Duration,
			})
			current = len(segments) - 1
		case models.ElementBullet:
			if current < 0 {
				if hasHeadings {
					continue
				}
				segments = append(segments, Segment{})
				current = 0
			}
			segments[current].Bullets = append(segments[current].Bullets, Bullet{
				Text:  el.Text,
				Level: el.Level,
			})
		case models.ElementParagraph:
			if current < 0 {
				if hasHeadings {
					continue
				}
				segments = append(segments, Segment{})
				current = 0
			}
			segments[current].Paragraphs = append(segments[current].Paragraphs, el.Text)
		}
	}

	return segments
}

// DocumentTitle returns the parsed title element, or "" when the document
// has none.
func DocumentTitle(elements []models.StructuralElement) string {
	for _, el := range elements {
		if el.Kind == models.ElementTitle {
			return el.Text
		}
	}
	return ""
}

// Span is the half-open line range [Start, End) of one ordinal segment,
// measured on the document split by "\n". Trailing blank lines between
// segments stay outside every span, so splicing a replacement block keeps
// the separators and every sibling line byte for byte.
type Span struct {
	Start   int
	End     int
	Ordinal int
	Title   string
}

// Spans locates each ordinal segment's line range, classifying heading
// lines exactly as Parse does.
func (p *Parser) Spans(text string) []Span {
	lines := strings.Split(text, "\n")

	var spans []Span
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		m := ordinalPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if indentWidth(raw) >= 2 && len(spans) > 0 {
			continue
		}

		if len(spans) > 0 {
			spans[len(spans)-1].End = trimBlankTail(lines, spans[len(spans)-1].Start, i)
		}

		ordinal, _ := strconv.Atoi(m[1])
		title, _ := splitTitleDuration(m[2])
		spans = append(spans, Span{Start: i, End: len(lines), Ordinal: ordinal, Title: title})
	}

	if len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.End = trimBlankTail(lines, last.Start, len(lines))
	}

	return spans
}

func trimBlankTail(lines []string, start, end int) int {
	for end-1 > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return end
}

// OutlineSegments derives the per-segment view stored alongside a generated
// outline: title and duration from the heading, body as the segment's full
// line span including the heading itself.
func (p *Parser) OutlineSegments(content string) []models.OutlineSegment {
	spans := p.Spans(content)
	if len(spans) == 0 {
		return nil
	}

	lines := strings.Split(content, "\n")
	grouped := GroupSegments(p.Parse(content))

	segments := make([]models.OutlineSegment, 0, len(spans))
	for i, span := range spans {
		seg := models.OutlineSegment{
			Title: span.Title,
			Body:  strings.Join(lines[span.Start:span.End], "\n"),
		}
		if i < len(grouped) {
			seg.Duration = grouped[i].Duration
		}
		segments = append(segments, seg)
	}
	return segments
}
