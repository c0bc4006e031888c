package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/metakael/programme-outline/models"
)

var (
	ordinalPattern  = regexp.MustCompile(`^(\d{1,3})[.)]\s+(.+)$`)
	letteredPattern = regexp.MustCompile(`^[A-Za-z][.)]\s+(.+)$`)
	headingPattern  = regexp.MustCompile(`^#{1,6}\s+(.+)$`)

	// Matches "(15 min)", "(15 minutes)", "(15 MIN)" anywhere in a line.
	durationPattern = regexp.MustCompile(`(?i)\((\d+)\s*min(?:ute)?s?\)`)
)

// Bullet markers recognized by default. Extraction may report additional
// markers seen in the source, passed in through WithBulletMarkers.
var defaultMarkers = []string{"•", "-", "*"}

const maxTitleLineLength = 60

// Parser turns raw document text into an ordered sequence of structural
// elements. It is line-oriented and never fails: a line that matches no
// rule becomes a paragraph. Safe for concurrent use.
type Parser struct {
	markers []string
}

// Option configures a Parser
type Option func(*Parser)

// WithBulletMarkers adds bullet markers beyond the default set
func WithBulletMarkers(markers ...string) Option {
	return func(p *Parser) {
		p.markers = append(p.markers, markers...)
	}
}

// New creates a parser with the given options
func New(opts ...Option) *Parser {
	p := &Parser{
		markers: append([]string{}, defaultMarkers...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts the structural elements of a document. Rules are applied
// per line, in order: ordinal segment heading, bullet, title, paragraph.
// The result is rebuilt from scratch on every call; empty input yields an
// empty sequence.
func (p *Parser) Parse(text string) []models.StructuralElement {
	var elements []models.StructuralElement

	titleSeen := false
	segmentOpen := false
	firstContent := true

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		indent := indentWidth(raw)

		if m := ordinalPattern.FindStringSubmatch(line); m != nil {
			// An indented numbered line inside a segment is a sub-list
			// item, not a new segment.
			if segmentOpen && indent >= 2 {
				elements = append(elements, models.StructuralElement{
					Kind:  models.ElementBullet,
					Text:  strings.TrimSpace(m[2]),
					Level: indent / 2,
				})
				firstContent = false
				continue
			}

			ordinal, _ := strconv.Atoi(m[1])
			title, duration := splitTitleDuration(m[2])
			elements = append(elements, models.StructuralElement{
				Kind:     models.ElementSegment,
				Text:     title,
				Ordinal:  ordinal,
				Duration: duration,
			})
			segmentOpen = true
			firstContent = false
			continue
		}

		if bullet, ok := p.bulletText(line); ok {
			elements = append(elements, models.StructuralElement{
				Kind:  models.ElementBullet,
				Text:  bullet,
				Level: indent / 2,
			})
			firstContent = false
			continue
		}

		if !titleSeen && (firstContent || isHeadingLine(line)) {
			elements = append(elements, models.StructuralElement{
				Kind: models.ElementTitle,
				Text: headingText(line),
			})
			titleSeen = true
			firstContent = false
			continue
		}

		elements = append(elements, models.StructuralElement{
			Kind: models.ElementParagraph,
			Text: line,
		})
		firstContent = false
	}

	return elements
}

// bulletText reports whether line starts with a bullet or lettered sub-list
// marker, returning the text after the marker.
func (p *Parser) bulletText(line string) (string, bool) {
	for _, marker := range p.markers {
		rest, found := strings.CutPrefix(line, marker)
		if !found {
			continue
		}
		if rest == "" {
			return "", true
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest), true
		}
	}

	if m := letteredPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	return "", false
}

// splitTitleDuration separates a segment heading's title from its
// parenthesized duration. A missing parenthetical leaves the duration nil,
// which callers must treat differently from an explicit "(0 min)".
func splitTitleDuration(rest string) (string, *int) {
	loc := durationPattern.FindStringSubmatchIndex(rest)
	if loc == nil {
		return strings.TrimSpace(rest), nil
	}

	minutes, err := strconv.Atoi(rest[loc[2]:loc[3]])
	if err != nil {
		return strings.TrimSpace(rest), nil
	}

	title := strings.TrimSpace(rest[:loc[0]])
	return title, &minutes
}

func isHeadingLine(line string) bool {
	if headingPattern.MatchString(line) {
		return true
	}
	if len(line) > maxTitleLineLength {
		return false
	}
	return line == strings.ToUpper(line) && line != strings.ToLower(line)
}

func headingText(line string) string {
	if m := headingPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return line
}

// indentWidth measures leading whitespace in columns, counting a tab as
// four columns.
func indentWidth(raw string) int {
	width := 0
	for _, r := range raw {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}
