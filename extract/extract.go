// Package extract is the text front door for reference ingestion. Binary
// decoding of PDF and DOCX files happens upstream; this package takes the
// bytes an upload supplies, refuses anything that is not text, and
// normalizes what extraction tools tend to mangle so the structural parser
// sees clean lines.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/metakael/programme-outline/models"
)

var ErrBinaryContent = errors.New("content is not plain text")

var (
	// Extraction tools often glue a section heading onto the previous
	// line; break before "N. Capital" and before bullet glyphs.
	sectionBreakPattern  = regexp.MustCompile(`(\d+)\.\s*([A-Z])`)
	bulletBreakPattern   = regexp.MustCompile(`([^\n])•`)
	bulletSpacingPattern = regexp.MustCompile(`•\s*([^\n])`)

	durationUnitPattern   = regexp.MustCompile(`\((\d+)\s*min(?:ute)?s?\)`)
	mergedSectionsPattern = regexp.MustCompile(`(\d+\.\s+[^\n]+)(\d+\.)`)
	excessNewlinePattern  = regexp.MustCompile(`\n{3,}`)
)

// Bullet glyphs some extractors emit beyond the parser's defaults. Their
// presence is reported back as a parse hint.
var extraBulletMarkers = []string{"◦", "▪", "●", "‣"}

// Result represents normalized upload content plus parse hints
type Result struct {
	Text    string
	Markers []string
}

// DetectFormat maps a filename to the source format of its content
func DetectFormat(filename string) models.SourceFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return models.FormatMarkdown
	case ".pdf":
		return models.FormatPDF
	case ".docx", ".doc":
		return models.FormatDOCX
	default:
		return models.FormatPlain
	}
}

// Normalize prepares uploaded content for parsing. PDF and DOCX formats
// expect text already extracted from the binary; raw binary bytes are
// rejected, never guessed at.
func Normalize(raw []byte, format models.SourceFormat) (Result, error) {
	if isBinary(raw) {
		if format == models.FormatPDF || format == models.FormatDOCX {
			return Result{}, fmt.Errorf("%w: %s uploads must contain extracted text", ErrBinaryContent, format)
		}
		return Result{}, ErrBinaryContent
	}

	text := normalizeLineEndings(string(raw))

	switch format {
	case models.FormatMarkdown:
		text = normalizeMarkdown([]byte(text))
	case models.FormatPDF, models.FormatDOCX:
		text = normalizeExtracted(text)
	}

	text = strings.TrimSpace(text)

	return Result{Text: text, Markers: ScanMarkers(text)}, nil
}

// normalizeExtracted repairs the line structure extraction tools flatten:
// section numbers and bullets glued mid-line, inconsistent duration units,
// runs of blank lines.
func normalizeExtracted(text string) string {
	text = sectionBreakPattern.ReplaceAllString(text, "\n$1. $2")
	text = bulletBreakPattern.ReplaceAllString(text, "$1\n•")
	text = bulletSpacingPattern.ReplaceAllString(text, "• $1")
	text = durationUnitPattern.ReplaceAllString(text, "($1 min)")
	text = mergedSectionsPattern.ReplaceAllString(text, "$1\n\n$2")
	text = excessNewlinePattern.ReplaceAllString(text, "\n\n")
	return text
}

func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func isBinary(raw []byte) bool {
	if !utf8.Valid(raw) {
		return true
	}
	return bytes.IndexByte(raw, 0) >= 0
}

// ScanMarkers reports the non-default bullet glyphs present in text. Index
// rebuilds use it to recover parse hints for already normalized content.
func ScanMarkers(text string) []string {
	var found []string
	for _, m := range extraBulletMarkers {
		if strings.Contains(text, m) {
			found = append(found, m)
		}
	}
	return found
}
