package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Capitalization styles observed in segment titles
const (
	CapUppercase = "uppercase"
	CapTitleCase = "title_case"
	CapMixed     = "mixed"
	CapUnknown   = "unknown"
)

var (
	numberedLinePattern = regexp.MustCompile(`(?m)^\s*\d{1,3}[.)]\s`)
	bulletLinePattern   = regexp.MustCompile(`(?m)^\s*[•\-*]\s`)
)

// StyleProfile represents the formatting conventions of one document
type StyleProfile struct {
	UsesBullets    bool   `json:"uses_bullets"`
	UsesNumbering  bool   `json:"uses_numbering"`
	UsesTiming     bool   `json:"uses_timing"`
	UsesColons     bool   `json:"uses_colons"`
	Capitalization string `json:"capitalization"`
}

// DetectStyle inspects a document's text for its formatting conventions
func DetectStyle(text string) StyleProfile {
	return StyleProfile{
		UsesBullets:    bulletLinePattern.MatchString(text),
		UsesNumbering:  numberedLinePattern.MatchString(text),
		UsesTiming:     durationPattern.MatchString(text),
		UsesColons:     strings.Contains(text, ":"),
		Capitalization: detectCapitalization(text),
	}
}

func detectCapitalization(text string) string {
	titleCase := 0
	upperCase := 0
	total := 0

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		m := ordinalPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title, _ := splitTitleDuration(m[2])
		if title == "" {
			continue
		}
		total++
		switch {
		case isUpperCased(title):
			upperCase++
		case isTitleCased(title):
			titleCase++
		}
	}

	switch {
	case total == 0:
		return CapUnknown
	case upperCase > titleCase:
		return CapUppercase
	case titleCase > 0:
		return CapTitleCase
	default:
		return CapMixed
	}
}

func isUpperCased(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// isTitleCased reports whether every word starts with an uppercase letter
// followed only by lowercase ones.
func isTitleCased(s string) bool {
	hasLetter := false
	for _, word := range strings.Fields(s) {
		first := true
		for _, r := range word {
			if !unicode.IsLetter(r) {
				continue
			}
			hasLetter = true
			if first {
				if !unicode.IsUpper(r) {
					return false
				}
				first = false
				continue
			}
			if unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// DefaultStyle is the profile assumed when no reference material is
// available: numbered title-case segments with timing annotations, the
// minimum the downstream parser needs to recognize the result.
func DefaultStyle() StyleProfile {
	return StyleProfile{
		UsesNumbering:  true,
		UsesTiming:     true,
		Capitalization: CapTitleCase,
	}
}

// MergeStyles reduces several profiles to the dominant one by majority
// vote. An empty input yields DefaultStyle.
func MergeStyles(profiles []StyleProfile) StyleProfile {
	if len(profiles) == 0 {
		return DefaultStyle()
	}

	total := len(profiles)
	bullets, numbering, timing, colons := 0, 0, 0, 0
	caps := make(map[string]int)

	for _, p := range profiles {
		if p.UsesBullets {
			bullets++
		}
		if p.UsesNumbering {
			numbering++
		}
		if p.UsesTiming {
			timing++
		}
		if p.UsesColons {
			colons++
		}
		caps[p.Capitalization]++
	}

	dominant := CapUnknown
	for _, c := range []string{CapUppercase, CapTitleCase, CapMixed, CapUnknown} {
		if dominant == CapUnknown && caps[c] > 0 {
			dominant = c
			continue
		}
		if caps[c] > caps[dominant] {
			dominant = c
		}
	}

	return StyleProfile{
		UsesBullets:    bullets*2 > total,
		UsesNumbering:  numbering*2 > total,
		UsesTiming:     timing*2 > total,
		UsesColons:     colons*2 > total,
		Capitalization: dominant,
	}
}

// Segment type keywords, checked in order against lowercased titles.
var segmentTypeKeywords = []struct {
	name     string
	keywords []string
}{
	{"introduction", []string{"introduction", "welcome", "intro"}},
	{"break", []string{"break", "pause", "rest"}},
	{"conclusion", []string{"conclusion", "closing", "summary", "wrap"}},
	{"activity", []string{"activity", "exercise", "hands-on"}},
	{"discussion", []string{"discussion", "q&a"}},
	{"presentation", []string{"presentation", "lecture", "demo"}},
}

// SegmentPatterns represents structural regularities observed across
// reference outlines, fed to the generator as guidance.
type SegmentPatterns struct {
	CommonDurations []int
	SegmentTypes    []string
	TypicalSequence []string
}

// Empty reports whether nothing usable was observed
func (p SegmentPatterns) Empty() bool {
	return len(p.CommonDurations) == 0 && len(p.SegmentTypes) == 0
}

// ExtractPatterns collects common durations, segment types, and a typical
// segment sequence from the grouped segments of several documents.
func ExtractPatterns(outlines [][]Segment) SegmentPatterns {
	durations := make(map[int]bool)
	types := make(map[string]bool)

	for _, segments := range outlines {
		for _, seg := range segments {
			if seg.Duration != nil && *seg.Duration > 0 {
				durations[*seg.Duration] = true
			}
			if t := classifySegment(seg.Title); t != "" {
				types[t] = true
			}
		}
	}

	var patterns SegmentPatterns
	for d := range durations {
		patterns.CommonDurations = append(patterns.CommonDurations, d)
	}
	sort.Ints(patterns.CommonDurations)

	for _, class := range segmentTypeKeywords {
		if types[class.name] {
			patterns.SegmentTypes = append(patterns.SegmentTypes, class.name)
		}
	}

	for _, segments := range outlines {
		if len(segments) == 0 {
			continue
		}
		for _, seg := range segments {
			patterns.TypicalSequence = append(patterns.TypicalSequence, strings.ToLower(seg.Title))
		}
		break
	}

	return patterns
}

func classifySegment(title string) string {
	lower := strings.ToLower(title)
	for _, class := range segmentTypeKeywords {
		for _, kw := range class.keywords {
			if strings.Contains(lower, kw) {
				return class.name
			}
		}
	}
	return ""
}
