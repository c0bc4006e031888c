package parser

import (
	"reflect"
	"testing"
)

func TestDetectStyle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  StyleProfile
	}{
		{
			name:  "uppercase timed outline with bullets",
			input: "1. INTRO (10 MIN)\n• first point\n2. CLOSE (5 min)",
			want: StyleProfile{
				UsesBullets:    true,
				UsesNumbering:  true,
				UsesTiming:     true,
				Capitalization: CapUppercase,
			},
		},
		{
			name:  "title case with colons, no bullets",
			input: "1. Opening Remarks: (10 min)\n2. Guided Tour (20 min)",
			want: StyleProfile{
				UsesNumbering:  true,
				UsesTiming:     true,
				UsesColons:     true,
				Capitalization: CapTitleCase,
			},
		},
		{
			name:  "prose without structure",
			input: "just a note about the venue",
			want:  StyleProfile{Capitalization: CapUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectStyle(tt.input); got != tt.want {
				t.Errorf("DetectStyle() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeStyles(t *testing.T) {
	merged := MergeStyles([]StyleProfile{
		{UsesBullets: true, UsesNumbering: true, Capitalization: CapTitleCase},
		{UsesBullets: true, UsesTiming: true, Capitalization: CapTitleCase},
		{UsesNumbering: true, Capitalization: CapUppercase},
	})

	want := StyleProfile{
		UsesBullets:    true,
		UsesNumbering:  true,
		Capitalization: CapTitleCase,
	}
	if merged != want {
		t.Errorf("MergeStyles() = %+v, want %+v", merged, want)
	}
}

func TestMergeStylesEmptyFallsBackToDefault(t *testing.T) {
	merged := MergeStyles(nil)
	if !merged.UsesNumbering || !merged.UsesTiming {
		t.Errorf("MergeStyles(nil) = %+v, want numbering and timing enabled", merged)
	}
}

func TestExtractPatterns(t *testing.T) {
	p := New()
	first := GroupSegments(p.Parse("1. Welcome Session (10 min)\n2. Coffee Break (15 min)\n3. Wrap Up (10 min)"))
	second := GroupSegments(p.Parse("1. Group Exercise (45 min)\n2. Open Discussion (30 min)"))

	patterns := ExtractPatterns([][]Segment{first, second})

	if got, want := patterns.CommonDurations, []int{10, 15, 30, 45}; !reflect.DeepEqual(got, want) {
		t.Errorf("CommonDurations = %v, want %v", got, want)
	}
	if got, want := patterns.SegmentTypes, []string{"introduction", "break", "conclusion", "activity", "discussion"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SegmentTypes = %v, want %v", got, want)
	}
	if got, want := patterns.TypicalSequence, []string{"welcome session", "coffee break", "wrap up"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TypicalSequence = %v, want %v", got, want)
	}
	if patterns.Empty() {
		t.Error("Empty() = true for populated patterns")
	}
}

func TestExtractPatternsEmpty(t *testing.T) {
	if !ExtractPatterns(nil).Empty() {
		t.Error("Empty() = false for no input")
	}
}
