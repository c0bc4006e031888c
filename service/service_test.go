package service

import (
	"testing"

	"github.com/metakael/programme-outline/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateSpecification(t *testing.T) {
	valid := models.Specification{
		Title:          "Team Workshop",
		Objectives:     "Align the team on quarterly goals",
		TotalDuration:  60,
		StyleAdherence: 0.8,
	}
	assert.NoError(t, validateSpecification(valid))

	tests := []struct {
		name   string
		mutate func(*models.Specification)
	}{
		{"blank title", func(s *models.Specification) { s.Title = "   " }},
		{"zero duration", func(s *models.Specification) { s.TotalDuration = 0 }},
		{"negative duration", func(s *models.Specification) { s.TotalDuration = -30 }},
		{"adherence above one", func(s *models.Specification) { s.StyleAdherence = 1.2 }},
		{"negative adherence", func(s *models.Specification) { s.StyleAdherence = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			assert.ErrorIs(t, validateSpecification(spec), ErrInvalidSpecification)
		})
	}
}

func TestSegmentQuery(t *testing.T) {
	duration := 45
	outline := &models.GeneratedOutline{
		Objectives: "Practice structured feedback",
		Segments: models.OutlineSegments{
			{Title: "Welcome", Body: "1. Welcome (10 min)"},
			{Title: "Deep Dive", Duration: &duration, Body: "2. Deep Dive (45 min)"},
		},
	}

	t.Run("falls back to the stored segment title", func(t *testing.T) {
		query := segmentQuery(outline, RegenerateSegmentRequest{SegmentIndex: 1})
		assert.Equal(t, "Deep Dive\nPractice structured feedback", query)
	})

	t.Run("override title and description win", func(t *testing.T) {
		query := segmentQuery(outline, RegenerateSegmentRequest{
			SegmentIndex: 1,
			Title:        "Case Clinic",
			Description:  "peer review of live cases",
		})
		assert.Equal(t, "Case Clinic\npeer review of live cases\nPractice structured feedback", query)
	})

	t.Run("out of range index contributes no title", func(t *testing.T) {
		query := segmentQuery(outline, RegenerateSegmentRequest{SegmentIndex: 7})
		assert.Equal(t, "Practice structured feedback", query)
	})
}

func TestExcerptReferenceIDs(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	ids := excerptReferenceIDs([]models.Excerpt{
		{ReferenceID: first, Text: "top hit"},
		{ReferenceID: second, Text: "second document"},
		{ReferenceID: first, Text: "another hit from the first document"},
	})

	assert.Equal(t, []uuid.UUID{first, second}, ids)
}

func TestExcerptReferenceIDsEmpty(t *testing.T) {
	assert.Empty(t, excerptReferenceIDs(nil))
}
