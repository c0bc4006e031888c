package retrieval

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metakael/programme-outline/index"
	"github.com/metakael/programme-outline/models"
)

func buildIndex(t *testing.T, docs []index.Document) *index.Index {
	t.Helper()
	idx := index.NewIndex()
	idx.Rebuild(docs)
	return idx
}

func testCorpus() ([]index.Document, []uuid.UUID) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	docs := []index.Document{
		{
			ID:    ids[0],
			Title: "Retrospective Playbook",
			Seq:   1,
			Sections: []index.Section{
				{Title: "Warm Up", Text: "Warm Up\nagile retrospective team feedback rounds"},
				{Title: "Actions", Text: "Actions\nretrospective actions agile improvements"},
			},
		},
		{
			ID:    ids[1],
			Title: "Feedback Workshop",
			Seq:   2,
			Sections: []index.Section{
				{Title: "Giving Feedback", Text: "Giving Feedback\nteam feedback conversations practice"},
			},
		},
		{
			ID:    ids[2],
			Title: "Cooking Basics",
			Seq:   3,
			Sections: []index.Section{
				{Title: "Knife Skills", Text: "Knife Skills\nchopping onions julienne carrots"},
			},
		},
	}
	return docs, ids
}

func TestSelectThresholdScalesWithAdherence(t *testing.T) {
	docs, _ := testCorpus()
	r := New(buildIndex(t, docs))

	spec := models.Specification{
		Objectives: "run an agile retrospective with team feedback",
		Segments:   []models.SegmentSpec{{Title: "Icebreaker"}},
	}

	prev := -1
	for _, adherence := range []float64{0, 0.25, 0.5, 0.75, 1} {
		spec.StyleAdherence = adherence
		got := len(r.Select(spec))
		if prev >= 0 {
			assert.LessOrEqual(t, got, prev, "adherence %v admitted more excerpts than a lower weight", adherence)
		}
		prev = got
	}

	spec.StyleAdherence = 0
	require.NotEmpty(t, r.Select(spec), "zero adherence should keep every positive-similarity excerpt")
}

func TestSelectExcludesUnrelatedReferences(t *testing.T) {
	docs, ids := testCorpus()
	r := New(buildIndex(t, docs))

	spec := models.Specification{Objectives: "agile retrospective feedback"}
	excerpts := r.Select(spec)
	require.NotEmpty(t, excerpts)
	for _, ex := range excerpts {
		assert.NotEqual(t, ids[2], ex.ReferenceID, "unrelated reference should never score above zero")
	}
}

func TestSelectRestrictsToRequestedReferences(t *testing.T) {
	docs, ids := testCorpus()
	r := New(buildIndex(t, docs))

	spec := models.Specification{
		Objectives:   "agile retrospective team feedback",
		ReferenceIDs: []uuid.UUID{ids[1]},
	}
	excerpts := r.Select(spec)
	require.NotEmpty(t, excerpts)
	for _, ex := range excerpts {
		assert.Equal(t, ids[1], ex.ReferenceID)
	}
}

func TestSelectEmptyReferenceListMeansWholeCorpus(t *testing.T) {
	docs, ids := testCorpus()
	r := New(buildIndex(t, docs))

	spec := models.Specification{Objectives: "agile retrospective team feedback"}
	seen := make(map[uuid.UUID]bool)
	for _, ex := range r.Select(spec) {
		seen[ex.ReferenceID] = true
	}
	assert.True(t, seen[ids[0]])
	assert.True(t, seen[ids[1]])
}

func TestSelectUnknownReferenceYieldsNothing(t *testing.T) {
	docs, _ := testCorpus()
	r := New(buildIndex(t, docs))

	spec := models.Specification{
		Objectives:   "agile retrospective team feedback",
		ReferenceIDs: []uuid.UUID{uuid.New()},
	}
	assert.Empty(t, r.Select(spec))
}

func TestSelectEmptyIndex(t *testing.T) {
	r := New(index.NewIndex())
	assert.Empty(t, r.Select(models.Specification{Objectives: "anything"}))
}

func TestSelectHonorsTopK(t *testing.T) {
	docs, _ := testCorpus()
	r := New(buildIndex(t, docs), WithTopK(1))

	spec := models.Specification{Objectives: "agile retrospective team feedback"}
	excerpts := r.Select(spec)
	require.Len(t, excerpts, 1)
	assert.Equal(t, "Retrospective Playbook", excerpts[0].ReferenceTitle)
}

func TestQueryText(t *testing.T) {
	spec := models.Specification{
		Objectives: "practice giving feedback",
		Segments: []models.SegmentSpec{
			{Title: "Welcome"},
			{Description: "no title on purpose"},
			{Title: "Feedback Rounds"},
		},
	}
	assert.Equal(t, "practice giving feedback\nWelcome\nFeedback Rounds", QueryText(spec))
}
