package index

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func doc(seq int64, title, text string) Document {
	return Document{
		ID:       uuid.New(),
		Title:    title,
		Seq:      seq,
		Sections: []Section{{Title: title, Text: text}},
	}
}

func TestSearchReturnsSelfAsTopHit(t *testing.T) {
	a := doc(1, "Leadership", "Leadership workshop with trust exercises and feedback rounds")
	b := doc(2, "Cooking", "Cooking class covering knife skills and fresh pasta")
	c := doc(3, "Finance", "Budget planning session for finance teams")

	idx := NewIndex()
	snap := idx.Rebuild([]Document{a, b, c})

	hits := snap.Search(snap.Embed(a.Sections[0].Text), 3, nil)
	if len(hits) == 0 {
		t.Fatal("Search() returned no hits")
	}
	if hits[0].Entry.ReferenceID != a.ID {
		t.Errorf("top hit = %s, want document A", hits[0].Entry.ReferenceTitle)
	}
	if math.Abs(hits[0].Score-1.0) > 1e-9 {
		t.Errorf("self-similarity score = %f, want 1.0", hits[0].Score)
	}
}

func TestSearchEmptySnapshot(t *testing.T) {
	idx := NewIndex()
	snap := idx.Current()

	if snap.Len() != 0 || snap.Version() != 0 {
		t.Fatalf("fresh index: len=%d version=%d", snap.Len(), snap.Version())
	}
	if hits := snap.Search(snap.Embed("anything at all"), 5, nil); len(hits) != 0 {
		t.Errorf("Search() on empty snapshot = %v, want none", hits)
	}
}

func TestSearchBreaksTiesByIngestionOrder(t *testing.T) {
	text := "Facilitation techniques for large groups"
	first := doc(7, "First", text)
	second := doc(9, "Second", text)

	idx := NewIndex()
	// Deliberately passed out of order; sequence decides, not slice order.
	snap := idx.Rebuild([]Document{second, first})

	hits := snap.Search(snap.Embed(text), 2, nil)
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	if hits[0].Entry.Seq != 7 || hits[1].Entry.Seq != 9 {
		t.Errorf("tie order = %d, %d, want 7, 9", hits[0].Entry.Seq, hits[1].Entry.Seq)
	}
}

func TestSearchFilter(t *testing.T) {
	a := doc(1, "Kept", "Retrospective formats and icebreaker questions")
	b := doc(2, "Dropped", "Retrospective formats and icebreaker questions")

	idx := NewIndex()
	snap := idx.Rebuild([]Document{a, b})

	hits := snap.Search(snap.Embed("retrospective icebreaker"), 10, func(e Entry) bool {
		return e.ReferenceID == a.ID
	})
	if len(hits) != 1 || hits[0].Entry.ReferenceID != a.ID {
		t.Errorf("filtered hits = %+v, want only document A", hits)
	}
}

func TestSearchSkipsZeroSimilarity(t *testing.T) {
	a := doc(1, "Gardening", "Pruning roses and preparing soil beds")

	idx := NewIndex()
	snap := idx.Rebuild([]Document{a})

	if hits := snap.Search(snap.Embed("quantum chromodynamics"), 5, nil); len(hits) != 0 {
		t.Errorf("Search() = %v, want none for disjoint vocabulary", hits)
	}
}

func TestRebuildSwapsSnapshots(t *testing.T) {
	idx := NewIndex()
	old := idx.Rebuild([]Document{doc(1, "Solo", "Team building outdoors")})

	if old.Version() != 1 {
		t.Fatalf("first rebuild version = %d, want 1", old.Version())
	}

	fresh := idx.Rebuild([]Document{
		doc(1, "Solo", "Team building outdoors"),
		doc(2, "Second", "Negotiation practice with role play scenarios"),
	})

	if fresh.Version() != 2 {
		t.Errorf("second rebuild version = %d, want 2", fresh.Version())
	}
	if idx.Current() != fresh {
		t.Error("Current() does not return the latest snapshot")
	}

	// The captured snapshot still answers queries against its own corpus.
	if old.Len() != 1 {
		t.Errorf("old snapshot len = %d, want 1", old.Len())
	}
	if old.Dimension() == fresh.Dimension() {
		t.Errorf("dimensions unexpectedly equal: %d", old.Dimension())
	}
	if hits := old.Search(old.Embed("team building"), 1, nil); len(hits) != 1 {
		t.Errorf("old snapshot search = %v, want 1 hit", hits)
	}
}

func TestVectorizerDropsStopwords(t *testing.T) {
	v := FitVectorizer([]string{"the workshop is about the team"})
	if _, ok := v.vocabulary["the"]; ok {
		t.Error("stopword made it into the vocabulary")
	}
	if _, ok := v.vocabulary["workshop"]; !ok {
		t.Error("content word missing from the vocabulary")
	}
}

func TestVectorizerEmptyCorpus(t *testing.T) {
	v := FitVectorizer(nil)
	if v.Dimension() != 0 {
		t.Errorf("Dimension() = %d, want 0", v.Dimension())
	}
	if vec := v.Vector("anything"); len(vec) != 0 {
		t.Errorf("Vector() = %v, want empty", vec)
	}
}
