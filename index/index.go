// Package index maintains an in-memory embedding index over the parsed
// segments of the reference corpus. The index is read-mostly: rebuilds
// construct a complete immutable snapshot and swap it in, so queries
// always run against fully built data and never observe a rebuild in
// progress. Vectors live only inside snapshots; dropping a reference and
// rebuilding forgets its vectors with it.
package index

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Section is one indexable unit: a parsed segment of a reference
// document, flattened to text.
type Section struct {
	Title string
	Text  string
}

// Document is the indexable view of a reference document. Seq is the
// ingestion sequence used to break score ties, earlier wins.
type Document struct {
	ID       uuid.UUID
	Title    string
	Seq      int64
	Sections []Section
}

// Entry is one indexed section inside a snapshot
type Entry struct {
	ReferenceID    uuid.UUID
	ReferenceTitle string
	SegmentTitle   string
	SegmentIndex   int
	Seq            int64
	Text           string

	vector []float64
}

// Hit is a scored entry returned by a search
type Hit struct {
	Entry Entry
	Score float64
}

// Snapshot is an immutable, versioned view of the index. Holders may keep
// querying a snapshot after a newer one has been swapped in.
type Snapshot struct {
	version    int64
	builtAt    time.Time
	vectorizer *Vectorizer
	entries    []Entry
}

func newSnapshot(version int64, docs []Document) *Snapshot {
	ordered := make([]Document, len(docs))
	copy(ordered, docs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	var corpus []string
	for _, doc := range ordered {
		for _, sec := range doc.Sections {
			corpus = append(corpus, sec.Text)
		}
	}

	snap := &Snapshot{
		version:    version,
		builtAt:    time.Now().UTC(),
		vectorizer: FitVectorizer(corpus),
	}

	for _, doc := range ordered {
		for i, sec := range doc.Sections {
			snap.entries = append(snap.entries, Entry{
				ReferenceID:    doc.ID,
				ReferenceTitle: doc.Title,
				SegmentTitle:   sec.Title,
				SegmentIndex:   i,
				Seq:            doc.Seq,
				Text:           sec.Text,
				vector:         snap.vectorizer.Vector(sec.Text),
			})
		}
	}

	return snap
}

// Version returns the snapshot's monotonically increasing version
func (s *Snapshot) Version() int64 { return s.version }

// BuiltAt returns when the snapshot was constructed
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of indexed sections
func (s *Snapshot) Len() int { return len(s.entries) }

// Dimension returns the snapshot's vector dimensionality
func (s *Snapshot) Dimension() int { return s.vectorizer.Dimension() }

// Embed vectorizes query text with the snapshot's own vectorizer
func (s *Snapshot) Embed(text string) []float64 {
	return s.vectorizer.Vector(text)
}

// Search returns up to k entries by descending cosine similarity against
// vector, skipping entries the filter rejects and entries with no
// similarity at all. Ties break by ingestion sequence, then by position
// inside the document, earlier first. Searching an empty snapshot returns
// nothing.
func (s *Snapshot) Search(vector []float64, k int, filter func(Entry) bool) []Hit {
	var hits []Hit
	for _, entry := range s.entries {
		if filter != nil && !filter(entry) {
			continue
		}
		score := dot(entry.vector, vector)
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{Entry: entry, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Entry.Seq != hits[j].Entry.Seq {
			return hits[i].Entry.Seq < hits[j].Entry.Seq
		}
		return hits[i].Entry.SegmentIndex < hits[j].Entry.SegmentIndex
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Index holds the current snapshot and hands out rebuilt ones atomically
type Index struct {
	mu      sync.RWMutex
	current *Snapshot
	version int64
}

// NewIndex creates an index whose current snapshot is empty
func NewIndex() *Index {
	return &Index{current: newSnapshot(0, nil)}
}

// Current returns the live snapshot. The result is immutable and safe to
// query after later rebuilds.
func (i *Index) Current() *Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.current
}

// Rebuild constructs a complete snapshot from docs and swaps it in,
// returning the new snapshot. Readers of the previous snapshot are not
// disturbed.
func (i *Index) Rebuild(docs []Document) *Snapshot {
	i.mu.Lock()
	i.version++
	version := i.version
	i.mu.Unlock()

	snap := newSnapshot(version, docs)

	i.mu.Lock()
	if i.current == nil || snap.version > i.current.version {
		i.current = snap
	}
	i.mu.Unlock()

	return snap
}
