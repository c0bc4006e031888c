package index

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

var stopwords = buildStopwords(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
	"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
	"were", "be", "been", "being", "it", "this", "that", "these", "those",
	"from", "up", "down", "over", "under", "than", "so", "such", "into",
	"about", "between", "through", "during", "before", "after", "out",
	"off", "own", "same", "too", "very", "can", "will", "just", "should",
	"now", "we", "you", "your", "our", "each", "how", "what", "when",
	"where", "per",
)

func buildStopwords(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Vectorizer is a TF-IDF embedder fitted once over a section corpus. The
// vocabulary is sorted so vector dimensions are stable for a given corpus;
// any corpus change means fitting a fresh vectorizer.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// FitVectorizer builds vocabulary and smoothed IDF weights from the
// corpus. An empty corpus fits a zero-dimensional vectorizer; embedding
// and search against it simply produce nothing.
func FitVectorizer(corpus []string) *Vectorizer {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v
}

// Dimension returns the vector dimensionality, the vocabulary size
func (v *Vectorizer) Dimension() int { return len(v.idf) }

// Vector embeds text as an L2-normalized TF-IDF vector, so the dot
// product of two vectors is their cosine similarity. Text sharing no
// vocabulary with the corpus embeds to the zero vector.
func (v *Vectorizer) Vector(text string) []float64 {
	vec := make([]float64, len(v.idf))

	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
