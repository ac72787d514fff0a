// Package tfidf is the local embedder for the reference index. It needs no
// network and no model files: the vocabulary is learned from the reference
// entries themselves when the index is built.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// fillers carry no meaning in a reference range line. Unit and test tokens
// such as "dl", "mcl" or "wbc" are kept.
var fillers = toSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
	"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those",
	"from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about",
	"between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too",
	"very", "can", "will", "just", "don", "should", "now",
)

// Embedder maps text onto the term space of the prepared corpus. Each
// reference entry starts with its test name and no name appears in another
// entry, so a bare test name gets all of its weight on terms unique to its
// own entry and lands nearest to it. Text sharing no term with the corpus
// maps to the zero vector.
type Embedder struct {
	terms  map[string]int
	weight []float64 // idf per term position
}

// NewEmbedder returns an embedder that must be prepared before use.
func NewEmbedder() *Embedder { return &Embedder{} }

func (e *Embedder) Name() string { return "tfidf" }

// Prepare learns the vocabulary from corpus. Term positions follow sorted
// order, so the same corpus always yields the same vector layout.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("tfidf: empty corpus")
	}
	docFreq := make(map[string]int)
	for _, text := range corpus {
		for term := range toSet(words(text)...) {
			docFreq[term]++
		}
	}
	if len(docFreq) == 0 {
		return errors.New("tfidf: corpus has no terms")
	}
	vocab := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	n := float64(len(corpus))
	e.terms = make(map[string]int, len(vocab))
	e.weight = make([]float64, len(vocab))
	for i, term := range vocab {
		e.terms[term] = i
		e.weight[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

func (e *Embedder) Dimension() int { return len(e.weight) }

// Embed returns one unit-length vector per text. Unit length makes the
// store's L2 ranking agree with cosine similarity.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if e.terms == nil {
		return nil, errors.New("tfidf: embedder not prepared")
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *Embedder) vector(text string) []float64 {
	vec := make([]float64, len(e.weight))
	known := 0
	for _, w := range words(text) {
		if pos, ok := e.terms[w]; ok {
			vec[pos]++
			known++
		}
	}
	if known == 0 {
		return vec
	}
	for pos, count := range vec {
		if count > 0 {
			vec[pos] = count / float64(known) * e.weight[pos]
		}
	}
	normalize(vec)
	return vec
}

// words lowercases text and returns its letter-only tokens minus fillers.
func words(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := fillers[w]; !skip {
			out = append(out, w)
		}
	}
	return out
}

func normalize(vec []float64) {
	sum := 0.0
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
