package vectorspace

import (
	"math"
	"sort"
)

// Tokenizer turns a sentence into normalized tokens.
type Tokenizer interface {
	Normalize(text string) []string
}

// Matrix is a TF-IDF weight matrix. Rows follow the input sentence order,
// columns follow Vocabulary.
type Matrix struct {
	Vocabulary []string
	IDF        []float64
	Rows       [][]float64
}

// Dimension returns the number of vocabulary terms.
func (m Matrix) Dimension() int { return len(m.Vocabulary) }

// Builder computes TF-IDF matrices over ordered sentence collections.
// A Builder holds no per-build state and is safe for concurrent use.
type Builder struct {
	tokenizer Tokenizer
	stopWords map[string]struct{}
}

// NewBuilder creates a builder. stopWords are matched against normalized
// tokens; a nil set keeps every token.
func NewBuilder(tokenizer Tokenizer, stopWords map[string]struct{}) *Builder {
	return &Builder{tokenizer: tokenizer, stopWords: stopWords}
}

// Build tokenizes every sentence and returns its TF-IDF matrix.
// Term frequency is the raw count of a term in a sentence and the
// inverse document frequency is smoothed: ln((1+N)/(1+df)) + 1.
// Each row is L2-normalized; a sentence with no kept tokens yields a zero row.
func (b *Builder) Build(sentences []string) Matrix {
	docs := make([][]string, len(sentences))
	df := make(map[string]int)
	for i, text := range sentences {
		docs[i] = b.terms(text)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Create stable ordering for vocabulary
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(sentences))
	for i, term := range vocab {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	rows := make([][]float64, len(docs))
	for i, tokens := range docs {
		row := make([]float64, len(vocab))
		for _, tok := range tokens {
			row[index[tok]]++
		}
		for j := range row {
			row[j] *= idf[j]
		}
		normalize(row)
		rows[i] = row
	}

	return Matrix{Vocabulary: vocab, IDF: idf, Rows: rows}
}

func (b *Builder) terms(text string) []string {
	tokens := b.tokenizer.Normalize(text)
	if len(b.stopWords) == 0 {
		return tokens
	}
	out := tokens[:0]
	for _, t := range tokens {
		if _, isStop := b.stopWords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// L2 normalize in place
func normalize(vec []float64) {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}
