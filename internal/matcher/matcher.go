package matcher

import (
	"errors"
	"fmt"
	"math"

	"chatbot/internal/vectorspace"
)

// ErrInvariant signals that the vector space does not line up with the sentences it was built from.
var ErrInvariant = errors.New("matcher: vector space invariant violated")

// DefaultEpsilon is the tolerance used when comparing the best score with the threshold.
const DefaultEpsilon = 1e-9

// Options configure the no-match decision.
type Options struct {
	// Threshold is the score at or below which no sentence is considered a match.
	Threshold float64
	// Epsilon widens the threshold comparison; zero compares exactly.
	Epsilon float64
}

// Result is the outcome of a single match.
type Result struct {
	// Index of the selected sentence, or -1 when nothing matched.
	Index    int
	Sentence string
	Score    float64
	Matched  bool
	// Scores holds one cosine similarity per corpus sentence.
	Scores []float64
}

// SpaceBuilder builds a TF-IDF matrix whose rows follow the input order.
type SpaceBuilder interface {
	Build(sentences []string) vectorspace.Matrix
}

// Matcher selects the corpus sentence closest to a query.
// It never modifies the corpus it is given and is safe for concurrent use.
type Matcher struct {
	builder SpaceBuilder
	opts    Options
}

// New creates a matcher over the given vector space builder.
func New(builder SpaceBuilder, opts Options) *Matcher {
	return &Matcher{builder: builder, opts: opts}
}

// Options returns the matcher settings.
func (m *Matcher) Options() Options { return m.opts }

// Match builds a vector space over corpus followed by query and returns the
// corpus sentence with the highest cosine similarity to the query. Ties go to
// the lowest index. An empty corpus, or a best score that does not exceed the
// threshold, yields an unmatched Result rather than an error.
func (m *Matcher) Match(query string, corpus []string) (Result, error) {
	if len(corpus) == 0 {
		return Result{Index: -1}, nil
	}

	docs := make([]string, len(corpus), len(corpus)+1)
	copy(docs, corpus)
	docs = append(docs, query)

	space := m.builder.Build(docs)
	if len(space.Rows) != len(docs) {
		return Result{Index: -1}, fmt.Errorf("%w: %d rows for %d sentences", ErrInvariant, len(space.Rows), len(docs))
	}

	q := space.Rows[len(corpus)]
	scores := make([]float64, len(corpus))
	best := 0
	for i := range corpus {
		scores[i] = Cosine(space.Rows[i], q)
		if scores[i] > scores[best] {
			best = i
		}
	}

	res := Result{Index: -1, Score: scores[best], Scores: scores}
	if scores[best] <= m.opts.Threshold+m.opts.Epsilon {
		return res, nil
	}
	res.Index = best
	res.Sentence = corpus[best]
	res.Matched = true
	return res, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a zero vector.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
