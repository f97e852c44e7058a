package vectorspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot/internal/nlp"
)

func newTestBuilder(stop map[string]struct{}) *Builder {
	return NewBuilder(nlp.NewNormalizer(nlp.NewDictionaryLemmatizer()), stop)
}

func column(t *testing.T, m Matrix, term string) int {
	t.Helper()
	for i, v := range m.Vocabulary {
		if v == term {
			return i
		}
	}
	t.Fatalf("term %q not in vocabulary %v", term, m.Vocabulary)
	return -1
}

func TestBuilder_Build_Shape(t *testing.T) {
	b := newTestBuilder(nil)
	m := b.Build([]string{"the cat sat", "a dog ran", ""})

	require.Len(t, m.Rows, 3)
	assert.Equal(t, []string{"a", "cat", "dog", "run", "sit", "the"}, m.Vocabulary)
	assert.Equal(t, m.Dimension(), len(m.IDF))
	for _, row := range m.Rows {
		assert.Len(t, row, m.Dimension())
	}
	for _, v := range m.Rows[2] {
		assert.Zero(t, v)
	}
}

func TestBuilder_Build_Deterministic(t *testing.T) {
	b := newTestBuilder(nlp.EnglishStopWords())
	in := []string{"hello how are you", "goodbye see you later", "what is your name", "what is your name"}

	first := b.Build(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, b.Build(in))
	}
}

func TestBuilder_Build_IDFWeighting(t *testing.T) {
	b := newTestBuilder(nil)
	m := b.Build([]string{"cat dog", "cat bird", "cat fish"})

	cat := column(t, m, "cat")
	dog := column(t, m, "dog")

	// a term in every sentence gets the minimum smoothed idf
	assert.InDelta(t, 1.0, m.IDF[cat], 1e-12)
	assert.Greater(t, m.IDF[dog], m.IDF[cat])
	assert.InDelta(t, math.Log(4.0/2.0)+1, m.IDF[dog], 1e-12)

	// the rare term dominates its own row
	assert.Greater(t, m.Rows[0][dog], m.Rows[0][cat])
	// and is absent from the others
	assert.Zero(t, m.Rows[1][dog])
}

func TestBuilder_Build_RawCounts(t *testing.T) {
	b := newTestBuilder(nil)
	m := b.Build([]string{"red car blue car"})

	car := column(t, m, "car")
	red := column(t, m, "red")
	assert.InDelta(t, 2*m.Rows[0][red], m.Rows[0][car], 1e-12)
}

func TestBuilder_Build_UnitRows(t *testing.T) {
	b := newTestBuilder(nil)
	m := b.Build([]string{"one two three", "two three four four", "five"})

	for _, row := range m.Rows {
		sum := 0.0
		for _, v := range row {
			sum += v * v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestBuilder_Build_StopWords(t *testing.T) {
	b := newTestBuilder(nlp.EnglishStopWords())
	m := b.Build([]string{"what is your name", "the cat sat on the mat"})

	assert.Equal(t, []string{"cat", "mat", "name", "sit"}, m.Vocabulary)
}

func TestBuilder_Build_Empty(t *testing.T) {
	b := newTestBuilder(nil)
	m := b.Build(nil)
	assert.Empty(t, m.Rows)
	assert.Empty(t, m.Vocabulary)
}
