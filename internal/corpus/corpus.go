package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"chatbot/internal/nlp"
)

// DefaultSentence is served when no corpus file can be found.
const DefaultSentence = "Hello, I am a basic chatbot. How can I help you?"

// ErrOutOfRange is returned by At for an invalid index.
var ErrOutOfRange = errors.New("corpus: index out of range")

// Corpus is an immutable, ordered list of candidate reply sentences.
// The position of a sentence is its identity.
type Corpus struct {
	sentences []string
	source    string
	defaulted bool
}

// Load reads path, splits it into sentences and optionally lower-cases each one.
// path may be a glob pattern such as "data/**/*.txt"; matching files are read
// in lexical order and concatenated. A missing file, or a pattern with no
// matches, yields the built-in default corpus.
func Load(path string, lowercase bool) (*Corpus, error) {
	text, err := readSource(path)
	if errors.Is(err, fs.ErrNotExist) {
		c := FromSentences([]string{DefaultSentence}, lowercase)
		c.source = path
		c.defaulted = true
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	c := FromText(text, lowercase)
	c.source = path
	return c, nil
}

func readSource(path string) (string, error) {
	if !isPattern(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read corpus %s: %w", path, err)
		}
		return string(data), nil
	}

	matches, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("expand corpus pattern %s: %w", path, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no files match %s: %w", path, fs.ErrNotExist)
	}
	sort.Strings(matches)

	var b strings.Builder
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return "", fmt.Errorf("read corpus %s: %w", m, err)
		}
		b.Write(data)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func isPattern(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// FromText splits raw text into a corpus.
func FromText(text string, lowercase bool) *Corpus {
	return FromSentences(nlp.SplitSentences(text), lowercase)
}

// FromSentences builds a corpus from already split sentences. Blank entries are dropped.
func FromSentences(sentences []string, lowercase bool) *Corpus {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lowercase {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return &Corpus{sentences: out}
}

// Len returns the number of sentences.
func (c *Corpus) Len() int { return len(c.sentences) }

// Sentences returns a copy of the sentences in order.
func (c *Corpus) Sentences() []string {
	out := make([]string, len(c.sentences))
	copy(out, c.sentences)
	return out
}

// View returns the sentences without copying. Callers must not modify the result.
func (c *Corpus) View() []string { return c.sentences }

// At returns the sentence at index i.
func (c *Corpus) At(i int) (string, error) {
	if i < 0 || i >= len(c.sentences) {
		return "", fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(c.sentences))
	}
	return c.sentences[i], nil
}

// Source returns the path or pattern the corpus was loaded from.
func (c *Corpus) Source() string { return c.source }

// Defaulted reports whether the built-in default corpus is in use.
func (c *Corpus) Defaulted() bool { return c.defaulted }

// Text joins the sentences with newlines.
func (c *Corpus) Text() string { return strings.Join(c.sentences, "\n") }
