package nlp

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"

	"chatbot/internal/domain"
)

// Punctuation is the fixed set of characters removed before word segmentation.
const Punctuation = "!()-[]{};:'\"\\,<>./?@#$%^&*_~"

// ErrUnknownLemmatizer is returned for a lemmatizer name that is not registered.
var ErrUnknownLemmatizer = errors.New("unknown lemmatizer")

// NewLemmatizer resolves a configured lemmatizer name.
func NewLemmatizer(name string) (domain.Lemmatizer, error) {
	switch strings.ToLower(name) {
	case "dictionary", "":
		return NewDictionaryLemmatizer(), nil
	case "porter":
		return NewPorterStemmer(), nil
	case "none":
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownLemmatizer, name)
	}
}

// Normalizer turns raw text into lemmatized tokens.
type Normalizer struct {
	lemmatizer domain.Lemmatizer
	strip      map[rune]struct{}
}

// NewNormalizer creates a normalizer; a nil lemmatizer leaves words unchanged.
func NewNormalizer(lemmatizer domain.Lemmatizer) *Normalizer {
	if lemmatizer == nil {
		lemmatizer = Identity{}
	}
	strip := make(map[rune]struct{}, len(Punctuation))
	for _, r := range Punctuation {
		strip[r] = struct{}{}
	}
	return &Normalizer{lemmatizer: lemmatizer, strip: strip}
}

// Lemmatizer returns the lemmatizer in use.
func (n *Normalizer) Lemmatizer() domain.Lemmatizer { return n.lemmatizer }

// Normalize lower-cases text, strips punctuation, splits it into words and lemmatizes each one.
func (n *Normalizer) Normalize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if _, ok := n.strip[r]; ok {
			return -1
		}
		return r
	}, strings.ToLower(text))

	var tokens []string
	seg := words.FromString(cleaned)
	for seg.Next() {
		w := seg.Value()
		if !hasWordRune(w) {
			continue
		}
		tokens = append(tokens, n.lemmatizer.Lemmatize(w))
	}
	return tokens
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Identity is a Lemmatizer that returns words unchanged.
type Identity struct{}

func (Identity) Name() string                 { return "none" }
func (Identity) Lemmatize(word string) string { return word }
