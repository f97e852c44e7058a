package summarizer

import (
	"math"
	"sort"
	"strings"

	"chatbot/internal/nlp"
)

// Tokenizer turns a sentence into normalized tokens.
type Tokenizer interface {
	Normalize(text string) []string
}

// FrequencySummarizer ranks sentences by normalized token frequency (stop words filtered).
type FrequencySummarizer struct {
	tokenizer Tokenizer
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer(tokenizer Tokenizer, stopwords map[string]struct{}) *FrequencySummarizer {
	if tokenizer == nil {
		tokenizer = nlp.NewNormalizer(nil)
	}
	return &FrequencySummarizer{tokenizer: tokenizer, stopwords: stopwords}
}

// Summarize splits text into sentences and returns the top maxSentences of them.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) string {
	sentences := nlp.SplitSentences(text)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}
	return s.SummarizeSentences(sentences, maxSentences)
}

// SummarizeSentences ranks already split sentences and joins the best ones in their original order.
func (s *FrequencySummarizer) SummarizeSentences(sentences []string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	if len(sentences) == 0 {
		return ""
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	for i, sent := range sentences {
		for _, tok := range s.tokenizer.Normalize(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			tokens[i] = append(tokens[i], tok)
			freq[tok]++
		}
	}
	// Normalize frequencies
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i := range sentences {
		sscore := 0.0
		for _, tok := range tokens[i] {
			sscore += freq[tok]
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(tokens[i])); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

// Keywords returns the n most frequent non-stop-word tokens across sentences, most frequent first.
func (s *FrequencySummarizer) Keywords(sentences []string, n int) []string {
	freq := map[string]int{}
	for _, sent := range sentences {
		for _, tok := range s.tokenizer.Normalize(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if n > 0 && n < len(words) {
		words = words[:n]
	}
	return words
}
