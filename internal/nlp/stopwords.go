package nlp

import "strings"

// EnglishStopWords returns the stop-word set applied to lemmatized tokens.
// Inflected forms are listed together with their lemmas so the set works with
// and without a lemmatizer.
func EnglishStopWords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "am", "are", "was", "were", "be", "been", "being", "it", "its", "this",
		"that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than",
		"so", "such", "into", "about", "between", "through", "during", "before", "after", "above",
		"below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should",
		"now", "has", "have", "had", "do", "does", "did", "not", "no", "nor", "i", "me", "my", "myself",
		"we", "us", "our", "ours", "ourselves", "you", "your", "yours", "yourself", "yourselves",
		"he", "him", "his", "himself", "she", "her", "hers", "herself", "itself", "they", "them",
		"their", "theirs", "themselves", "what", "which", "who", "whom", "whose", "when", "where",
		"why", "how", "all", "any", "each", "every", "both", "few", "more", "most", "other", "some",
		"only", "also", "would", "could", "may", "might", "must", "shall", "here", "there", "while",
		"until", "because", "once", "yet", "ever", "s", "t", "d", "ll", "m", "re", "ve",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// StopWords resolves a configured stop-word list name. An empty or "none" name disables filtering.
func StopWords(name string) map[string]struct{} {
	switch strings.ToLower(name) {
	case "english", "en":
		return EnglishStopWords()
	default:
		return nil
	}
}
