package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// abbreviations never end a sentence when followed by a period.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {}, "st": {},
	"vs": {}, "e.g": {}, "i.e": {}, "eg": {}, "ie": {}, "cf": {}, "approx": {}, "dept": {},
	"fig": {}, "inc": {}, "ltd": {}, "corp": {}, "vol": {}, "etc": {},
	"jan": {}, "feb": {}, "apr": {}, "jun": {}, "jul": {}, "aug": {},
	"sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
	"mme": {}, "mlle": {},
}

// SplitSentences splits text into sentences using Unicode sentence boundaries,
// then re-joins segments that were cut after a known abbreviation or an initial.
// Lower-case text is handled: a period followed by a lower-case word still ends a sentence.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	var pending strings.Builder
	seg := sentences.FromString(shadow(text))
	for seg.Next() {
		part := text[seg.Start():seg.End()]
		pending.WriteString(part)
		current := strings.TrimSpace(pending.String())
		if current == "" {
			pending.Reset()
			continue
		}
		if !strings.ContainsAny(part, "\n\r") && joinsNext(current, text[seg.End():]) {
			continue
		}
		out = append(out, current)
		pending.Reset()
	}
	if rest := strings.TrimSpace(pending.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

// shadow returns a copy of text with the same byte offsets in which the first
// letter after terminal punctuation and whitespace is upper-cased.
func shadow(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	sawTerm, sawSpace := false, false
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(text[i])
			sawTerm, sawSpace = false, false
			i++
			continue
		}
		i += size
		switch {
		case r == '.' || r == '!' || r == '?':
			sawTerm, sawSpace = true, false
		case unicode.IsSpace(r):
			if sawTerm {
				sawSpace = true
			}
		case sawTerm && sawSpace && unicode.IsLower(r):
			if up := unicode.ToUpper(r); utf8.RuneLen(up) == utf8.RuneLen(r) {
				r = up
			}
			sawTerm, sawSpace = false, false
		case sawTerm && !sawSpace && strings.ContainsRune(`"')]`, r):
		default:
			sawTerm, sawSpace = false, false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// joinsNext reports whether the segment s was cut after an abbreviation or an
// initial and must be continued by the text that follows it.
func joinsNext(s, next string) bool {
	last, ok := lastDottedWord(s)
	if !ok {
		return false
	}
	if _, ok := abbreviations[last]; ok {
		return true
	}
	return isInitial(last) && startsUpper(next)
}

// lastDottedWord returns the lower-cased word before a trailing period.
func lastDottedWord(s string) (string, bool) {
	if !strings.HasSuffix(s, ".") {
		return "", false
	}
	body := strings.TrimSuffix(s, ".")
	idx := strings.LastIndexFunc(body, unicode.IsSpace)
	last := strings.TrimLeft(strings.ToLower(body[idx+1:]), "(\"'")
	return last, last != ""
}

// isInitial matches a single letter such as the "j" of "J. Smith".
// "a" and "i" are ordinary words and never count as initials.
func isInitial(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsLetter(r) && r != 'a' && r != 'i'
}

func startsUpper(text string) bool {
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		return unicode.IsUpper(r)
	}
	return false
}
