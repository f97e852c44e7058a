package nlp

import (
	"strings"
	"unicode"
)

// DictionaryLemmatizer maps English inflected forms to their base form using a table
// of irregular forms and conservative suffix rules for plurals, -ing and -ed.
type DictionaryLemmatizer struct {
	irregular map[string]string
	keep      map[string]struct{}
	// nouns whose singular keeps the e that plural rules would strip
	eNouns map[string]struct{}
}

// NewDictionaryLemmatizer creates the default English lemmatizer.
func NewDictionaryLemmatizer() *DictionaryLemmatizer {
	return &DictionaryLemmatizer{
		irregular: irregularForms(),
		keep:      invariantWords(),
		eNouns:    eEndingNouns(),
	}
}

func (l *DictionaryLemmatizer) Name() string { return "dictionary" }

// Lemmatize returns the base form of word, or word itself when no rule applies.
func (l *DictionaryLemmatizer) Lemmatize(word string) string {
	if base, ok := l.irregular[word]; ok {
		return base
	}
	if len(word) < 4 || !isASCIIAlpha(word) {
		return word
	}
	if _, ok := l.keep[word]; ok {
		return word
	}

	if strings.HasSuffix(word, "es") {
		if _, ok := l.eNouns[word[:len(word)-1]]; ok {
			return word[:len(word)-1]
		}
	}

	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "zzes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"),
		strings.HasSuffix(word, "us"),
		strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}

	switch {
	case strings.HasSuffix(word, "ing"):
		if stem := word[:len(word)-3]; len(stem) >= 3 && hasVowel(stem) {
			return restoreStem(stem)
		}
	case strings.HasSuffix(word, "eed"):
		if measure(word[:len(word)-3]) > 0 {
			return word[:len(word)-1]
		}
		return word
	case strings.HasSuffix(word, "ied"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ed"):
		if stem := word[:len(word)-2]; len(stem) >= 3 && hasVowel(stem) {
			return restoreStem(stem)
		}
	}
	return word
}

// restoreStem undoes consonant doubling ("runn" -> "run") and restores a
// silent e on short consonant-vowel-consonant stems ("mak" -> "make").
func restoreStem(stem string) string {
	if endsDoubleConsonant(stem) {
		switch stem[len(stem)-1] {
		case 'l', 's', 'z':
			return stem
		}
		return stem[:len(stem)-1]
	}
	if measure(stem) == 1 && endsCVC(stem) {
		return stem + "e"
	}
	return stem
}

func isASCIIAlpha(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func irregularForms() map[string]string {
	pairs := [][2]string{
		{"am", "be"}, {"is", "be"}, {"are", "be"}, {"was", "be"}, {"were", "be"}, {"been", "be"}, {"being", "be"},
		{"has", "have"}, {"had", "have"}, {"having", "have"},
		{"does", "do"}, {"did", "do"}, {"done", "do"}, {"doing", "do"},
		{"goes", "go"}, {"went", "go"}, {"gone", "go"}, {"going", "go"},
		{"said", "say"}, {"says", "say"}, {"made", "make"}, {"took", "take"}, {"taken", "take"},
		{"came", "come"}, {"saw", "see"}, {"seen", "see"}, {"knew", "know"}, {"known", "know"},
		{"got", "get"}, {"gotten", "get"}, {"gave", "give"}, {"given", "give"}, {"found", "find"},
		{"thought", "think"}, {"told", "tell"}, {"became", "become"}, {"left", "leave"},
		{"felt", "feel"}, {"brought", "bring"}, {"began", "begin"}, {"begun", "begin"},
		{"kept", "keep"}, {"held", "hold"}, {"wrote", "write"}, {"written", "write"},
		{"stood", "stand"}, {"heard", "hear"}, {"meant", "mean"}, {"met", "meet"}, {"ran", "run"},
		{"paid", "pay"}, {"sat", "sit"}, {"spoke", "speak"}, {"spoken", "speak"}, {"led", "lead"},
		{"grew", "grow"}, {"grown", "grow"}, {"lost", "lose"}, {"fell", "fall"}, {"fallen", "fall"},
		{"sent", "send"}, {"built", "build"}, {"understood", "understand"}, {"ate", "eat"},
		{"eaten", "eat"}, {"drove", "drive"}, {"driven", "drive"}, {"bought", "buy"},
		{"wore", "wear"}, {"worn", "wear"}, {"chose", "choose"}, {"chosen", "choose"},
		{"taught", "teach"}, {"caught", "catch"}, {"won", "win"}, {"slept", "sleep"},
		{"used", "use"}, {"lying", "lie"}, {"dying", "die"}, {"tied", "tie"}, {"died", "die"},
		{"children", "child"}, {"men", "man"}, {"women", "woman"}, {"people", "person"},
		{"mice", "mouse"}, {"feet", "foot"}, {"teeth", "tooth"}, {"geese", "goose"},
		{"wives", "wife"}, {"knives", "knife"}, {"lives", "life"}, {"leaves", "leaf"},
		{"wolves", "wolf"}, {"halves", "half"}, {"shelves", "shelf"}, {"thieves", "thief"},
		{"potatoes", "potato"}, {"tomatoes", "tomato"}, {"heroes", "hero"},
		{"data", "datum"}, {"criteria", "criterion"}, {"phenomena", "phenomenon"},
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p[0]] = p[1]
	}
	return m
}

// eEndingNouns lists singulars ending in -ie or -che, whose plurals the
// -ies and -ches rules would otherwise turn into "movy" or "headach".
func eEndingNouns() map[string]struct{} {
	words := []string{
		"movie", "cookie", "calorie", "zombie", "rookie", "brownie", "selfie", "hippie",
		"prairie", "genie", "pixie", "goalie", "hoodie", "smoothie", "sweetie", "birdie",
		"lassie", "veggie", "freebie", "newbie", "groupie", "auntie",
		"headache", "stomachache", "toothache", "backache", "earache", "ache", "cache",
		"niche", "moustache", "mustache", "avalanche", "quiche", "cliche", "creche",
		"psyche", "microfiche",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func invariantWords() map[string]struct{} {
	words := []string{
		"this", "thus", "always", "perhaps", "series", "species", "news", "lens", "chaos",
		"atlas", "canvas", "alias", "bias", "whereas", "sometimes", "physics", "mathematics",
		"politics", "economics", "nothing", "something", "anything", "everything", "morning",
		"evening", "during", "thing", "king", "ring", "spring", "string", "ceiling", "wedding",
		"hundred", "sacred", "naked", "wicked", "kindred", "bred", "shed", "sled", "shred",
		"interested", "united",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
