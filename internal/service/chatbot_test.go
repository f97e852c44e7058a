package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot/internal/corpus"
	"chatbot/internal/domain"
	"chatbot/internal/matcher"
	"chatbot/internal/nlp"
	"chatbot/internal/transcript"
	"chatbot/internal/vectorspace"
)

func newTestMatcher() *matcher.Matcher {
	b := vectorspace.NewBuilder(nlp.NewNormalizer(nlp.NewDictionaryLemmatizer()), nlp.EnglishStopWords())
	return matcher.New(b, matcher.Options{Epsilon: matcher.DefaultEpsilon})
}

func newTestChatbot(sentences []string, cache *ReplyCache, store domain.TranscriptStore) *Chatbot {
	return NewChatbot(corpus.FromSentences(sentences, true), newTestMatcher(), "", true, cache, store)
}

func TestChatbot_Respond(t *testing.T) {
	ctx := context.Background()
	bot := newTestChatbot([]string{"hello how are you", "goodbye see you later", "what is your name"}, nil, nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "exact match", input: "what is your name", want: "what is your name"},
		{name: "case and spacing", input: "  What is your NAME?  ", want: "what is your name"},
		{name: "partial overlap", input: "see you soon", want: "goodbye see you later"},
		{name: "no overlap", input: "xyz123 qwerty987", want: DefaultFallback},
		{name: "empty", input: "", want: DefaultFallback},
		{name: "blank", input: " \t ", want: DefaultFallback},
		{name: "punctuation only", input: "?!...", want: DefaultFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bot.Respond(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatbot_CorpusUnchangedAfterRequests(t *testing.T) {
	ctx := context.Background()
	sentences := []string{"the cat sat on the mat", "a dog ran in the park"}
	bot := newTestChatbot(sentences, nil, nil)
	before := bot.Corpus().Sentences()

	for _, q := range []string{"cat", "xyz", "", "dog park"} {
		_, err := bot.Ask(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, before, bot.Corpus().Sentences())
	}
}

func TestChatbot_EmptyCorpus(t *testing.T) {
	bot := newTestChatbot(nil, nil, nil)
	reply, err := bot.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, reply.Matched)
	assert.Equal(t, -1, reply.Index)
	assert.Equal(t, DefaultFallback, reply.Text)
}

func TestChatbot_CustomFallback(t *testing.T) {
	bot := NewChatbot(corpus.FromSentences([]string{"the cat sat"}, true), newTestMatcher(), "Désolé, je n'ai pas compris.", true, nil, nil)
	got, err := bot.Respond(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, "Désolé, je n'ai pas compris.", got)
	assert.Equal(t, "Désolé, je n'ai pas compris.", bot.Fallback())
}

func TestChatbot_Deterministic(t *testing.T) {
	ctx := context.Background()
	bot := newTestChatbot([]string{"red car blue car", "blue car red car"}, nil, nil)

	for i := 0; i < 10; i++ {
		reply, err := bot.Ask(ctx, "red car")
		require.NoError(t, err)
		assert.Equal(t, 0, reply.Index)
		assert.Equal(t, "red car blue car", reply.Text)
	}
}

func TestChatbot_ConcurrentRequests(t *testing.T) {
	ctx := context.Background()
	bot := newTestChatbot([]string{"hello how are you", "goodbye see you later", "what is your name"}, NewReplyCache(8, time.Minute), nil)
	want := map[string]string{
		"what is your name": "what is your name",
		"goodbye friend":    "goodbye see you later",
		"hello":             "hello how are you",
		"nothing in common": DefaultFallback,
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q, w := range want {
				got, err := bot.Respond(ctx, q)
				assert.NoError(t, err)
				assert.Equal(t, w, got)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, bot.Corpus().Len())
}

func TestChatbot_CacheInvalidatedOnSwap(t *testing.T) {
	ctx := context.Background()
	cache := NewReplyCache(8, time.Minute)
	bot := newTestChatbot([]string{"cats like fish"}, cache, nil)

	got, err := bot.Respond(ctx, "fish")
	require.NoError(t, err)
	assert.Equal(t, "cats like fish", got)
	assert.Equal(t, 1, cache.Size())

	bot.Swap(ctx, corpus.FromSentences([]string{"dogs like bones", "fish swim"}, true))
	assert.Equal(t, 0, cache.Size())

	got, err = bot.Respond(ctx, "fish")
	require.NoError(t, err)
	assert.Equal(t, "fish swim", got)
}

func TestChatbot_Reload(t *testing.T) {
	ctx := context.Background()
	bot := newTestChatbot([]string{"old sentence"}, nil, nil)

	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("Paris is the capital of France. Berlin is in Germany."), 0o644))
	require.NoError(t, bot.Reload(ctx, path))

	assert.Equal(t, 2, bot.Corpus().Len())
	got, err := bot.Respond(ctx, "capital of France")
	require.NoError(t, err)
	assert.Equal(t, "paris is the capital of france.", got)

	// a directory cannot be read; the previous corpus stays in place
	require.Error(t, bot.Reload(ctx, t.TempDir()))
	assert.Equal(t, 2, bot.Corpus().Len())
}

func TestChatbot_RecordAndTranscripts(t *testing.T) {
	ctx := context.Background()

	bot := newTestChatbot([]string{"hello"}, nil, nil)
	assert.ErrorIs(t, bot.Record(ctx, domain.Transcript{UserText: "x"}), ErrNoStore)
	_, err := bot.Transcripts(ctx, 1)
	assert.ErrorIs(t, err, ErrNoStore)

	store, err := transcript.NewFileStore(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)
	bot = newTestChatbot([]string{"hello there"}, nil, store)

	reply, err := bot.Ask(ctx, "hello")
	require.NoError(t, err)
	require.NoError(t, bot.Record(ctx, domain.Transcript{Source: transcript.SourceText, UserText: reply.Query, BotText: reply.Text}))

	got, err := bot.Transcripts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].UserText)
	assert.Equal(t, "hello there", got[0].BotText)
}
