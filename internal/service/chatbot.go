package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"chatbot/internal/corpus"
	"chatbot/internal/domain"
	"chatbot/internal/matcher"
	"chatbot/pkg/log"
)

// DefaultFallback is the reply when no corpus sentence matches.
const DefaultFallback = "Sorry, I did not understand."

// ErrNoStore is returned by Record when transcripts are not persisted.
var ErrNoStore = errors.New("service: no transcript store configured")

// Chatbot owns a corpus snapshot and answers queries against it.
// Requests only read the snapshot; Reload swaps it atomically.
type Chatbot struct {
	mu         sync.RWMutex
	corpus     *corpus.Corpus
	matcher    *matcher.Matcher
	fallback   string
	lowercase  bool
	cache      *ReplyCache
	store      domain.TranscriptStore
	generation uint64
}

// NewChatbot creates the chatbot session. cache and store may be nil.
// lowercase controls how corpora are reloaded.
func NewChatbot(c *corpus.Corpus, m *matcher.Matcher, fallback string, lowercase bool, cache *ReplyCache, store domain.TranscriptStore) *Chatbot {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &Chatbot{
		corpus:    c,
		matcher:   m,
		fallback:  fallback,
		lowercase: lowercase,
		cache:     cache,
		store:     store,
	}
}

// Respond returns the best matching corpus sentence or the fallback text.
func (s *Chatbot) Respond(ctx context.Context, text string) (string, error) {
	reply, err := s.Ask(ctx, text)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// Ask is Respond with match details. The query is trimmed and lower-cased first.
// Empty queries, empty corpora and queries without overlap all yield the fallback.
func (s *Chatbot) Ask(ctx context.Context, text string) (domain.Reply, error) {
	start := time.Now()
	logger := log.FromCtx(ctx)
	query := strings.ToLower(strings.TrimSpace(text))

	// read the cache generation before the snapshot so a concurrent Swap cannot
	// leave a reply for the old corpus in the cache
	var gen uint64
	if s.cache != nil {
		gen = s.cache.Generation()
	}
	s.mu.RLock()
	snapshot := s.corpus
	s.mu.RUnlock()

	if query == "" || snapshot == nil || snapshot.Len() == 0 {
		return s.fallbackReply(query, start), nil
	}

	if s.cache != nil {
		if reply, ok := s.cache.Get(query); ok {
			logger.Debug().Int("index", reply.Index).Bool("matched", reply.Matched).Msg("reply cache hit")
			reply.Duration = time.Since(start)
			return reply, nil
		}
	}

	res, err := s.matcher.Match(query, snapshot.View())
	if err != nil {
		return domain.Reply{}, fmt.Errorf("match query: %w", err)
	}

	reply := s.fallbackReply(query, start)
	reply.Score = res.Score
	if res.Matched {
		reply.Text = res.Sentence
		reply.Index = res.Index
		reply.Matched = true
	}
	reply.Duration = time.Since(start)

	if s.cache != nil {
		s.cache.Put(query, gen, reply)
	}

	logger.Debug().
		Int("query_len", len(query)).
		Int("corpus", snapshot.Len()).
		Float64("score", res.Score).
		Int("index", reply.Index).
		Bool("matched", reply.Matched).
		Dur("took", reply.Duration).
		Msg("answered query")
	return reply, nil
}

func (s *Chatbot) fallbackReply(query string, start time.Time) domain.Reply {
	return domain.Reply{
		Query:    query,
		Text:     s.fallback,
		Index:    -1,
		Duration: time.Since(start),
	}
}

// Fallback returns the no-match reply text.
func (s *Chatbot) Fallback() string { return s.fallback }

// Corpus returns the current corpus snapshot.
func (s *Chatbot) Corpus() *corpus.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// Reload loads a new corpus from path and replaces the current one. On error the old corpus stays.
func (s *Chatbot) Reload(ctx context.Context, path string) error {
	c, err := corpus.Load(path, s.lowercase)
	if err != nil {
		return fmt.Errorf("reload corpus: %w", err)
	}
	s.Swap(ctx, c)
	return nil
}

// Swap installs c as the corpus snapshot and drops cached replies.
func (s *Chatbot) Swap(ctx context.Context, c *corpus.Corpus) {
	s.mu.Lock()
	s.corpus = c
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Invalidate()
	}

	log.FromCtx(ctx).Info().
		Str("source", c.Source()).
		Int("sentences", c.Len()).
		Bool("default", c.Defaulted()).
		Uint64("generation", gen).
		Msg("corpus loaded")
}

// Record persists an exchange.
func (s *Chatbot) Record(ctx context.Context, t domain.Transcript) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.store.Save(ctx, t); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	log.FromCtx(ctx).Debug().Str("source", t.Source).Msg("transcript saved")
	return nil
}

// Transcripts lists the most recent saved exchanges, oldest first.
func (s *Chatbot) Transcripts(ctx context.Context, limit int) ([]domain.Transcript, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx, limit)
}
