package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbot/internal/config"
	"chatbot/internal/corpus"
	"chatbot/internal/domain"
	"chatbot/internal/matcher"
	"chatbot/internal/nlp"
	"chatbot/internal/service"
	"chatbot/internal/speech"
	"chatbot/internal/summarizer"
	"chatbot/internal/transcript"
	"chatbot/internal/vectorspace"
	"chatbot/pkg/log"
	"chatbot/pkg/retry"
)

// app holds the components shared by every command.
type app struct {
	cfg        *config.AppConfig
	normalizer *nlp.Normalizer
	stopWords  map[string]struct{}
	builder    *vectorspace.Builder
	bot        *service.Chatbot
	summarizer *summarizer.FrequencySummarizer
	store      domain.TranscriptStore
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	logger := log.FromCtx(ctx)

	lemmatizer, err := nlp.NewLemmatizer(cfg.Normalizer.Lemmatizer)
	if err != nil {
		return nil, err
	}
	normalizer := nlp.NewNormalizer(lemmatizer)
	stopWords := nlp.StopWords(cfg.Normalizer.StopWords)
	builder := vectorspace.NewBuilder(normalizer, stopWords)
	m := matcher.New(builder, matcher.Options{
		Threshold: cfg.Matcher.Threshold,
		Epsilon:   cfg.Epsilon(),
	})

	c, err := corpus.Load(cfg.Corpus.Path, cfg.Lowercase())
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	if c.Defaulted() {
		logger.Warn().Str("path", cfg.Corpus.Path).Msg("corpus not found, using built-in default")
	}

	var cache *service.ReplyCache
	if !cfg.Cache.Disabled {
		cache = service.NewReplyCache(cfg.Cache.Size, time.Duration(cfg.Cache.TTLSecs)*time.Second)
	}

	store, err := transcript.Open(ctx, cfg.Transcript.Type, cfg.TranscriptPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript store: %w", err)
	}

	logger.Debug().
		Str("corpus", c.Source()).
		Int("sentences", c.Len()).
		Str("lemmatizer", lemmatizer.Name()).
		Str("transcripts", cfg.Transcript.Type).
		Msg("chatbot ready")

	return &app{
		cfg:        cfg,
		normalizer: normalizer,
		stopWords:  stopWords,
		builder:    builder,
		bot:        service.NewChatbot(c, m, cfg.Matcher.Fallback, cfg.Lowercase(), cache, store),
		summarizer: summarizer.NewFrequencySummarizer(normalizer, stopWords),
		store:      store,
	}, nil
}

// summary returns the corpus summary shown in headers, or "" for the default corpus.
func (a *app) summary() string {
	c := a.bot.Corpus()
	if c.Defaulted() {
		return ""
	}
	return a.summarizer.SummarizeSentences(c.View(), a.cfg.Summary.MaxSentences)
}

func (a *app) Close() error {
	return a.store.Close()
}

// transcriber builds the configured speech backend. backend and language override the config when set.
func (a *app) transcriber(backend, language string) (domain.Transcriber, string, error) {
	sc := a.cfg.Speech
	if backend == "" {
		backend = sc.Backend
	}
	if language == "" {
		language = sc.Language
	}
	rc := retry.NewDefaultConfig()
	rc.MaxRetries = sc.MaxRetries

	t, err := speech.New(speech.Config{
		Backend:  backend,
		Language: language,
		Google: speech.GoogleConfig{
			BaseURL:   sc.Google.BaseURL,
			APIKeyEnv: sc.Google.APIKeyEnv,
			Language:  language,
			Timeout:   time.Duration(sc.Google.TimeoutSecs) * time.Second,
		},
		Whisper: speech.WhisperConfig{
			BaseURL:   sc.Whisper.BaseURL,
			APIKeyEnv: sc.Whisper.APIKeyEnv,
			Model:     sc.Whisper.Model,
			Language:  language,
			Timeout:   time.Duration(sc.Whisper.TimeoutSecs) * time.Second,
		},
		Retry: rc,
	})
	if errors.Is(err, speech.ErrMissingKey) {
		return nil, "", fmt.Errorf("%w (set the key in the environment or a .env file)", err)
	}
	return t, language, err
}
