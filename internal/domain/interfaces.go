package domain

import (
	"context"
	"time"
)

// Reply is the outcome of a single chatbot request.
type Reply struct {
	Query    string
	Text     string
	Score    float64
	Index    int
	Matched  bool
	Duration time.Duration
}

// Transcript is one saved exchange: what the user said (typed or transcribed) and what the bot answered.
type Transcript struct {
	ID        string
	Source    string
	Language  string
	UserText  string
	BotText   string
	CreatedAt time.Time
}

// Lemmatizer reduces a lower-cased word to its dictionary base form.
// Words it cannot handle must be returned unchanged.
type Lemmatizer interface {
	Name() string
	Lemmatize(word string) string
}

// Transcriber converts recorded speech into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// TranscriptStore persists exchanges for later review.
type TranscriptStore interface {
	Save(ctx context.Context, t Transcript) error
	List(ctx context.Context, limit int) ([]Transcript, error)
	Close() error
}

// ChatService defines the operations exposed by the application core.
type ChatService interface {
	Respond(ctx context.Context, text string) (string, error)
	Ask(ctx context.Context, text string) (Reply, error)
}
