package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatbot/internal/domain"
)

// ErrUnknownType is returned by Open for an unsupported store type.
var ErrUnknownType = errors.New("transcript: unknown store type")

// record is the serialized form shared by the file and bolt stores.
type record struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Language  string    `json:"language,omitempty"`
	UserText  string    `json:"user_text"`
	BotText   string    `json:"bot_text"`
	CreatedAt time.Time `json:"created_at"`
}

func toRecord(t domain.Transcript) record {
	return record{
		ID:        t.ID,
		Source:    t.Source,
		Language:  t.Language,
		UserText:  t.UserText,
		BotText:   t.BotText,
		CreatedAt: t.CreatedAt,
	}
}

func (r record) transcript() domain.Transcript {
	return domain.Transcript{
		ID:        r.ID,
		Source:    r.Source,
		Language:  r.Language,
		UserText:  r.UserText,
		BotText:   r.BotText,
		CreatedAt: r.CreatedAt,
	}
}

// prepare fills the ID and timestamp of a transcript about to be saved.
func prepare(t domain.Transcript) domain.Transcript {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Source == "" {
		t.Source = SourceText
	}
	return t
}

// Input channels recorded in Transcript.Source.
const (
	SourceText  = "text"
	SourceVoice = "voice"
)

// Open creates the store named by typ at path. The "none" type returns a store that discards everything.
func Open(ctx context.Context, typ, path string) (domain.TranscriptStore, error) {
	switch strings.ToLower(typ) {
	case "none", "":
		return Discard{}, nil
	case "file", "jsonl":
		return NewFileStore(path)
	case "bolt", "bbolt":
		return NewBoltStore(path)
	case "sqlite":
		return NewSQLiteStore(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
}

// Discard is a TranscriptStore that keeps nothing.
type Discard struct{}

func (Discard) Save(context.Context, domain.Transcript) error { return nil }
func (Discard) List(context.Context, int) ([]domain.Transcript, error) {
	return nil, nil
}
func (Discard) Close() error { return nil }

// tail returns the last limit items; limit <= 0 keeps everything.
func tail(items []domain.Transcript, limit int) []domain.Transcript {
	if limit > 0 && len(items) > limit {
		return items[len(items)-limit:]
	}
	return items
}
