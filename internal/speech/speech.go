package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chatbot/internal/domain"
	"chatbot/pkg/log"
	"chatbot/pkg/retry"
)

var (
	// ErrNoSpeech means the backend answered but recognized nothing.
	ErrNoSpeech = errors.New("speech: no speech recognized")
	// ErrRequest means the recognition service could not be reached or refused the request.
	ErrRequest = errors.New("speech: recognition request failed")
	// ErrEmptyAudio is returned before any request when there is nothing to send.
	ErrEmptyAudio = errors.New("speech: empty audio")
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("speech: unknown backend")
	// ErrMissingKey is returned when the API key environment variable is empty.
	ErrMissingKey = errors.New("speech: missing API key")
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "fr-FR"

// Config selects and configures a speech-to-text backend.
type Config struct {
	Backend  string
	Language string
	Google   GoogleConfig
	Whisper  WhisperConfig
	Retry    *retry.Config
}

// New returns the transcriber named by cfg.Backend.
func New(cfg Config) (domain.Transcriber, error) {
	switch strings.ToLower(cfg.Backend) {
	case "google", "":
		return NewGoogle(cfg.Google, cfg.Retry)
	case "whisper", "openai":
		return NewWhisper(cfg.Whisper, cfg.Retry)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// Backends lists the supported backend names.
func Backends() []string { return []string{"google", "whisper"} }

// statusError carries a non-2xx HTTP status.
type statusError struct {
	backend string
	status  string
	code    int
	body    string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("%s: %s", e.backend, e.status)
	}
	return fmt.Sprintf("%s: %s: %s", e.backend, e.status, e.body)
}

// transport sends a request with retries on network errors, 429 and 5xx.
type transport struct {
	name    string
	client  *http.Client
	retrier *retry.Retrier
}

func newTransport(name string, timeout time.Duration, cfg *retry.Config) *transport {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &transport{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		retrier: retry.NewRetrier(cfg),
	}
}

// do builds a fresh request per attempt with newReq and returns the response body.
func (t *transport) do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	logger := log.FromCtx(ctx)
	var payload []byte
	attempt := 0

	err := t.retrier.Do(ctx, func() error {
		attempt++
		req, err := newReq(ctx)
		if err != nil {
			return retry.Permanent(err)
		}
		resp, err := t.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			logger.Debug().Err(err).Str("backend", t.name).Int("attempt", attempt).Msg("speech request failed")
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			logger.Debug().Str("backend", t.name).Str("status", resp.Status).Int("attempt", attempt).Msg("speech request retryable")
			// Respect Retry-After if provided
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
					select {
					case <-ctx.Done():
						return retry.Permanent(ctx.Err())
					case <-time.After(time.Duration(secs) * time.Second):
					}
				}
			}
			return &statusError{backend: t.name, status: resp.Status, code: resp.StatusCode}
		}
		if resp.StatusCode >= 300 {
			return retry.Permanent(&statusError{
				backend: t.name,
				status:  resp.Status,
				code:    resp.StatusCode,
				body:    strings.TrimSpace(string(body)),
			})
		}
		payload = body
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	return payload, nil
}

// baseLanguage returns the ISO-639-1 part of a BCP-47 tag ("fr-FR" -> "fr").
func baseLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
