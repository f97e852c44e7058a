package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"chatbot/pkg/retry"
)

// WhisperConfig configures an OpenAI-compatible transcription endpoint.
type WhisperConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Language  string
	Timeout   time.Duration
}

// Whisper transcribes audio through POST {base}/audio/transcriptions.
type Whisper struct {
	baseURL  string
	apiKey   string
	model    string
	language string
	client   *transport
}

// NewWhisper creates a Whisper backend. The API key is read from cfg.APIKeyEnv.
func NewWhisper(cfg WhisperConfig, retryCfg *retry.Config) (*Whisper, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: env %s", ErrMissingKey, cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Whisper{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   key,
		model:    cfg.Model,
		language: cfg.Language,
		client:   newTransport("whisper", cfg.Timeout, retryCfg),
	}, nil
}

func (w *Whisper) Name() string { return "whisper" }

// Transcribe uploads audio as a multipart form. The language tag is reduced to
// its ISO-639-1 code as the endpoint expects.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if language == "" {
		language = w.language
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"model":           w.model,
		"language":        baseLanguage(language),
		"response_format": "json",
	}
	for _, k := range []string{"model", "language", "response_format"} {
		if fields[k] == "" {
			continue
		}
		if err := mw.WriteField(k, fields[k]); err != nil {
			return "", fmt.Errorf("write %s field: %w", k, err)
		}
	}
	fw, err := mw.CreateFormFile("file", "audio"+audioExt(audio))
	if err != nil {
		return "", fmt.Errorf("create file field: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}
	data := body.Bytes()
	contentType := mw.FormDataContentType()

	endpoint := w.baseURL + "/audio/transcriptions"
	payload, err := w.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("%w: decode whisper response: %w", ErrRequest, err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func audioExt(audio []byte) string {
	if _, ok := parseWAV(audio); ok {
		return ".wav"
	}
	switch {
	case bytes.HasPrefix(audio, []byte("fLaC")):
		return ".flac"
	case bytes.HasPrefix(audio, []byte("OggS")):
		return ".ogg"
	case bytes.HasPrefix(audio, []byte("ID3")):
		return ".mp3"
	}
	return ".wav"
}
