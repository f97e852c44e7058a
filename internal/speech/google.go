package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"chatbot/pkg/retry"
)

// GoogleConfig configures the Cloud Speech-to-Text REST backend.
type GoogleConfig struct {
	BaseURL   string
	APIKeyEnv string
	Language  string
	Timeout   time.Duration
}

// Google transcribes audio with the Cloud Speech-to-Text v1 recognize endpoint.
type Google struct {
	baseURL  string
	apiKey   string
	language string
	client   *transport
}

// NewGoogle creates a Google backend. The API key is read from cfg.APIKeyEnv.
func NewGoogle(cfg GoogleConfig, retryCfg *retry.Config) (*Google, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GOOGLE_SPEECH_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: env %s", ErrMissingKey, cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://speech.googleapis.com"
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Google{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   key,
		language: cfg.Language,
		client:   newTransport("google", cfg.Timeout, retryCfg),
	}, nil
}

func (g *Google) Name() string { return "google" }

type googleRequest struct {
	Config googleRecognitionConfig `json:"config"`
	Audio  googleAudio             `json:"audio"`
}

type googleRecognitionConfig struct {
	Encoding          string `json:"encoding,omitempty"`
	SampleRateHertz   int    `json:"sampleRateHertz,omitempty"`
	AudioChannelCount int    `json:"audioChannelCount,omitempty"`
	LanguageCode      string `json:"languageCode"`
}

type googleAudio struct {
	Content string `json:"content"`
}

type googleResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe sends audio to the recognizer. WAV input is described as LINEAR16 with
// the sample rate from its header; other formats are left for the service to detect.
func (g *Google) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if language == "" {
		language = g.language
	}

	rc := googleRecognitionConfig{LanguageCode: language}
	if f, ok := parseWAV(audio); ok && f.AudioFormat == 1 && f.BitsPerSample == 16 {
		rc.Encoding = "LINEAR16"
		rc.SampleRateHertz = int(f.SampleRate)
		rc.AudioChannelCount = int(f.Channels)
	}
	data, err := json.Marshal(googleRequest{
		Config: rc,
		Audio:  googleAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	})
	if err != nil {
		return "", fmt.Errorf("marshal google request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/speech:recognize?key=%s", g.baseURL, url.QueryEscape(g.apiKey))
	payload, err := g.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var out googleResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("%w: decode google response: %w", ErrRequest, err)
	}
	var parts []string
	for _, r := range out.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(r.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}
