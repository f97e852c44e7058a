package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CHATBOT_MATCHER_THRESHOLD.
const EnvPrefix = "CHATBOT_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// CorpusConfig locates the sentence pool.
type CorpusConfig struct {
	// Path is a file or a glob pattern such as "data/**/*.txt".
	Path      string `yaml:"path" env:"PATH"`
	Lowercase *bool  `yaml:"lowercase,omitempty" env:"LOWERCASE"`
}

// NormalizerConfig selects the lemmatizer and stop-word list.
type NormalizerConfig struct {
	Lemmatizer string `yaml:"lemmatizer" env:"LEMMATIZER"`
	StopWords  string `yaml:"stop_words" env:"STOP_WORDS"`
}

// MatcherConfig controls the no-match decision and its reply.
type MatcherConfig struct {
	Threshold float64  `yaml:"threshold" env:"THRESHOLD"`
	Epsilon   *float64 `yaml:"epsilon,omitempty" env:"EPSILON"`
	Fallback  string   `yaml:"fallback" env:"FALLBACK"`
}

// CacheConfig sizes the reply cache.
type CacheConfig struct {
	Disabled bool `yaml:"disabled" env:"DISABLED"`
	Size     int  `yaml:"size" env:"SIZE"`
	TTLSecs  int  `yaml:"ttl_secs" env:"TTL_SECS"`
}

// GoogleSpeechConfig configures the Cloud Speech-to-Text backend.
type GoogleSpeechConfig struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string `yaml:"api_key_env" env:"API_KEY_ENV"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// WhisperSpeechConfig configures an OpenAI-compatible transcription backend.
type WhisperSpeechConfig struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string `yaml:"api_key_env" env:"API_KEY_ENV"`
	Model       string `yaml:"model" env:"MODEL"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// SpeechConfig selects and configures the speech-to-text backend.
type SpeechConfig struct {
	Backend    string              `yaml:"backend" env:"BACKEND"`
	Language   string              `yaml:"language" env:"LANGUAGE"`
	MaxRetries int                 `yaml:"max_retries" env:"MAX_RETRIES"`
	Google     GoogleSpeechConfig  `yaml:"google" envPrefix:"GOOGLE_"`
	Whisper    WhisperSpeechConfig `yaml:"whisper" envPrefix:"WHISPER_"`
}

// TranscriptConfig selects where exchanges are saved.
type TranscriptConfig struct {
	Type string `yaml:"type" env:"TYPE"`
	Path string `yaml:"path" env:"PATH"`
}

// LogConfig controls logging.
type LogConfig struct {
	Debug bool   `yaml:"debug" env:"DEBUG"`
	File  string `yaml:"file" env:"FILE"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	RuntimePath string           `yaml:"runtime_path" env:"RUNTIME_PATH"`
	Corpus      CorpusConfig     `yaml:"corpus" envPrefix:"CORPUS_"`
	Normalizer  NormalizerConfig `yaml:"normalizer" envPrefix:"NORMALIZER_"`
	Matcher     MatcherConfig    `yaml:"matcher" envPrefix:"MATCHER_"`
	Cache       CacheConfig      `yaml:"cache" envPrefix:"CACHE_"`
	Speech      SpeechConfig     `yaml:"speech" envPrefix:"SPEECH_"`
	Transcript  TranscriptConfig `yaml:"transcript" envPrefix:"TRANSCRIPT_"`
	Log         LogConfig        `yaml:"log" envPrefix:"LOG_"`
	Summary     SummaryConfig    `yaml:"summary" envPrefix:"SUMMARY_"`
}

// SummaryConfig sizes the corpus summary shown by info and the chat header.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences" env:"MAX_SENTENCES"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment variables override file values.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			if err := applyEnv(cfg); err != nil {
				return nil, err
			}
			return cfg, Validate(cfg)
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./chatbot.yaml first, then ~/.config/chatbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/chatbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "chatbot.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, Validate(cfg)
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *AppConfig { return defaultConfig() }

// DefaultUserConfigPath returns ~/.config/chatbot/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatbot", "config.yaml"), nil
}

func applyEnv(cfg *AppConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		RuntimePath: ".chatbot",
		Corpus:      CorpusConfig{Path: "chatbot_data.txt"},
		Normalizer:  NormalizerConfig{Lemmatizer: "dictionary", StopWords: "english"},
		Matcher:     MatcherConfig{Threshold: 0},
		Cache:       CacheConfig{Size: 256, TTLSecs: 600},
		Speech:      SpeechConfig{Backend: "google", Language: "fr-FR", MaxRetries: 3},
		Transcript:  TranscriptConfig{Type: "file"},
		Summary:     SummaryConfig{MaxSentences: 3},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.RuntimePath == "" {
		cfg.RuntimePath = ".chatbot"
	}
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = "chatbot_data.txt"
	}
	if cfg.Corpus.Lowercase == nil {
		lower := true
		cfg.Corpus.Lowercase = &lower
	}
	if cfg.Normalizer.Lemmatizer == "" {
		cfg.Normalizer.Lemmatizer = "dictionary"
	}
	if cfg.Normalizer.StopWords == "" {
		cfg.Normalizer.StopWords = "english"
	}
	if cfg.Matcher.Epsilon == nil {
		eps := 1e-9
		cfg.Matcher.Epsilon = &eps
	}
	if cfg.Matcher.Fallback == "" {
		cfg.Matcher.Fallback = "Sorry, I did not understand."
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 256
	}
	if cfg.Cache.TTLSecs == 0 {
		cfg.Cache.TTLSecs = 600
	}
	if cfg.Speech.Backend == "" {
		cfg.Speech.Backend = "google"
	}
	if cfg.Speech.Language == "" {
		cfg.Speech.Language = "fr-FR"
	}
	if cfg.Speech.Google.BaseURL == "" {
		cfg.Speech.Google.BaseURL = "https://speech.googleapis.com"
	}
	if cfg.Speech.Google.APIKeyEnv == "" {
		cfg.Speech.Google.APIKeyEnv = "GOOGLE_SPEECH_API_KEY"
	}
	if cfg.Speech.Google.TimeoutSecs == 0 {
		cfg.Speech.Google.TimeoutSecs = 30
	}
	if cfg.Speech.Whisper.BaseURL == "" {
		cfg.Speech.Whisper.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Speech.Whisper.APIKeyEnv == "" {
		cfg.Speech.Whisper.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Speech.Whisper.Model == "" {
		cfg.Speech.Whisper.Model = "whisper-1"
	}
	if cfg.Speech.Whisper.TimeoutSecs == 0 {
		cfg.Speech.Whisper.TimeoutSecs = 60
	}
	if cfg.Transcript.Type == "" {
		cfg.Transcript.Type = "file"
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = 3
	}
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (want one of %s)", ErrInvalid, field, value, strings.Join(allowed, ", "))
}

// Validate rejects unknown enum values and out-of-range numbers.
func Validate(cfg *AppConfig) error {
	if err := oneOf("normalizer.lemmatizer", cfg.Normalizer.Lemmatizer, "dictionary", "porter", "none"); err != nil {
		return err
	}
	if err := oneOf("normalizer.stop_words", cfg.Normalizer.StopWords, "english", "none"); err != nil {
		return err
	}
	if err := oneOf("speech.backend", cfg.Speech.Backend, "google", "whisper"); err != nil {
		return err
	}
	if err := oneOf("transcript.type", cfg.Transcript.Type, "none", "file", "bolt", "sqlite"); err != nil {
		return err
	}
	if cfg.Matcher.Threshold < 0 || cfg.Matcher.Threshold >= 1 {
		return fmt.Errorf("%w: matcher.threshold %v must be in [0, 1)", ErrInvalid, cfg.Matcher.Threshold)
	}
	if cfg.Matcher.Epsilon != nil && *cfg.Matcher.Epsilon < 0 {
		return fmt.Errorf("%w: matcher.epsilon %v must not be negative", ErrInvalid, *cfg.Matcher.Epsilon)
	}
	if cfg.Cache.Size < 0 || cfg.Cache.TTLSecs < 0 {
		return fmt.Errorf("%w: cache size and ttl must not be negative", ErrInvalid)
	}
	if cfg.Speech.MaxRetries < 0 {
		return fmt.Errorf("%w: speech.max_retries must not be negative", ErrInvalid)
	}
	return nil
}

// Lowercase reports whether corpus sentences are lower-cased on load.
func (c *AppConfig) Lowercase() bool {
	return c.Corpus.Lowercase == nil || *c.Corpus.Lowercase
}

// Epsilon returns the matcher tolerance.
func (c *AppConfig) Epsilon() float64 {
	if c.Matcher.Epsilon == nil {
		return 1e-9
	}
	return *c.Matcher.Epsilon
}

// TranscriptPath returns the configured store path or a default under the runtime directory.
func (c *AppConfig) TranscriptPath() string {
	if c.Transcript.Path != "" {
		return c.Transcript.Path
	}
	name := "transcripts.jsonl"
	switch strings.ToLower(c.Transcript.Type) {
	case "bolt":
		name = "transcripts.db"
	case "sqlite":
		name = "transcripts.sqlite"
	}
	return filepath.Join(c.RuntimePath, name)
}

// LogPath returns the log file used while the chat UI owns the terminal.
func (c *AppConfig) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.RuntimePath, "chatbot.log")
}
