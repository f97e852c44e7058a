package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot/pkg/retry"
)

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 2, BackoffFactor: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

// testWAV builds a mono 16-bit PCM WAV with n silent samples.
func testWAV(sampleRate uint32, n int) []byte {
	var b bytes.Buffer
	dataLen := uint32(n * 2)
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, 36+dataLen)
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&b, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&b, binary.LittleEndian, sampleRate)
	_ = binary.Write(&b, binary.LittleEndian, sampleRate*2)
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, dataLen)
	b.Write(make([]byte, dataLen))
	return b.Bytes()
}

func TestParseWAV(t *testing.T) {
	f, ok := parseWAV(testWAV(16000, 10))
	require.True(t, ok)
	assert.Equal(t, uint32(16000), f.SampleRate)
	assert.Equal(t, uint16(1), f.Channels)
	assert.Equal(t, uint16(16), f.BitsPerSample)

	_, ok = parseWAV([]byte("not a wav file at all"))
	assert.False(t, ok)
	_, ok = parseWAV(nil)
	assert.False(t, ok)
}

func TestBaseLanguage(t *testing.T) {
	assert.Equal(t, "fr", baseLanguage("fr-FR"))
	assert.Equal(t, "en", baseLanguage("en_US"))
	assert.Equal(t, "de", baseLanguage("DE"))
	assert.Equal(t, "", baseLanguage(""))
}

func TestNew(t *testing.T) {
	t.Setenv("TEST_SPEECH_KEY", "secret")

	tr, err := New(Config{Backend: "google", Google: GoogleConfig{APIKeyEnv: "TEST_SPEECH_KEY"}})
	require.NoError(t, err)
	assert.Equal(t, "google", tr.Name())

	tr, err = New(Config{Backend: "whisper", Whisper: WhisperConfig{APIKeyEnv: "TEST_SPEECH_KEY"}})
	require.NoError(t, err)
	assert.Equal(t, "whisper", tr.Name())

	_, err = New(Config{Backend: "sphinx"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = New(Config{Backend: "google", Google: GoogleConfig{APIKeyEnv: "TEST_SPEECH_KEY_UNSET"}})
	assert.ErrorIs(t, err, ErrMissingKey)
}

func newGoogle(t *testing.T, srv *httptest.Server) *Google {
	t.Helper()
	t.Setenv("TEST_GOOGLE_KEY", "g-key")
	g, err := NewGoogle(GoogleConfig{BaseURL: srv.URL, APIKeyEnv: "TEST_GOOGLE_KEY"}, fastRetry())
	require.NoError(t, err)
	return g
}

func TestGoogle_Transcribe(t *testing.T) {
	audio := testWAV(16000, 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/speech:recognize", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		var req googleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "LINEAR16", req.Config.Encoding)
		assert.Equal(t, 16000, req.Config.SampleRateHertz)
		assert.Equal(t, "en-US", req.Config.LanguageCode)
		raw, err := base64.StdEncoding.DecodeString(req.Audio.Content)
		require.NoError(t, err)
		assert.Equal(t, audio, raw)

		_, _ = io.WriteString(w, `{"results":[{"alternatives":[{"transcript":"hello there","confidence":0.9}]},{"alternatives":[{"transcript":" how are you "}]}]}`)
	}))
	defer srv.Close()

	text, err := newGoogle(t, srv).Transcribe(context.Background(), audio, "en-US")
	require.NoError(t, err)
	assert.Equal(t, "hello there how are you", text)
}

func TestGoogle_DefaultLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req googleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultLanguage, req.Config.LanguageCode)
		assert.Empty(t, req.Config.Encoding)
		_, _ = io.WriteString(w, `{"results":[{"alternatives":[{"transcript":"bonjour"}]}]}`)
	}))
	defer srv.Close()

	text, err := newGoogle(t, srv).Transcribe(context.Background(), []byte("raw-bytes"), "")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", text)
}

func TestGoogle_NoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := newGoogle(t, srv).Transcribe(context.Background(), testWAV(8000, 10), "")
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestGoogle_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"bad audio"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newGoogle(t, srv).Transcribe(context.Background(), testWAV(8000, 10), "")
	require.ErrorIs(t, err, ErrRequest)
	assert.Contains(t, err.Error(), "bad audio")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGoogle_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"alternatives":[{"transcript":"ok"}]}]}`)
	}))
	defer srv.Close()

	text, err := newGoogle(t, srv).Transcribe(context.Background(), testWAV(8000, 10), "")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGoogle_EmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	_, err := newGoogle(t, srv).Transcribe(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func newWhisper(t *testing.T, srv *httptest.Server) *Whisper {
	t.Helper()
	t.Setenv("TEST_WHISPER_KEY", "w-key")
	w, err := NewWhisper(WhisperConfig{BaseURL: srv.URL + "/v1/", APIKeyEnv: "TEST_WHISPER_KEY", Model: "whisper-large"}, fastRetry())
	require.NoError(t, err)
	return w
}

func TestWhisper_Transcribe(t *testing.T) {
	audio := testWAV(16000, 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer w-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large", r.FormValue("model"))
		assert.Equal(t, "fr", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.wav", hdr.Filename)
		got, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, audio, got)

		_, _ = io.WriteString(w, `{"text":" Bonjour tout le monde "}`)
	}))
	defer srv.Close()

	text, err := newWhisper(t, srv).Transcribe(context.Background(), audio, "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour tout le monde", text)
}

func TestWhisper_NoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"text":"   "}`)
	}))
	defer srv.Close()

	_, err := newWhisper(t, srv).Transcribe(context.Background(), testWAV(16000, 5), "")
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestWhisper_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newWhisper(t, srv).Transcribe(context.Background(), testWAV(16000, 5), "")
	require.ErrorIs(t, err, ErrRequest)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWhisper_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newWhisper(t, srv).Transcribe(ctx, testWAV(16000, 5), "")
	assert.ErrorIs(t, err, context.Canceled)
}
