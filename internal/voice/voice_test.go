package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "pt", r.FormValue("language"))

		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "RIFF-audio", string(data))

		_, _ = w.Write([]byte(`{"text":" Qual o status da OS 42? "}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, time.Second, logger.NewNop())
	tr, err := c.Transcribe(context.Background(), base64.StdEncoding.EncodeToString([]byte("RIFF-audio")), "")
	require.NoError(t, err)
	assert.Equal(t, "Qual o status da OS 42?", tr.Text)
	assert.Equal(t, "whisper", tr.Engine)
	assert.Equal(t, "pt", tr.Language)
}

func TestTranscribeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	audio := base64.StdEncoding.EncodeToString([]byte("x"))

	_, err := NewClient("", srv.URL, time.Second, logger.NewNop()).Transcribe(context.Background(), audio, "pt")
	assert.True(t, errors.Is(err, apierr.ErrUnavailable))

	c := NewClient("sk-test", srv.URL, time.Second, logger.NewNop())
	_, err = c.Transcribe(context.Background(), "not base64!", "pt")
	assert.True(t, errors.Is(err, apierr.ErrInvalidInput))

	_, err = c.Transcribe(context.Background(), audio, "pt")
	assert.True(t, errors.Is(err, apierr.ErrInvocation))

	srv.Close()
	_, err = c.Transcribe(context.Background(), audio, "pt")
	assert.True(t, errors.Is(err, apierr.ErrUnavailable))
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tts-1", body["model"])
		assert.Equal(t, "nova", body["voice"])
		assert.Equal(t, 1.1, body["speed"])
		assert.Equal(t, "Sua OS foi concluída.", body["input"])
		_, _ = w.Write([]byte("ID3-mp3"))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, time.Second, logger.NewNop())
	sp, err := c.Synthesize(context.Background(), SpeechRequest{Text: "Sua OS foi concluída."})
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3-mp3")), sp.AudioBase64)
	assert.Equal(t, "audio/mpeg", sp.AudioMIME)
	assert.False(t, sp.Truncated)

	_, err = c.Synthesize(context.Background(), SpeechRequest{Text: "oi", Voice: "robot"})
	assert.True(t, errors.Is(err, apierr.ErrInvalidInput))
	_, err = c.Synthesize(context.Background(), SpeechRequest{Text: "oi", Speed: 5})
	assert.True(t, errors.Is(err, apierr.ErrInvalidInput))
	_, err = c.Synthesize(context.Background(), SpeechRequest{Text: "  "})
	assert.True(t, errors.Is(err, apierr.ErrInvalidInput))
}

func TestTruncateForSpeech(t *testing.T) {
	short := "Tudo certo."
	got, cut := TruncateForSpeech(short)
	assert.Equal(t, short, got)
	assert.False(t, cut)

	late := strings.Repeat("á", 4000) + "." + strings.Repeat("b", 200)
	got, cut = TruncateForSpeech(late)
	assert.True(t, cut)
	assert.Len(t, []rune(got), 4001)
	assert.True(t, strings.HasSuffix(got, "."))

	early := "Oi." + strings.Repeat("a", 5000)
	got, cut = TruncateForSpeech(early)
	assert.True(t, cut)
	assert.Len(t, []rune(got), MaxSpeechChars+3)
	assert.True(t, strings.HasSuffix(got, "a..."))
}

func TestCatalogs(t *testing.T) {
	assert.Len(t, Voices()["openai"], 6)
	langs := Languages()
	require.Len(t, langs, 5)
	assert.Equal(t, "pt-BR", langs[0].Google)
}
