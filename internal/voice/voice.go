// Package voice wraps the OpenAI audio endpoints for speech-to-text and
// text-to-speech.
package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultLanguage    = "pt"
	DefaultVoice       = "nova"
	DefaultSpeed       = 1.1
	MaxSpeechChars     = 4096
	transcriptionModel = "whisper-1"
	speechModel        = "tts-1"
	engineWhisper      = "whisper"
	engineOpenAI       = "openai"
)

type VoiceInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

type Language struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Whisper string `json:"whisper"`
	Google  string `json:"google"`
}

var voices = []VoiceInfo{
	{ID: "alloy", Name: "Alloy", Gender: "neutral"},
	{ID: "echo", Name: "Echo", Gender: "male"},
	{ID: "fable", Name: "Fable", Gender: "neutral"},
	{ID: "onyx", Name: "Onyx", Gender: "male"},
	{ID: "nova", Name: "Nova", Gender: "female"},
	{ID: "shimmer", Name: "Shimmer", Gender: "female"},
}

var languages = []Language{
	{Code: "pt", Name: "Português", Whisper: "pt", Google: "pt-BR"},
	{Code: "en", Name: "English", Whisper: "en", Google: "en-US"},
	{Code: "es", Name: "Español", Whisper: "es", Google: "es-ES"},
	{Code: "fr", Name: "Français", Whisper: "fr", Google: "fr-FR"},
	{Code: "de", Name: "Deutsch", Whisper: "de", Google: "de-DE"},
}

// Voices lists the supported TTS voices grouped by engine.
func Voices() map[string][]VoiceInfo {
	return map[string][]VoiceInfo{engineOpenAI: append([]VoiceInfo(nil), voices...)}
}

func Languages() []Language {
	return append([]Language(nil), languages...)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// NewClient builds an audio client. An empty baseURL targets the public API.
func NewClient(apiKey, baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "voice_agent"),
	}
}

type Transcription struct {
	Text     string `json:"transcription"`
	Language string `json:"language"`
	Engine   string `json:"engine"`
	Message  string `json:"message"`
}

// Transcribe sends base64 audio to the transcription endpoint.
func (c *Client) Transcribe(ctx context.Context, audioBase64, language string) (Transcription, error) {
	if c.apiKey == "" {
		return Transcription{}, fmt.Errorf("%w: OPENAI_API_KEY não configurada", apierr.ErrUnavailable)
	}
	audio, err := decodeAudio(audioBase64)
	if err != nil {
		return Transcription{}, err
	}
	if language == "" {
		language = DefaultLanguage
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("model", transcriptionModel)
	_ = w.WriteField("language", language)
	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return Transcription{}, err
	}
	if _, err := part.Write(audio); err != nil {
		return Transcription{}, err
	}
	if err := w.Close(); err != nil {
		return Transcription{}, err
	}

	payload, err := c.do(ctx, "/audio/transcriptions", w.FormDataContentType(), &body)
	if err != nil {
		return Transcription{}, err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return Transcription{}, fmt.Errorf("%w: decode transcription: %v", apierr.ErrInvocation, err)
	}
	text := strings.TrimSpace(out.Text)
	c.log.Info("🎤 audio transcribed", "chars", len(text), "language", language)
	return Transcription{Text: text, Language: language, Engine: engineWhisper, Message: "Áudio transcrito com sucesso!"}, nil
}

type SpeechRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

type Speech struct {
	AudioBase64 string  `json:"audio_base64"`
	AudioMIME   string  `json:"audio_mime"`
	Voice       string  `json:"voice"`
	Speed       float64 `json:"speed"`
	Engine      string  `json:"engine"`
	Truncated   bool    `json:"truncated"`
}

// Synthesize converts text to MP3 audio.
func (c *Client) Synthesize(ctx context.Context, req SpeechRequest) (Speech, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Speech{}, fmt.Errorf("%w: text é obrigatório", apierr.ErrInvalidInput)
	}
	voice := strings.ToLower(strings.TrimSpace(req.Voice))
	if voice == "" {
		voice = DefaultVoice
	}
	if !knownVoice(voice) {
		return Speech{}, fmt.Errorf("%w: voz desconhecida %q", apierr.ErrInvalidInput, req.Voice)
	}
	speed := req.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	if speed < 0.25 || speed > 4.0 {
		return Speech{}, fmt.Errorf("%w: speed deve estar entre 0.25 e 4.0", apierr.ErrInvalidInput)
	}
	if c.apiKey == "" {
		return Speech{}, fmt.Errorf("%w: OPENAI_API_KEY não configurada", apierr.ErrUnavailable)
	}

	text, truncated := TruncateForSpeech(req.Text)
	if truncated {
		c.log.Warn("⚠️ speech text truncated", "from", len([]rune(req.Text)), "to", len([]rune(text)))
	}
	body, _ := json.Marshal(map[string]any{
		"model": speechModel,
		"voice": voice,
		"input": text,
		"speed": speed,
	})
	audio, err := c.do(ctx, "/audio/speech", "application/json", bytes.NewReader(body))
	if err != nil {
		return Speech{}, err
	}
	c.log.Info("🔊 speech synthesized", "chars", len([]rune(text)), "voice", voice, "speed", speed)
	return Speech{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		AudioMIME:   "audio/mpeg",
		Voice:       voice,
		Speed:       speed,
		Engine:      engineOpenAI,
		Truncated:   truncated,
	}, nil
}

// TruncateForSpeech caps text at MaxSpeechChars. The cut lands after the last
// sentence end when that falls in the final 20%, otherwise "..." is appended.
func TruncateForSpeech(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= MaxSpeechChars {
		return text, false
	}
	runes = runes[:MaxSpeechChars]
	last := -1
	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			last = i
		}
	}
	if float64(last) > MaxSpeechChars*0.8 {
		return string(runes[:last+1]), true
	}
	return string(runes) + "...", true
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apierr.ErrInvocation, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("audio endpoint failed", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s returned %d", apierr.ErrInvocation, path, resp.StatusCode)
	}
	return payload, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: audio endpoint did not answer in time", apierr.ErrTimeout)
	}
	return fmt.Errorf("%w: audio endpoint unreachable: %v", apierr.ErrUnavailable, err)
}

func decodeAudio(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if _, payload, ok := strings.Cut(encoded, ","); ok && strings.HasPrefix(encoded, "data:") {
		encoded = payload
	}
	if encoded == "" {
		return nil, fmt.Errorf("%w: audio_base64 é obrigatório", apierr.ErrInvalidInput)
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: áudio não está em base64", apierr.ErrInvalidInput)
	}
	return audio, nil
}

func knownVoice(id string) bool {
	for _, v := range voices {
		if v.ID == id {
			return true
		}
	}
	return false
}
