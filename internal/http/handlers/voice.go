package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/voice"
)

type VoiceClient interface {
	Transcribe(ctx context.Context, audioBase64, language string) (voice.Transcription, error)
	Synthesize(ctx context.Context, req voice.SpeechRequest) (voice.Speech, error)
}

type VoiceHandler struct {
	log    *logger.Logger
	client VoiceClient
}

func NewVoiceHandler(log *logger.Logger, client VoiceClient) *VoiceHandler {
	return &VoiceHandler{log: log.With("handler", "voice"), client: client}
}

type transcribeReq struct {
	AudioBase64 string `json:"audio_base64" binding:"required"`
	Language    string `json:"language"`
}

// POST /voice/transcribe
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	var req transcribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Language == "" {
		req.Language = voice.DefaultLanguage
	}
	res, err := h.client.Transcribe(c.Request.Context(), req.AudioBase64, req.Language)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /voice/synthesize
func (h *VoiceHandler) Synthesize(c *gin.Context) {
	var req voice.SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.client.Synthesize(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /voice/voices
func (h *VoiceHandler) Voices(c *gin.Context) {
	response.RespondOK(c, gin.H{"voices": voice.Voices(), "default": voice.DefaultVoice})
}

// GET /voice/languages
func (h *VoiceHandler) Languages(c *gin.Context) {
	response.RespondOK(c, gin.H{"languages": voice.Languages(), "default": voice.DefaultLanguage})
}
