package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

// ErrorEnvelope keeps the {"detail": ...} shape the web client already parses.
type ErrorEnvelope struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Detail: msg, Code: code})
}

// RespondErr classifies err and writes the public message. Server-side
// causes are logged, never returned.
func RespondErr(c *gin.Context, log *logger.Logger, err error) {
	e := apierr.From(err)
	if e == nil {
		e = apierr.New(http.StatusInternalServerError, "internal_error", nil)
	}
	if log != nil && e.Status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "code", e.Code, "error", err)
	}
	c.AbortWithStatusJSON(e.Status, ErrorEnvelope{Detail: apierr.PublicMessage(e), Code: e.Code})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
