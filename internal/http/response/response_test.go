package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

func TestRespondErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "client error keeps detail",
			err:        fmt.Errorf("%w: message não pode ser vazia", apierr.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
			wantDetail: "invalid input: message não pode ser vazia",
		},
		{
			name:       "persistence failure is sanitized",
			err:        fmt.Errorf("%w: pq: relation missing", apierr.ErrPersistence),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "database_error",
			wantDetail: "Erro ao salvar a conversa. Tente novamente.",
		},
		{
			name:       "unclassified error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			wantDetail: "Erro interno do servidor.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondErr(c, logger.NewNop(), tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, tt.wantDetail, env.Detail)
		})
	}
}
