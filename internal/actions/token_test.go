package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

func TestTokenSigner(t *testing.T) {
	assert.Nil(t, NewTokenSigner("", time.Minute))

	signer := NewTokenSigner("secret", time.Minute)
	pending := &models.PendingAction{
		Action:   "create_part",
		Endpoint: "/parts",
		Method:   "POST",
		Params:   map[string]any{"name": "Filtro", "unitCost": 12.5},
	}
	token, err := signer.Sign(pending)
	require.NoError(t, err)

	claims, err := signer.Verify(token, "create_part", "/parts", "POST", map[string]any{"unitCost": 12.5, "name": "Filtro"})
	require.NoError(t, err)
	assert.Equal(t, "create_part", claims.Action)

	_, err = signer.Verify(token, "create_part", "/parts", "PUT", pending.Params)
	assert.ErrorIs(t, err, apierr.ErrForbidden)

	other := NewTokenSigner("other", time.Minute)
	_, err = other.Verify(token, "create_part", "/parts", "POST", pending.Params)
	assert.ErrorIs(t, err, apierr.ErrForbidden)
}

func TestTokenExpiry(t *testing.T) {
	signer := NewTokenSigner("secret", time.Minute)
	signer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, err := signer.Sign(&models.PendingAction{Action: "create_part", Endpoint: "/parts", Method: "POST"})
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.Verify(token, "create_part", "/parts", "POST", nil)
	assert.ErrorIs(t, err, apierr.ErrForbidden)
}

func TestMemoryReplayGuard(t *testing.T) {
	g := NewMemoryReplayGuard()
	ctx := context.Background()

	ok, err := g.Consume(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Consume(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	g.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	ok, err = g.Consume(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, "a"))
	ok, err = g.Consume(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
