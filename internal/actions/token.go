package actions

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

var ErrTokenMismatch = errors.New("confirm token does not match the request")

// PendingClaims bind a token to exactly one pending action.
type PendingClaims struct {
	Action     string `json:"act"`
	Endpoint   string `json:"ep"`
	Method     string `json:"mth"`
	ParamsHash string `json:"prm"`
	jwt.RegisteredClaims
}

type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner returns nil when secret is empty so callers can treat
// signing as optional.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *TokenSigner) TTL() time.Duration { return s.ttl }

func (s *TokenSigner) Sign(p *models.PendingAction) (string, error) {
	hash, err := ParamsHash(p.Params)
	if err != nil {
		return "", err
	}
	now := s.now()
	claims := PendingClaims{
		Action:     p.Action,
		Endpoint:   p.Endpoint,
		Method:     p.Method,
		ParamsHash: hash,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry, then that the token was issued for this
// action, endpoint template, method and parameter set.
func (s *TokenSigner) Verify(tokenString, action, endpoint, method string, values map[string]any) (*PendingClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	claims := &PendingClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid confirm token: %v", apierr.ErrForbidden, err)
	}
	if tok == nil || !tok.Valid {
		return nil, fmt.Errorf("%w: invalid confirm token", apierr.ErrForbidden)
	}

	hash, err := ParamsHash(values)
	if err != nil {
		return nil, err
	}
	if claims.Action != action || claims.Endpoint != endpoint || claims.Method != method || claims.ParamsHash != hash {
		return nil, fmt.Errorf("%w: %w", apierr.ErrForbidden, ErrTokenMismatch)
	}
	return claims, nil
}

// ParamsHash is the sha256 of the canonical JSON form of values. Map keys are
// emitted sorted by encoding/json.
func ParamsHash(values map[string]any) (string, error) {
	if values == nil {
		values = map[string]any{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
