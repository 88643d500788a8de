package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models/chat"
)

// AdminJWTVerifier verifies admin tokens against either a JWKS endpoint
// (RS256/ES256) or a shared secret (HS256).
type AdminJWTVerifier struct {
	keyfunc jwt.Keyfunc
	methods []string
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewJWKSVerifier creates a verifier that fetches public keys from jwksURL.
// The JWKS keys are cached and refreshed in the background until Close.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("admin JWT verifier initialized", "mode", "jwks", "jwks_url", jwksURL)

	return &AdminJWTVerifier{
		keyfunc: jwks.Keyfunc,
		methods: []string{"RS256", "ES256"},
		cancel:  cancel,
		logger:  logger,
	}, nil
}

// NewHMACVerifier creates a verifier for tokens signed with a shared secret.
func NewHMACVerifier(secret string, logger *slog.Logger) (JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}

	key := []byte(secret)
	logger.Info("admin JWT verifier initialized", "mode", "hmac")

	return &AdminJWTVerifier{
		keyfunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		methods: []string{"HS256"},
		logger:  logger,
	}, nil
}

// NewJWTVerifier picks the JWKS verifier when a URL is configured and falls
// back to the shared secret otherwise.
func NewJWTVerifier(jwksURL, secret string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL != "" {
		return NewJWKSVerifier(jwksURL, logger)
	}
	return NewHMACVerifier(secret, logger)
}

// VerifyToken validates a JWT token and extracts admin claims.
func (v *AdminJWTVerifier) VerifyToken(tokenString string) (*chat.AdminClaims, error) {
	// WithValidMethods prevents algorithm confusion between the key modes
	token, err := jwt.ParseWithClaims(tokenString, &chat.AdminClaims{}, v.keyfunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("admin token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*chat.AdminClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("admin token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	if claims.Role != chat.AdminRole {
		v.logger.Warn("token lacks admin role", "role", claims.Role, "subject", claims.Subject)
		return nil, domain.ErrForbidden
	}

	return claims, nil
}

// Close stops the background JWKS refresh, if any.
func (v *AdminJWTVerifier) Close() error {
	if v.cancel != nil {
		v.cancel()
	}
	return nil
}
