package auth

import "chatrelay/internal/domain/models/chat"

// JWTVerifier defines the interface for admin token verification.
// This abstraction lets the middleware stay agnostic of how keys are obtained
// (remote JWKS or a shared HMAC secret).
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid or expired, and
	// domain.ErrForbidden if it is valid but lacks the admin role.
	VerifyToken(tokenString string) (*chat.AdminClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
