package chat

import "github.com/golang-jwt/jwt/v5"

// AdminRole is the role claim required on admin route tokens.
const AdminRole = "admin"

// AdminClaims is the JWT claim set accepted on admin routes.
type AdminClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GetAdminID returns the admin identity (the sub claim).
func (c *AdminClaims) GetAdminID() string {
	return c.Subject
}
