package auth

import (
	"exam-portal/internal/identity"

	"github.com/golang-jwt/jwt/v5"
)

func testSession(c jwt.MapClaims) identity.Session {
	sub, _ := c["sub"].(string)
	email, _ := c["email"].(string)
	return identity.NewSession(sub, email)
}
