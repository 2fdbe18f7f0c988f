package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT. Role is
// "shopper" for storefront users; fulfillment staff carry "ops".
type AccessTokenPayload struct {
	UserID uuid.UUID
	Name   string
	Role   string
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to shoppers and staff.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name,omitempty"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}
