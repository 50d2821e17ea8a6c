package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims are the claims carried by both token types. Email is only
// present on access tokens.
type CustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type"`
}

// UserUUID parses the UserID claim
func (c *CustomClaims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}
