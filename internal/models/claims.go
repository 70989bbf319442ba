package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the claims carried by the backend's access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId"`
	Email  string `json:"email,omitempty"`
}
