package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Password string `json:"password"`
}
