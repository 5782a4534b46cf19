package jwt

import "errors"

var (
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrInvalidToken      = errors.New("jwt: invalid token")
)
