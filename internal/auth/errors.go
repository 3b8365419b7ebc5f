package auth

import "errors"

var (
	ErrUnknownRole  = errors.New("auth: unknown role")
	ErrInvalidToken = errors.New("auth: invalid token")
)
