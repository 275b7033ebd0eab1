package token

import "errors"

var (
	// ErrTokenGeneration indicates token signing failed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidToken indicates the token signature or shape is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("token expired")

	// ErrRevokedToken indicates the token's id is on the denylist
	ErrRevokedToken = errors.New("token revoked")

	// ErrRefreshMismatch indicates the presented refresh token does not
	// match the stored value for this user and device (missing, replayed,
	// or superseded by rotation).
	ErrRefreshMismatch = errors.New("refresh token not valid")

	// ErrUnknownUser indicates the refresh token's subject no longer exists
	ErrUnknownUser = errors.New("token subject not found")
)
