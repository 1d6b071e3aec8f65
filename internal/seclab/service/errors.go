package service

import "errors"

// Every failure here is an expected, recoverable outcome that callers map to
// a user-facing status. Token verification failures (expired, malformed, bad
// signature) are propagated as the jwtx sentinels unchanged so callers can
// still distinguish them.
var (
	ErrAlreadyExists    = errors.New("already_exists")
	ErrNotFound         = errors.New("user_not_found")
	ErrWrongPassword    = errors.New("wrong_password")
	ErrWrongTokenType   = errors.New("wrong_token_type")
	ErrInsufficientRole = errors.New("insufficient_role")
	ErrStaleToken       = errors.New("stale_refresh_token")
)
