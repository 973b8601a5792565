package client

import "errors"

var (
	ErrUnavailable           = errors.New("remote service unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
