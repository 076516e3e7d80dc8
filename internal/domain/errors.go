package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrLockHeld           = errors.New("lock already held")
	ErrTransport          = errors.New("transport failure")
	ErrMalformedSymbol    = errors.New("malformed symbol")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
