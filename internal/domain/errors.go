package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("rate limited")
	ErrLockHeld           = errors.New("lock already held")
	ErrTradeLimit         = errors.New("risk limits exceeded")
	ErrDailyLimit         = errors.New("daily notional exceeded")
	ErrMissingCredentials = errors.New("missing trading credentials")
)
