package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNoMarket    = errors.New("no market available")
	ErrBadResponse = errors.New("malformed response")
	ErrRateLimited = errors.New("rate limited")
)
