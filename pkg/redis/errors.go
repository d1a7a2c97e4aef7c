package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the connect timeout")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)
