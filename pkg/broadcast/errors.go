package broadcast

import "errors"

var (
	ErrEmptyChannel    = errors.New("broadcast channel name is empty")
	ErrSubscribeFailed = errors.New("failed to subscribe to broadcast channel")
	ErrPublishFailed   = errors.New("failed to publish broadcast message")
	ErrEncodeMessage   = errors.New("failed to encode broadcast message")
)
