package config

import "errors"

var (
	// ErrNilPointer indicates a nil pointer was passed to Load.
	ErrNilPointer = errors.New("config: nil pointer passed to Load")
	// ErrParsingConfig indicates environment variables could not be parsed into the struct.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")
)
