package domain

import "errors"

var (
	// ErrFormat marks an upload that is not a readable PDF.
	ErrFormat = errors.New("invalid document format")
	// ErrService marks a failure of the embedding or completion service.
	ErrService = errors.New("external service failure")
	// ErrConfiguration marks missing or invalid startup configuration.
	ErrConfiguration = errors.New("invalid configuration")
)
