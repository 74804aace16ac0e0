package model

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParameters is returned when required arguments are empty or malformed.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrInvalidURI is returned when an image locator has an unsupported shape.
	ErrInvalidURI = errors.New("invalid image uri")
	// ErrConversion is returned when an image locator cannot be materialized into bytes.
	ErrConversion = errors.New("failed to convert image")
	// ErrEmptyImage is returned when a materialized image payload has zero bytes.
	ErrEmptyImage = errors.New("image is empty")
	// ErrTooLarge is returned when an image payload exceeds the upload size limit.
	ErrTooLarge = errors.New("image exceeds maximum size")
	// ErrLocalWrite is returned when the key-value store rejects a cache write.
	ErrLocalWrite = errors.New("local write failed")
)
