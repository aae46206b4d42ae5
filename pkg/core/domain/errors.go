package domain

import "errors"

var (
	// ErrStorageUnavailable is returned when the backing file or its directory cannot be resolved or opened
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSchemaInit is returned when the bookmarks table cannot be created
	ErrSchemaInit = errors.New("schema initialization failed")
	// ErrConstraintViolation is returned on a storage constraint failure such as a duplicate URL
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrNotFound is returned when an operation requires a bookmark that does not exist
	ErrNotFound = errors.New("bookmark not found")
	// ErrOpenFailed is returned when the URL opener fails
	ErrOpenFailed = errors.New("failed to open URL")
	// ErrStorage wraps any other statement failure
	ErrStorage = errors.New("storage error")
	// ErrInvalidInput is returned for missing or malformed operation arguments
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTag is returned for empty tag names or names containing the delimiter
	ErrInvalidTag = errors.New("invalid tag")
)
