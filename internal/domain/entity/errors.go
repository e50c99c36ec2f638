package entity

import "errors"

var (
	// ErrUnknownField is returned when a field key is not part of the record
	ErrUnknownField = errors.New("unknown record field")

	// ErrMissingFilename is returned when a submission has no source filename
	ErrMissingFilename = errors.New("source filename is required")
)
