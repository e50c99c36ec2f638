package intake

import "errors"

var (
	// ErrNotPDF is returned when the declared media type is not application/pdf
	ErrNotPDF = errors.New("only PDF documents are accepted")
	// ErrEmptyFile is returned for zero-byte uploads
	ErrEmptyFile = errors.New("file is empty")
	// ErrTooLarge is returned when the file exceeds the configured size limit
	ErrTooLarge = errors.New("file exceeds the maximum upload size")
)
