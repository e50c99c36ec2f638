package entity

import (
	"strings"
	"time"
)

// ExtractedAtLayout is the ISO-8601 form of the submission timestamp (UTC, milliseconds, Z)
const ExtractedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// SubmissionPayload is the body posted to the webhook: the seven record keys plus provenance
type SubmissionPayload struct {
	ExtractionRecord
	SourceFilename string `json:"source_filename"`
	ExtractedAt    string `json:"extracted_at"`
}

// NewSubmissionPayload builds the payload from the current working record
func NewSubmissionPayload(record ExtractionRecord, filename string, at time.Time) (SubmissionPayload, error) {
	if strings.TrimSpace(filename) == "" {
		return SubmissionPayload{}, ErrMissingFilename
	}
	return SubmissionPayload{
		ExtractionRecord: record.Clone(),
		SourceFilename:   filename,
		ExtractedAt:      at.UTC().Format(ExtractedAtLayout),
	}, nil
}
