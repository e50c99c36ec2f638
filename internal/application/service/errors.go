package service

import "errors"

var (
	// ErrBusy is returned when an extraction or submission is already in flight
	ErrBusy = errors.New("another operation is in progress")

	// ErrNoRecord is returned when editing or submitting without an extracted record
	ErrNoRecord = errors.New("no extracted record to work on")

	// ErrDiscarded is returned when the session was cleared before an operation completed
	ErrDiscarded = errors.New("session was cleared before the operation completed")
)
