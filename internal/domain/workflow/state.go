package workflow

// State represents a step of the document review session
type State string

const (
	StateIdle             State = "IDLE"
	StateExtracting       State = "EXTRACTING"
	StateExtractionFailed State = "EXTRACTION_FAILED"
	StateExtracted        State = "EXTRACTED"
	StateSubmitting       State = "SUBMITTING"
	StateSubmissionFailed State = "SUBMISSION_FAILED"
	StateSubmitted        State = "SUBMITTED"
)

var validStates = map[State]bool{
	StateIdle:             true,
	StateExtracting:       true,
	StateExtractionFailed: true,
	StateExtracted:        true,
	StateSubmitting:       true,
	StateSubmissionFailed: true,
	StateSubmitted:        true,
}

// busyStates have a network operation in flight
var busyStates = map[State]bool{
	StateExtracting: true,
	StateSubmitting: true,
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid session state
func (s State) IsValid() bool {
	return validStates[s]
}

// IsBusy returns true while an extraction or a submission is outstanding
func (s State) IsBusy() bool {
	return busyStates[s]
}

// HasRecord returns true for the states in which a working record exists
func (s State) HasRecord() bool {
	switch s {
	case StateExtracted, StateSubmitting, StateSubmissionFailed, StateSubmitted:
		return true
	}
	return false
}
