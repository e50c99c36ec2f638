package webhook

import "fmt"

// SubmissionError is a failed webhook call: either the request did not complete
// or the endpoint answered with a non-success status
type SubmissionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook request failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
