package workflow

// Trigger represents a user action or an operation outcome that moves the session
type Trigger string

const (
	TriggerSelectFile          Trigger = "SELECT_FILE"
	TriggerExtractionSucceeded Trigger = "EXTRACTION_SUCCEEDED"
	TriggerExtractionFailed    Trigger = "EXTRACTION_FAILED"
	TriggerReset               Trigger = "RESET"
	TriggerEdit                Trigger = "EDIT"
	TriggerSubmit              Trigger = "SUBMIT"
	TriggerSubmissionSucceeded Trigger = "SUBMISSION_SUCCEEDED"
	TriggerSubmissionFailed    Trigger = "SUBMISSION_FAILED"
	TriggerRecover             Trigger = "RECOVER"
	TriggerClear               Trigger = "CLEAR"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
