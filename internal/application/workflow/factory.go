package workflow

import (
	domainwf "github.com/garyjia/mrsl-intake/internal/domain/workflow"
)

// BuildSessionStateMachine creates a state machine configured for the document review session.
// Listeners are notified after every transition.
func BuildSessionStateMachine(initialState domainwf.State, listeners ...domainwf.TransitionListener) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// IDLE state transitions
	builder.Configure(domainwf.StateIdle).
		Permit(domainwf.TriggerSelectFile, domainwf.StateExtracting)

	// EXTRACTING state transitions
	builder.Configure(domainwf.StateExtracting).
		Permit(domainwf.TriggerExtractionSucceeded, domainwf.StateExtracted).
		Permit(domainwf.TriggerExtractionFailed, domainwf.StateExtractionFailed)

	// EXTRACTION_FAILED always falls back to IDLE; the user re-uploads
	builder.Configure(domainwf.StateExtractionFailed).
		Permit(domainwf.TriggerReset, domainwf.StateIdle)

	// EXTRACTED state transitions
	builder.Configure(domainwf.StateExtracted).
		Permit(domainwf.TriggerEdit, domainwf.StateExtracted).
		Permit(domainwf.TriggerSubmit, domainwf.StateSubmitting).
		Permit(domainwf.TriggerSelectFile, domainwf.StateExtracting)

	// SUBMITTING state transitions
	builder.Configure(domainwf.StateSubmitting).
		Permit(domainwf.TriggerSubmissionSucceeded, domainwf.StateSubmitted).
		Permit(domainwf.TriggerSubmissionFailed, domainwf.StateSubmissionFailed)

	// SUBMISSION_FAILED keeps the record and returns to review
	builder.Configure(domainwf.StateSubmissionFailed).
		Permit(domainwf.TriggerRecover, domainwf.StateExtracted)

	// SUBMITTED is not terminal: the form stays editable and may be resubmitted
	builder.Configure(domainwf.StateSubmitted).
		Permit(domainwf.TriggerEdit, domainwf.StateExtracted).
		Permit(domainwf.TriggerSubmit, domainwf.StateSubmitting).
		Permit(domainwf.TriggerSelectFile, domainwf.StateExtracting)

	builder.PermitFromAll(domainwf.TriggerClear, domainwf.StateIdle)

	for _, l := range listeners {
		builder.OnTransition(l)
	}

	return builder.Build(initialState)
}
