package event

// Type identifies the type of session event
type Type string

const (
	TypeFileAccepted        Type = "file.accepted"
	TypeExtractionSucceeded Type = "extraction.succeeded"
	TypeExtractionFailed    Type = "extraction.failed"
	TypeRecordEdited        Type = "record.edited"
	TypeSubmissionSucceeded Type = "submission.succeeded"
	TypeSubmissionFailed    Type = "submission.failed"
	TypeSessionCleared      Type = "session.cleared"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeFileAccepted,
		TypeExtractionSucceeded,
		TypeExtractionFailed,
		TypeRecordEdited,
		TypeSubmissionSucceeded,
		TypeSubmissionFailed,
		TypeSessionCleared:
		return true
	default:
		return false
	}
}

// Level is the severity shown to the user for a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultLevel maps an event type to the notification level it is shown with
func (t Type) DefaultLevel() Level {
	switch t {
	case TypeExtractionSucceeded, TypeSubmissionSucceeded:
		return LevelSuccess
	case TypeExtractionFailed, TypeSubmissionFailed:
		return LevelError
	default:
		return LevelInfo
	}
}

// IsNotification reports whether the event surfaces to the user as a transient toast
func (t Type) IsNotification() bool {
	switch t {
	case TypeExtractionSucceeded, TypeExtractionFailed, TypeSubmissionSucceeded, TypeSubmissionFailed:
		return true
	default:
		return false
	}
}
