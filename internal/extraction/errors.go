package extraction

import "fmt"

// ConfigurationError reports that the inference credential is absent.
// It is detected at call time, before any network I/O, and is kept apart
// from ExtractionError so callers can tell a setup problem from a failed attempt.
type ConfigurationError struct {
	Provider string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s API key is missing", e.Provider)
}

// Stage names the step at which an extraction attempt failed
type Stage string

const (
	StageTransport Stage = "transport"
	StageEmpty     Stage = "empty"
	StageDecode    Stage = "decode"
	StageSchema    Stage = "schema"
)

// ExtractionError is a transport/service failure or a response that does not match the schema
type ExtractionError struct {
	Stage Stage
	Err   error
}

func (e *ExtractionError) Error() string {
	switch e.Stage {
	case StageEmpty:
		return "no response from the inference service"
	case StageDecode, StageSchema:
		return fmt.Sprintf("invalid response format from AI: %v", e.Err)
	default:
		return fmt.Sprintf("inference request failed: %v", e.Err)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
