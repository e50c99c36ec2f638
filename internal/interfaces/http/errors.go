package http

import (
	"errors"
	"net/http"

	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/domain/entity"
	"github.com/garyjia/mrsl-intake/internal/extraction"
	"github.com/garyjia/mrsl-intake/internal/infrastructure/external/webhook"
	"github.com/garyjia/mrsl-intake/internal/intake"
)

// errBadRequest marks malformed client input
var errBadRequest = errors.New("bad request")

// statusFor maps session errors to HTTP status codes
func statusFor(err error) int {
	var cfgErr *extraction.ConfigurationError
	var extErr *extraction.ExtractionError
	var subErr *webhook.SubmissionError

	switch {
	case errors.Is(err, intake.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, intake.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, intake.ErrEmptyFile),
		errors.Is(err, entity.ErrUnknownField),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBusy),
		errors.Is(err, service.ErrNoRecord),
		errors.Is(err, service.ErrDiscarded):
		return http.StatusConflict
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &extErr), errors.As(err, &subErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
