package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"clubsite/internal/domain"
	"clubsite/internal/lifecycle"
)

// WriteServiceError maps a service error onto the response envelope.
// Unrecognised errors are logged and reported as 500 without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var rejection *lifecycle.UploadRejection
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &rejection):
		switch rejection.Reason {
		case lifecycle.RejectTooLarge:
			WriteJSONError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, rejection.Error())
		case lifecycle.RejectUnsupportedType:
			WriteJSONError(w, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMediaType, rejection.Error())
		default:
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, rejection.Error())
		}
	case errors.As(err, &verr):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, verr.Error())
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrAuthenticationRequired):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "resource conflicts with an existing one")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
