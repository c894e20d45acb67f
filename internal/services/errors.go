package services

import (
	"errors"
	"fmt"

	"clubsite/internal/domain"
)

// upstream wraps an infrastructure failure so callers can match domain.ErrUpstream.
// Domain errors pass through unchanged.
func upstream(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAuthenticationRequired):
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
}
