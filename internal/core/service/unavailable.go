package service

import (
	"errors"
	"fmt"

	"github.com/blogforge/content-api/internal/core/domain"
)

// unavailable translates an exhausted write failure into
// domain.ErrServiceUnavailable. Expected domain outcomes pass through
// unchanged so callers and the error handler still see them.
func unavailable(err error) error {
	if _, ok := domain.AsValidationError(err); ok {
		return err
	}
	for _, sentinel := range []error{
		domain.ErrUserNotFound,
		domain.ErrPostNotFound,
		domain.ErrUsernameTaken,
		domain.ErrEmailTaken,
		domain.ErrInvalidCredentials,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
}
