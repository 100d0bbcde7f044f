package services

import (
	"errors"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/repositories"
)

// storeError converts a repository failure into an application error.
// notFound is the client message used for repositories.ErrNotFound.
func storeError(err error, notFound, op string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repositories.ErrUnavailable):
		return apperr.Unavailable(op, err)
	default:
		return apperr.Internal(op, err)
	}
}
