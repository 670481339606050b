package service

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/noah-isme/coaching-center-api/internal/repository"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

// storeError translates record store failures into typed API errors.
func storeError(err error, notFound, failure string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrMissingOwner):
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing owner scope")
	default:
		return appErrors.Internal(err, failure)
	}
}

func validateID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid "+what+" id")
	}
	return nil
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
