package handlers

import (
	"errors"
	"net/http"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/services"
)

// statusForError maps service-layer sentinel errors to HTTP status codes.
// Unknown errors are not mapped; callers respond 500 without leaking the
// internal message.
func statusForError(err error) (int, bool) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrUnbalancedPosting),
		errors.Is(err, apperrors.ErrCurrencyMismatch),
		errors.Is(err, services.ErrGroupMinEntries),
		errors.Is(err, services.ErrGroupMinAccounts),
		errors.Is(err, services.ErrDescriptionMissing),
		errors.Is(err, services.ErrAccountNotFound):
		return http.StatusBadRequest, true
	case errors.Is(err, apperrors.ErrDuplicateCode),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrAlreadyReleased),
		errors.Is(err, apperrors.ErrReservationConflict),
		errors.Is(err, apperrors.ErrInsufficientStock),
		errors.Is(err, apperrors.ErrInsufficientAvailable):
		return http.StatusConflict, true
	case errors.Is(err, apperrors.ErrIntegrity):
		return http.StatusInternalServerError, true
	}
	return 0, false
}
