package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/delivery/http/middleware"
	"freelance-hub/internal/pkg/response"
	"freelance-hub/internal/usecase"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound), errors.Is(err, usecase.ErrProfileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrConflict), errors.Is(err, usecase.ErrDuplicateEmail):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// mapUsecaseError turns a usecase failure into an AppError for the
// envelope routes. Client errors keep their message.
func mapUsecaseError(err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		return middleware.NewAppError(status, response.MessageInternalServerError, nil, err)
	}
	return middleware.NewAppError(status, err.Error(), nil, err)
}
