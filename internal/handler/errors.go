package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/model"
)

// statusForError maps service errors onto HTTP status codes. Unknown
// errors are treated as internal so storage details never leak.
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrRequestRequired),
		errors.Is(err, model.ErrCustomerNameRequired),
		errors.Is(err, model.ErrReservedAtRequired),
		errors.Is(err, model.ErrMalformedReservedAt),
		errors.Is(err, model.ErrPartySizeTooSmall),
		errors.Is(err, model.ErrUnknownStatus),
		errors.Is(err, model.ErrReservedAtNotFuture):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateActiveSlot),
		errors.Is(err, model.ErrAlreadyFinalized),
		errors.Is(err, model.ErrCancelNotAllowed),
		errors.Is(err, model.ErrConcurrentUpdate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders a service error as the standard error body. The
// message of an internal error is replaced with a generic one and the
// original is logged instead.
func writeError(c echo.Context, err error) error {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		c.Logger().Error(err)
		msg = "internal server error"
	}
	return writeErrorMessage(c, status, msg)
}

// writeErrorMessage renders an error body for a handler-level failure
// such as an unparseable path or query parameter.
func writeErrorMessage(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{
		"error":     msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    status,
	})
}
