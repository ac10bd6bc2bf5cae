package apperr

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

var statusByCode = map[Code]int{
	CodeInvalidInput:      http.StatusBadRequest,
	CodeAlreadyExists:     http.StatusBadRequest,
	CodeNotFound:          http.StatusNotFound,
	CodeInvalidCredential: http.StatusBadRequest,
	CodeTicketExpired:     http.StatusBadRequest,
	CodeTicketInvalid:     http.StatusBadRequest,
	CodeTokenExpired:      http.StatusUnauthorized,
	CodeTokenMalformed:    http.StatusUnauthorized,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeForbidden:         http.StatusForbidden,
	CodeInternal:          http.StatusInternalServerError,
}

// HTTPStatus maps a taxonomy code to its response status.
func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders every error as the uniform failure body. Tagged
// errors keep their message; untagged errors and raw fiber errors are
// passed through with a generic message so internals never leak.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var tagged *Error
	if errors.As(err, &tagged) {
		return c.Status(HTTPStatus(tagged.Code)).JSON(fiber.Map{
			"status": "fail",
			"error":  tagged.Message,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"status": "fail",
			"error":  fe.Message,
		})
	}

	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"status": "fail",
		"error":  "internal server error",
	})
}
