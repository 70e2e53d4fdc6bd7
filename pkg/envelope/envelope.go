// Package envelope implements the uniform GrubStack response shape
// {status: {code, message}, data} used by every endpoint.
package envelope

import (
	"github.com/gofiber/fiber/v2"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
)

// StatusCode is the coarse outcome code in the response status block.
type StatusCode string

const (
	StatusSuccess StatusCode = "success"
	StatusWarning StatusCode = "warning"
	StatusError   StatusCode = "error"
)

// Status is the status block of a response.
type Status struct {
	Code    StatusCode `json:"code"`
	Message string     `json:"message,omitempty"`
}

// Response is the uniform response envelope.
type Response struct {
	Status Status      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success writes a 200 envelope with the given data.
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Status: Status{Code: StatusSuccess},
		Data:   data,
	})
}

// Message writes a 200 envelope carrying only a status message.
func Message(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Status: Status{Code: StatusSuccess, Message: message},
		Data:   "",
	})
}

// Fail writes an error envelope with an explicit HTTP status.
func Fail(c *fiber.Ctx, httpStatus int, message string) error {
	return c.Status(httpStatus).JSON(Response{
		Status: Status{Code: StatusError, Message: message},
		Data:   "",
	})
}

// FromError writes an error envelope derived from an errx error. Unknown
// errors collapse to a 500 with a generic message.
func FromError(c *fiber.Ctx, err error) error {
	var e *errx.Error
	if errx.As(err, &e) {
		return Fail(c, e.HTTPStatus, e.Message)
	}
	return Fail(c, fiber.StatusInternalServerError, "Internal server error")
}
