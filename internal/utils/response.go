package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/types"
)

// DataResponse sends the standard success envelope
func DataResponse(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(SuccessResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        true,
		Data:      data,
		Timestamp: now(),
	})
}

// ErrorResponse sends the standard error envelope for any error.
// CustomErrors keep their code, type and kind; fiber errors keep their code;
// anything else is an internal error whose detail is not exposed.
func ErrorResponse(c *fiber.Ctx, err error) error {
	body := ErrorResponseStruct{
		Status:    fiber.StatusInternalServerError,
		Message:   "Internal Server Error",
		Ok:        false,
		Type:      "internal",
		Kind:      string(types.KindInfrastructure),
		Timestamp: now(),
		URL:       c.OriginalURL(),
	}

	var fe *fiber.Error
	if ce, ok := types.AsCustomError(err); ok {
		body.Status = ce.Code
		body.Type = ce.Type
		body.Kind = string(ce.Kind)
		body.Fields = ce.Fields
		if ce.Kind != types.KindInfrastructure {
			body.Message = ce.Message
		}
	} else if errors.As(err, &fe) {
		body.Status = fe.Code
		body.Message = fe.Message
		body.Type = "http"
		body.Kind = kindForStatus(fe.Code)
	}

	return c.Status(body.Status).JSON(body)
}

func kindForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return string(types.KindNotFound)
	case fiber.StatusConflict:
		return string(types.KindConflict)
	case fiber.StatusUnauthorized:
		return string(types.KindUnauthorized)
	case fiber.StatusForbidden:
		return string(types.KindForbidden)
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return string(types.KindValidationFailed)
	default:
		return string(types.KindInfrastructure)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Ok        bool              `json:"ok"`
	Type      string            `json:"type"`
	Kind      string            `json:"kind"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp string            `json:"timestamp"`
	URL       string            `json:"url"`
}

// SuccessResponseStruct defines the schema for success responses
type SuccessResponseStruct struct {
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Ok        bool        `json:"ok"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}
