package kit

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"planeat-api/internal/logx"
)

var kitLogger = logx.GetScope("httpx")

// APIError is a structured application error with code and message.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

func NewAPIError(httpStatus int, code, msg string, details any) *APIError {
	return &APIError{HTTPStatus: httpStatus, Code: code, Message: msg, Details: details}
}

func BadRequest(msg string, details any) error {
	return NewAPIError(http.StatusBadRequest, "E_INVALID_PARAM", msg, details)
}

func NotFound(msg string) error { return NewAPIError(http.StatusNotFound, "E_NOT_FOUND", msg, nil) }

func Conflict(msg string, details any) error {
	return NewAPIError(http.StatusConflict, "E_CONFLICT", msg, details)
}

func Forbidden(msg string) error { return NewAPIError(http.StatusForbidden, "E_FORBIDDEN", msg, nil) }

func Unauthorized(msg string) error {
	return NewAPIError(http.StatusUnauthorized, "E_UNAUTHORIZED", msg, nil)
}

// InternalError hides details from the client and logs them instead.
func InternalError(msg string, details any) error {
	kitLogger.Sugar().Errorf("%s: %v", msg, details)
	return NewAPIError(http.StatusInternalServerError, "E_INTERNAL", msg, nil)
}

// ErrorHandler returns a Fiber error handler that emits unified error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"code":       httpStatusToCode(fe.Code),
				"message":    fe.Message,
				"request_id": RequestID(c),
			})
		}

		var ae *APIError
		if errors.As(err, &ae) {
			body := fiber.Map{
				"code":       ae.Code,
				"message":    ae.Message,
				"request_id": RequestID(c),
			}
			if ae.Details != nil {
				body["details"] = ae.Details
			}
			return c.Status(ae.HTTPStatus).JSON(body)
		}

		kitLogger.Sugar().Errorf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"code":       "E_INTERNAL",
			"message":    "Internal Server Error",
			"request_id": RequestID(c),
		})
	}
}

func httpStatusToCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "E_INVALID_PARAM"
	case http.StatusNotFound:
		return "E_NOT_FOUND"
	case http.StatusUnauthorized:
		return "E_UNAUTHORIZED"
	case http.StatusForbidden:
		return "E_FORBIDDEN"
	case http.StatusConflict:
		return "E_CONFLICT"
	case http.StatusTooManyRequests:
		return "E_RATE_LIMITED"
	default:
		if status >= 500 {
			return "E_INTERNAL"
		}
		return "E_UNKNOWN"
	}
}
