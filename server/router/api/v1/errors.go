package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/shopsense/server/internal/errors"
	"github.com/hrygo/shopsense/server/internal/observability"
)

// ErrorResponse is the error body returned by every v1 endpoint.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// statusFor maps a routing error code to its HTTP status.
func statusFor(code apierrors.ErrorCode) int {
	switch code {
	case apierrors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case apierrors.ErrCodeConversationNotFound, apierrors.ErrCodeUnknownStaff:
		return http.StatusNotFound
	case apierrors.ErrCodeConversationClosed, apierrors.ErrCodeInvalidTransition:
		return http.StatusConflict
	case apierrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorJSON writes the structured error body. Server-side failures are
// logged with their code; client errors are not.
func (s *APIV1Service) errorJSON(c echo.Context, routingErr *apierrors.RoutingError, logArgs ...any) error {
	status := statusFor(routingErr.GetCode())
	if status >= http.StatusInternalServerError {
		args := append([]any{
			observability.LogFieldErrorCode, string(routingErr.GetCode()),
			"error", routingErr,
		}, logArgs...)
		s.logger.Error(routingErr.Message, args...)
	}
	return c.JSON(status, ErrorResponse{
		Code:  string(routingErr.GetCode()),
		Error: routingErr.Message,
	})
}
