package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-tracker/internal/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable error kind alongside the message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondOK writes a success envelope.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// respondError maps an application error onto a status code and envelope.
// Unrecognized errors are reported as opaque internal failures so database
// details never leak to clients.
func respondError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   &ErrorBody{Code: "INTERNAL", Message: "internal error"},
		})
		return
	}

	c.JSON(statusFor(appErr), Response{
		Success: false,
		Error:   &ErrorBody{Code: appErr.Code, Message: appErr.Message},
	})
}

func statusFor(appErr *errors.AppError) int {
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeState:
		return http.StatusConflict
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	case errors.ErrorTypeClosed:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}
