package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// HandleError writes err as a JSON error response. Non-AppError values are
// wrapped as internal errors so unexpected failures never leak their cause to
// the caller.
func HandleError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		slog.Error("request failed",
			"code", string(appErr.Code),
			"domain", appErr.Domain,
			"error", appErr.Error(),
		)
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// AsAppError unwraps err into *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HandleBindingError maps a gin binding failure to a validation error. The
// binding detail goes into Details so the message stays stable for clients.
func HandleBindingError(c *gin.Context, err error) {
	HandleError(c, ValidationError("request", "invalid request payload").WithDetails(err.Error()))
}
