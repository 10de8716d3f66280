package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/logging"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	RequestID string           `json:"request_id,omitempty"`
}

// ErrorHandler middleware catches panics and converts them to proper error responses
func ErrorHandler(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				JSONErrorResponse(c, errors.Internal("internal server error", fmt.Sprint(r)))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONErrorResponse wraps errors in consistent JSON format. Errors that are
// not AppErrors become INTERNAL_ERROR.
func JSONErrorResponse(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Wrap(err, "internal server error")
	}
	_ = c.Error(err)

	c.JSON(appErr.Status, ErrorResponse{
		Success:   false,
		Error:     appErr,
		RequestID: GetRequestID(c),
	})
}
