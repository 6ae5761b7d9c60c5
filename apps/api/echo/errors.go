package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/admissions/core"
)

var (
	errTooManyRequests = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
)

// ErrorResponse is the body of transport-level errors (404, 405, 429, 500).
type ErrorResponse struct {
	Error string `json:"error"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Status lookups never reach it: their outcomes are answered by the handler itself.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
			if internal, ok := herr.Internal.(*echo.HTTPError); ok {
				herr = internal
			}
			code = herr.Code
			message = http.StatusText(code)
			if m, ok := herr.Message.(string); ok {
				message = m
			}
		} else { // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(code)

			logger.Error(message, errors.Wrap(err, message), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Request().URL.Path,
			})
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, ErrorResponse{Error: message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
