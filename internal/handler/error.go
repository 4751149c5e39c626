package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"go.uber.org/zap"
)

// ErrorHandler funnels every uncaught error into the uniform response
// envelope. Production responses carry only the message; development
// responses include the underlying error text.
func ErrorHandler(isProduction bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := classify(err)

		log := logger.FromEcho(c)
		fields := []zap.Field{
			zap.String("path", c.Request().URL.Path),
			zap.String("method", c.Request().Method),
			zap.Error(err),
		}
		if appErr.Kind == apperr.KindInternal {
			fields = append(fields, zap.Stack("stack"))
			log.Error("request failed", fields...)
		} else {
			log.Warn("request rejected", fields...)
		}

		var detail interface{}
		if !isProduction {
			detail = err.Error()
		}

		message := appErr.Message
		if appErr.Kind == apperr.KindInternal && isProduction {
			message = "something went wrong"
		}

		env := apperr.Fail(appErr, detail)
		env.Message = message
		if jsonErr := c.JSON(appErr.Status(), env); jsonErr != nil {
			log.Error("failed to write error response", zap.Error(jsonErr))
		}
	}
}

// classify maps framework errors (unknown route, bad method) into the
// taxonomy before falling back to the internal kind.
func classify(err error) *apperr.Error {
	if httpErr, ok := err.(*echo.HTTPError); ok {
		message, _ := httpErr.Message.(string)
		if message == "" {
			message = http.StatusText(httpErr.Code)
		}
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return apperr.NotFound(message)
		case http.StatusBadRequest:
			return apperr.Validation(message)
		case http.StatusUnauthorized:
			return apperr.Authentication(message)
		case http.StatusForbidden:
			return apperr.Authorization(message)
		default:
			return apperr.Internal(message, err)
		}
	}
	return apperr.As(err)
}

// respond writes a success envelope.
func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, apperr.OK(message, data))
}
