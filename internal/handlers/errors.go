package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/userdir/backend/internal/services"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// toHTTPError maps the service failure kinds onto HTTP errors. Anything else is
// returned unchanged and rendered as a 500.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, services.ErrBadRequest):
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
	default:
		return err
	}
}

// errorKind is the value of the "error" field in error bodies, e.g. "BadRequest".
func errorKind(code int) string {
	return strings.ReplaceAll(http.StatusText(code), " ", "")
}

// NewHTTPErrorHandler renders every error as {"error": "<Kind>"}
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
			)
			if hub := sentryecho.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			}
		} else {
			log.Debug("request rejected", zap.Int("status", code), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": errorKind(code)})
		}
		if err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}
