package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/movielist-api/internal/api/metrics"
	"github.com/99minutos/movielist-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, kind, msg := resolveError(err)
		metrics.ErrorResponsesTotal.WithLabelValues(kind).Inc()

		if code >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error) (code int, kind, msg string) {
	// Field-level validation carries its own client-safe message.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "validation", ve.Message
	}

	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind := "http"
		if he.Code == http.StatusUnauthorized {
			kind = "unauthenticated"
		}
		return he.Code, kind, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation", "invalid data"
	case errors.Is(err, domain.ErrMalformedID):
		return http.StatusBadRequest, "malformed_id", "invalid movie id"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "invalid or expired token"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthenticated", "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "you do not have permission to access this movie"
	case errors.Is(err, domain.ErrMovieNotFound):
		return http.StatusNotFound, "not_found", "movie not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "conflict", "this email is already registered"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "throttled", "too many failed login attempts, try again later"
	}

	return http.StatusInternalServerError, "internal", "internal server error"
}
