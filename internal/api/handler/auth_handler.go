package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/movielist-api/internal/api/metrics"
	"github.com/99minutos/movielist-api/internal/core/domain"
	"github.com/99minutos/movielist-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) (err error) {
	defer func() { metrics.AuthAttemptsTotal.WithLabelValues("register", authResult(err)).Inc() }()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("body", "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "user created successfully", User: user})
}

// Login authenticates a user and returns a bearer token valid for one day.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer func() { metrics.AuthAttemptsTotal.WithLabelValues("login", authResult(err)).Inc() }()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("body", "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Message: "login successful", User: res.User, Token: res.Token})
}

// Protected confirms the bearer token and echoes the caller's id.
//
// @Summary      Check a bearer token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  protectedResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/auth/protected [get]
func (h *AuthHandler) Protected(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, protectedResponse{
		Message: "access granted, welcome to the protected area",
		UserID:  userID,
	})
}
