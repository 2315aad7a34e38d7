package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-gate/internal/api/dto"
	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/service"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// UsersHandler exposes signup, login and logout.
type UsersHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, cookie CookieConfig) *UsersHandler {
	if cookie.Name == "" {
		cookie.Name = "jwt"
	}
	return &UsersHandler{auth: authService, cookie: cookie}
}

// Signup handles POST /signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:         req.Username,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewSignupResponse(user, req.ReferralCode))
}

// Login handles POST /login and sets the session cookie.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	_, session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.LoginResponse{
		Success:   true,
		Message:   "Login successful",
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /logout by expiring the cookie.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	if err := h.auth.Logout(c.UserContext(), identity); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.MessageResponse{Success: true, Message: "Logged out"})
}
