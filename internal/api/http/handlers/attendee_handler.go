package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-gate/internal/api/dto"
	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/service"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// AttendeeHandler serves the /api routes.
type AttendeeHandler struct {
	users  *service.UserService
	events *service.EventService
}

// NewAttendeeHandler constructs handler.
func NewAttendeeHandler(users *service.UserService, events *service.EventService) *AttendeeHandler {
	return &AttendeeHandler{users: users, events: events}
}

// Profile handles GET /api/user.
func (h *AttendeeHandler) Profile(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("unauthenticated")
	}
	profile, err := h.users.Profile(c.UserContext(), identity.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProfileResponse(profile))
}

// Events handles GET /api/events.
func (h *AttendeeHandler) Events(c *fiber.Ctx) error {
	list, err := h.events.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventList(list))
}

// RegisterEvent handles POST /api/register-event.
func (h *AttendeeHandler) RegisterEvent(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("unauthenticated")
	}
	var req dto.RegisterEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.events.RegisterUserForEvent(c.UserContext(), identity.User.ID, req.EventName); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Registered for " + req.EventName})
}

// QRCode handles GET /api/qrcode/:id.
func (h *AttendeeHandler) QRCode(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("unauthenticated")
	}
	png, err := h.users.Credential(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.Send(png)
}
