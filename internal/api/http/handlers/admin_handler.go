package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-gate/internal/api/dto"
	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/service"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// AdminHandler serves the gate console and catalogue management.
type AdminHandler struct {
	gate   *service.GateService
	events *service.EventService
	users  *service.UserService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(gate *service.GateService, events *service.EventService, users *service.UserService) *AdminHandler {
	return &AdminHandler{gate: gate, events: events, users: users}
}

// Verify handles GET /admin/verify/:id.
func (h *AdminHandler) Verify(c *fiber.Ctx) error {
	snapshot, err := h.gate.Verify(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewVerifyResponse(snapshot))
}

// AllowEntry handles POST /admin/allow-entry/:id. Deny outcomes are
// rendered here rather than through the error envelope so the buzzer flag
// is always present.
func (h *AdminHandler) AllowEntry(c *fiber.Ctx) error {
	operator, _ := auth.IdentityFromContext(c)
	admission, err := h.gate.Admit(c.UserContext(), operator, c.Params("id"))
	if err != nil {
		return err
	}

	status := http.StatusOK
	switch admission.Outcome {
	case domain.AdmissionReplay:
		status = http.StatusConflict
	case domain.AdmissionNotFound:
		status = http.StatusNotFound
	}
	return c.Status(status).JSON(dto.NewAdmitResponse(admission))
}

// Events handles GET /admin/events.
func (h *AdminHandler) Events(c *fiber.Ctx) error {
	list, err := h.events.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventList(list))
}

// AddEvent handles POST /admin/add-event.
func (h *AdminHandler) AddEvent(c *fiber.Ctx) error {
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	event, err := h.events.Add(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.EventMutationResponse{
		Success: true,
		Message: "Event added successfully",
		Event:   dto.NewEventResponse(*event),
	})
}

// UpdateEvent handles POST /admin/update.
func (h *AdminHandler) UpdateEvent(c *fiber.Ctx) error {
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EventID() == "" {
		return apperrors.NewValidationError("validation failed", map[string]any{"fields": map[string]any{"_id": "required"}})
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	event, err := h.events.Update(c.UserContext(), req.EventID(), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.EventMutationResponse{
		Success: true,
		Message: "Event updated successfully",
		Event:   dto.NewEventResponse(*event),
	})
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserList(users))
}
