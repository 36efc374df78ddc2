package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guard-duty-service/internal/api/dto"
	"github.com/spec-kit/guard-duty-service/internal/service"
)

// RecountHandler exposes the aggregate repair endpoints.
type RecountHandler struct {
	recount *service.RecountService
}

// NewRecountHandler constructs handler.
func NewRecountHandler(recountService *service.RecountService) *RecountHandler {
	return &RecountHandler{recount: recountService}
}

// RecountStaff POST /staff/recount.
func (h *RecountHandler) RecountStaff(c *fiber.Ctx) error {
	updated, err := h.recount.RecountAllStaff(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RecountResponse{Updated: updated}})
}

// RecountLocations POST /locations/recount.
func (h *RecountHandler) RecountLocations(c *fiber.Ctx) error {
	updated, err := h.recount.RecountAllLocations(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RecountResponse{Updated: updated}})
}

// RecountStaffMember POST /staff/:id/recount.
func (h *RecountHandler) RecountStaffMember(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.recount.RecountStaffMember(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RecountResponse{Updated: 1}})
}

// RecountLocation POST /locations/:id/recount.
func (h *RecountHandler) RecountLocation(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.recount.RecountLocation(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RecountResponse{Updated: 1}})
}
