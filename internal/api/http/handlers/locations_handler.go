package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guard-duty-service/internal/api/dto"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	"github.com/spec-kit/guard-duty-service/internal/service"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// LocationsHandler handles location CRUD and duty history endpoints.
type LocationsHandler struct {
	locations *service.LocationService
	duties    *service.DutyService
}

// NewLocationsHandler constructs handler.
func NewLocationsHandler(locationService *service.LocationService, dutyService *service.DutyService) *LocationsHandler {
	return &LocationsHandler{locations: locationService, duties: dutyService}
}

// Create POST /locations.
func (h *LocationsHandler) Create(c *fiber.Ctx) error {
	var req dto.LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	location, err := h.locations.CreateLocation(c.Context(), service.LocationInput{Name: req.Name, Image: req.Image})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": locationResponse(location)})
}

// Update PUT /locations/:id.
func (h *LocationsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	location, err := h.locations.UpdateLocation(c.Context(), id, service.LocationInput{Name: req.Name, Image: req.Image})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": locationResponse(location)})
}

// Delete DELETE /locations/:id.
func (h *LocationsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.locations.DeleteLocation(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /locations/:id.
func (h *LocationsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	location, err := h.locations.GetLocation(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": locationResponse(location)})
}

// List GET /locations?search=&page=&page_size=.
func (h *LocationsHandler) List(c *fiber.Ctx) error {
	filter := repository.LocationFilter{}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	locations, total, err := h.locations.ListLocations(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		items = append(items, locationResponse(&locations[i]))
	}
	return c.JSON(fiber.Map{"data": dto.LocationListResponse{Locations: items, Total: total}})
}

// History GET /locations/:id/duties.
func (h *LocationsHandler) History(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	duties, total, err := h.duties.ListForLocation(c.Context(), id, parseHistoryParams(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DutyHistoryResponse{Duties: dutyResponses(duties), Total: total}})
}
