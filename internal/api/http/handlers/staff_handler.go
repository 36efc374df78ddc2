package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guard-duty-service/internal/api/dto"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	"github.com/spec-kit/guard-duty-service/internal/service"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// StaffHandler handles staff CRUD and duty history endpoints.
type StaffHandler struct {
	staff  *service.StaffService
	duties *service.DutyService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService, dutyService *service.DutyService) *StaffHandler {
	return &StaffHandler{staff: staffService, duties: dutyService}
}

// Create POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req dto.StaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.staff.RegisterStaff(c.Context(), staffInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

// Update PUT /staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.StaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.staff.UpdateStaff(c.Context(), id, staffInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// Delete DELETE /staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.staff.DeleteStaff(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /staff/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	staff, err := h.staff.GetStaff(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// List GET /staff?search=&rol_id=&page=&page_size=.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	filter := repository.StaffFilter{}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if raw := c.Query("rol_id"); raw != "" {
		roleID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("rol_id must be numeric", nil)
		}
		filter.RoleID = &roleID
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

	staff, total, err := h.staff.ListStaff(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(staff))
	for i := range staff {
		items = append(items, staffResponse(&staff[i]))
	}
	return c.JSON(fiber.Map{"data": dto.StaffListResponse{Staff: items, Total: total}})
}

// History GET /staff/:dniOrId/duties.
func (h *StaffHandler) History(c *fiber.Ctx) error {
	dniOrID := c.Params("dniOrId")
	if dniOrID == "" {
		return apperrors.NewValidationError("staff identifier required", nil)
	}
	duties, total, err := h.duties.ListForStaff(c.Context(), dniOrID, parseHistoryParams(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DutyHistoryResponse{Duties: dutyResponses(duties), Total: total}})
}

func staffInput(req dto.StaffRequest) service.StaffInput {
	return service.StaffInput{
		DNI:    req.DNI,
		Name:   req.Name,
		Phone:  req.Phone,
		Image:  req.Image,
		RoleID: req.RoleID,
	}
}
