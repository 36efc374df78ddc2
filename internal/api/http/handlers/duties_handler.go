package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guard-duty-service/internal/api/dto"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	"github.com/spec-kit/guard-duty-service/internal/service"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// DutiesHandler handles guard duty mutation and read endpoints.
type DutiesHandler struct {
	duties *service.DutyService
}

// NewDutiesHandler constructs handler.
func NewDutiesHandler(dutyService *service.DutyService) *DutiesHandler {
	return &DutiesHandler{duties: dutyService}
}

// Create POST /duties.
func (h *DutiesHandler) Create(c *fiber.Ctx) error {
	input, err := parseDutyRequest(c)
	if err != nil {
		return err
	}
	duty, err := h.duties.CreateDuty(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dutyResponse(duty)})
}

// Update PUT /duties/:id.
func (h *DutiesHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	input, err := parseDutyRequest(c)
	if err != nil {
		return err
	}
	duty, err := h.duties.UpdateDuty(c.Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dutyResponse(duty)})
}

// Delete DELETE /duties/:id.
func (h *DutiesHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.duties.DeleteDuty(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /duties/:id.
func (h *DutiesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	duty, err := h.duties.GetDuty(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dutyResponse(duty)})
}

// ListMonth GET /duties?year=&month=&location_id=.
func (h *DutiesHandler) ListMonth(c *fiber.Ctx) error {
	now := time.Now().UTC()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return apperrors.NewValidationError("month must be between 1 and 12", nil)
	}
	var locationID *int64
	if raw := c.Query("location_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("location_id must be numeric", nil)
		}
		locationID = &id
	}
	duties, err := h.duties.ListMonth(c.Context(), year, time.Month(month), locationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dutyResponses(duties)})
}

func parseDutyRequest(c *fiber.Ctx) (service.DutyInput, error) {
	var req dto.DutyRequest
	if err := c.BodyParser(&req); err != nil {
		return service.DutyInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	var assignedDate time.Time
	if req.AssignedDate != "" {
		parsed, err := time.Parse(dateLayout, req.AssignedDate)
		if err != nil {
			return service.DutyInput{}, apperrors.NewValidationError("assigned_date must be YYYY-MM-DD", nil)
		}
		assignedDate = parsed
	}
	return service.DutyInput{
		AssignedDate:    assignedDate,
		AssignedStaffID: req.AssignedStaffID,
		ActualStaffID:   req.ActualStaffID,
		LocationID:      req.LocationID,
		RoleID:          req.RoleID,
		Notes:           req.Notes,
	}, nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name+" must be a positive integer", nil)
	}
	return id, nil
}

func parseHistoryParams(c *fiber.Ctx) repository.HistoryParams {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return repository.HistoryParams{
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
	}
}
