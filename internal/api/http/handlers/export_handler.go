package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guard-duty-service/internal/service"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// ExportHandler serves the weekly roster spreadsheet.
type ExportHandler struct {
	exports *service.RosterExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exportService *service.RosterExportService) *ExportHandler {
	return &ExportHandler{exports: exportService}
}

// WeekRoster GET /duties/export/week?start=YYYY-MM-DD.
func (h *ExportHandler) WeekRoster(c *fiber.Ctx) error {
	raw := c.Query("start")
	if raw == "" {
		return apperrors.NewValidationError("start required (YYYY-MM-DD)", nil)
	}
	start, err := time.Parse(dateLayout, raw)
	if err != nil {
		return apperrors.NewValidationError("start must be YYYY-MM-DD", nil)
	}

	content, err := h.exports.WeekRoster(c.Context(), start)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("week-roster-%s.xlsx", start.Format(dateLayout))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}
