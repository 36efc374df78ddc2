package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guard-duty-service/internal/api/dto"
	"github.com/spec-kit/guard-duty-service/internal/service"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// CandidatesHandler serves the fairness-ranked candidate listing.
type CandidatesHandler struct {
	candidates *service.CandidateService
}

// NewCandidatesHandler constructs handler.
func NewCandidatesHandler(candidateService *service.CandidateService) *CandidatesHandler {
	return &CandidatesHandler{candidates: candidateService}
}

// List GET /staff/candidates?date=&search=&page=&page_size=&prioritize=.
func (h *CandidatesHandler) List(c *fiber.Ctx) error {
	query := service.CandidateQuery{
		Search:     c.Query("search"),
		Page:       c.QueryInt("page", 0),
		PageSize:   c.QueryInt("page_size", 0),
		Prioritize: c.QueryBool("prioritize", true),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return apperrors.NewValidationError("date must be YYYY-MM-DD", nil)
		}
		query.Date = date
	}

	page, err := h.candidates.ListCandidates(c.Context(), query)
	if err != nil {
		return err
	}

	items := make([]dto.CandidateResponse, 0, len(page.Candidates))
	for i := range page.Candidates {
		items = append(items, candidateResponse(&page.Candidates[i]))
	}
	return c.JSON(fiber.Map{"data": dto.CandidatePageResponse{
		Candidates: items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}})
}
