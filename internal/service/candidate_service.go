package service

import (
	"context"
	"time"

	"github.com/spec-kit/guard-duty-service/internal/domain"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// CandidateQuery is the caller-facing candidate listing request.
type CandidateQuery struct {
	Date       time.Time
	Search     string
	Page       int
	PageSize   int
	Prioritize bool
}

// CandidatePage is one page of ranked candidates with the total eligible
// count for client-side page math.
type CandidatePage struct {
	Candidates []domain.Candidate `json:"candidates"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

// CandidateCache is the optional read-through cache in front of the ranking
// query. A nil cache disables caching.
type CandidateCache interface {
	Get(ctx context.Context, q CandidateQuery) (*CandidatePage, bool)
	Set(ctx context.Context, q CandidateQuery, page *CandidatePage)
}

// CandidateService ranks staff for assignment on a target date. Eligibility
// excludes anyone already on duty that day; ordering favors the longest idle
// and least assigned; month_count is computed on read so short-term load is
// visible without a second stored aggregate.
type CandidateService struct {
	candidates repository.CandidateRepository
	cache      CandidateCache
}

// NewCandidateService constructs the service.
func NewCandidateService(candidates repository.CandidateRepository, cache CandidateCache) *CandidateService {
	return &CandidateService{candidates: candidates, cache: cache}
}

const (
	defaultCandidatePageSize = 10
	maxCandidatePageSize     = 100
)

// ListCandidates returns one page of eligible staff for the query date.
func (s *CandidateService) ListCandidates(ctx context.Context, query CandidateQuery) (*CandidatePage, error) {
	if query.Date.IsZero() {
		return nil, apperrors.NewValidationError("date required (YYYY-MM-DD)", nil)
	}
	query = normalizeCandidateQuery(query)

	if s.cache != nil {
		if page, ok := s.cache.Get(ctx, query); ok {
			return page, nil
		}
	}

	eligible := repository.EligibleQuery{
		Date:       query.Date,
		Search:     query.Search,
		Limit:      query.PageSize,
		Offset:     (query.Page - 1) * query.PageSize,
		Prioritize: query.Prioritize,
	}
	candidates, total, err := s.candidates.ListEligible(ctx, eligible)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(candidates) > 0 {
		ids := make([]int64, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID)
		}
		monthStart, monthEnd := MonthBounds(query.Date)
		counts, err := s.candidates.MonthCounts(ctx, ids, monthStart, monthEnd)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for i := range candidates {
			candidates[i].MonthCount = counts[candidates[i].ID]
		}
	}

	page := &CandidatePage{Candidates: candidates, Total: total, Page: query.Page, PageSize: query.PageSize}
	if s.cache != nil {
		s.cache.Set(ctx, query, page)
	}
	return page, nil
}

func normalizeCandidateQuery(query CandidateQuery) CandidateQuery {
	query.Date = domain.NormalizeDate(query.Date)
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultCandidatePageSize
	}
	if query.PageSize > maxCandidatePageSize {
		query.PageSize = maxCandidatePageSize
	}
	return query
}

// MonthBounds returns the half-open [start, end) range of the calendar month
// containing the given date, in UTC.
func MonthBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
