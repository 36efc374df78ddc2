package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/guard-duty-service/internal/domain"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

type fakeCandidateRepo struct {
	candidates []domain.Candidate
	total      int
	counts     map[int64]int

	lastEligible   repository.EligibleQuery
	lastMonthStart time.Time
	lastMonthEnd   time.Time
}

func (f *fakeCandidateRepo) ListEligible(ctx context.Context, q repository.EligibleQuery) ([]domain.Candidate, int, error) {
	f.lastEligible = q
	out := make([]domain.Candidate, len(f.candidates))
	copy(out, f.candidates)
	return out, f.total, nil
}

func (f *fakeCandidateRepo) MonthCounts(ctx context.Context, staffIDs []int64, monthStart, monthEnd time.Time) (map[int64]int, error) {
	f.lastMonthStart = monthStart
	f.lastMonthEnd = monthEnd
	return f.counts, nil
}

type fakeCandidateCache struct {
	pages map[string]*CandidatePage
	hits  int
	sets  int
}

func cacheKey(q CandidateQuery) string {
	return q.Date.Format("2006-01-02") + "|" + q.Search
}

func (f *fakeCandidateCache) Get(ctx context.Context, q CandidateQuery) (*CandidatePage, bool) {
	page, ok := f.pages[cacheKey(q)]
	if ok {
		f.hits++
	}
	return page, ok
}

func (f *fakeCandidateCache) Set(ctx context.Context, q CandidateQuery, page *CandidatePage) {
	f.sets++
	f.pages[cacheKey(q)] = page
}

func TestListCandidatesMergesMonthCounts(t *testing.T) {
	repo := &fakeCandidateRepo{
		candidates: []domain.Candidate{
			{ID: 1, Name: "Ana", TotalAssignments: 3},
			{ID: 2, Name: "Borja", TotalAssignments: 5},
		},
		total:  2,
		counts: map[int64]int{1: 2},
	}
	svc := NewCandidateService(repo, nil)

	page, err := svc.ListCandidates(context.Background(), CandidateQuery{Date: day(2024, time.March, 15)})
	require.NoError(t, err)
	require.Len(t, page.Candidates, 2)
	assert.Equal(t, 2, page.Candidates[0].MonthCount)
	assert.Equal(t, 0, page.Candidates[1].MonthCount, "missing staff id means zero duties this month")
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)

	assert.True(t, repo.lastMonthStart.Equal(day(2024, time.March, 1)))
	assert.True(t, repo.lastMonthEnd.Equal(day(2024, time.April, 1)), "month range is half-open")
}

func TestListCandidatesAppliesDefaults(t *testing.T) {
	repo := &fakeCandidateRepo{}
	svc := NewCandidateService(repo, nil)

	_, err := svc.ListCandidates(context.Background(), CandidateQuery{Date: day(2024, time.March, 15)})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastEligible.Limit)
	assert.Equal(t, 0, repo.lastEligible.Offset)

	_, err = svc.ListCandidates(context.Background(), CandidateQuery{
		Date:     day(2024, time.March, 15),
		Page:     3,
		PageSize: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastEligible.Limit, "page size is capped")
	assert.Equal(t, 200, repo.lastEligible.Offset)
}

func TestListCandidatesRequiresDate(t *testing.T) {
	svc := NewCandidateService(&fakeCandidateRepo{}, nil)

	_, err := svc.ListCandidates(context.Background(), CandidateQuery{})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestListCandidatesUsesCache(t *testing.T) {
	repo := &fakeCandidateRepo{
		candidates: []domain.Candidate{{ID: 1, Name: "Ana"}},
		total:      1,
		counts:     map[int64]int{},
	}
	cache := &fakeCandidateCache{pages: map[string]*CandidatePage{}}
	svc := NewCandidateService(repo, cache)
	query := CandidateQuery{Date: day(2024, time.May, 2)}

	first, err := svc.ListCandidates(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.ListCandidates(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Total, second.Total)
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(day(2024, time.December, 31))
	assert.True(t, start.Equal(day(2024, time.December, 1)))
	assert.True(t, end.Equal(day(2025, time.January, 1)))
}
