package dto

// CandidateResponse is one ranked staff candidate for a target date.
type CandidateResponse struct {
	ID               int64   `json:"id"`
	DNI              string  `json:"dni"`
	Name             string  `json:"name"`
	RoleID           int64   `json:"rol_id"`
	RoleName         string  `json:"rol_name"`
	TotalAssignments int     `json:"total_assignments"`
	LastGuard        *string `json:"last_guard"`
	MonthCount       int     `json:"month_count"`
}

// CandidatePageResponse is one page of candidates plus the eligible total.
type CandidatePageResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}
