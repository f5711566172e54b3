package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/smallbiznis/hirewire/internal/identity"
	"github.com/smallbiznis/hirewire/pkg/db/pagination"
)

// CreateJobRequest carries the fields an employer submits for a new
// listing. Slug is derived server side.
type CreateJobRequest struct {
	Title          string    `json:"title" binding:"required"`
	Company        string    `json:"company" binding:"required"`
	Location       string    `json:"location" binding:"required"`
	Type           JobType   `json:"type" binding:"required"`
	SalaryMin      *int64    `json:"salary_min"`
	SalaryMax      *int64    `json:"salary_max"`
	SalaryCurrency *string   `json:"salary_currency"`
	Description    string    `json:"description" binding:"required"`
	Requirements   []string  `json:"requirements"`
	Featured       bool      `json:"featured"`
	Status         JobStatus `json:"status"`
}

// UpdateJobRequest carries a partial update. Nil fields are left
// unchanged.
type UpdateJobRequest struct {
	Title          *string    `json:"title"`
	Company        *string    `json:"company"`
	Location       *string    `json:"location"`
	Type           *JobType   `json:"type"`
	SalaryMin      *int64     `json:"salary_min"`
	SalaryMax      *int64     `json:"salary_max"`
	SalaryCurrency *string    `json:"salary_currency"`
	Description    *string    `json:"description"`
	Requirements   *[]string  `json:"requirements"`
	Featured       *bool      `json:"featured"`
	Status         *JobStatus `json:"status"`
}

// SearchJobsRequest is a free-text search with optional equality
// filters. An empty query returns a filtered recency listing.
type SearchJobsRequest struct {
	Query    string
	Type     JobType
	Location string
}

// ListJobsRequest selects a page of active listings for browsing.
type ListJobsRequest struct {
	Type       JobType
	Location   string
	Pagination pagination.Pagination
}

// ListJobsResponse is one page of active listings.
type ListJobsResponse struct {
	Jobs     []Job               `json:"jobs"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// OrgJob is a listing enriched with its application count for the
// employer dashboard.
type OrgJob struct {
	Job
	ApplicationCount int64 `json:"application_count"`
}

// OrgStats summarizes an org's listings and applicant volume.
type OrgStats struct {
	TotalJobs        int64 `json:"total_jobs"`
	ActiveJobs       int64 `json:"active_jobs"`
	DraftJobs        int64 `json:"draft_jobs"`
	ApplicationCount int64 `json:"application_count"`
}

// Service implements job listing operations. Callers resolve the
// acting identity from the request and pass it explicitly; the service
// never consults ambient auth state.
type Service interface {
	CreateJob(ctx context.Context, id identity.Identity, req CreateJobRequest) (*Job, error)
	UpdateJob(ctx context.Context, id identity.Identity, jobID snowflake.ID, req UpdateJobRequest) (*Job, error)
	CloseJob(ctx context.Context, id identity.Identity, jobID snowflake.ID) (*Job, error)

	GetJob(ctx context.Context, jobID snowflake.ID) (*Job, error)
	GetFeaturedJobs(ctx context.Context) ([]Job, error)
	SearchJobs(ctx context.Context, req SearchJobsRequest) ([]Job, error)
	ListJobs(ctx context.Context, req ListJobsRequest) (*ListJobsResponse, error)

	ListOrgJobs(ctx context.Context, id identity.Identity) ([]OrgJob, error)
	GetOrgStats(ctx context.Context, id identity.Identity) (*OrgStats, error)
}
