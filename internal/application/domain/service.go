package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/smallbiznis/hirewire/internal/identity"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
)

// SubmitApplicationRequest carries a job seeker's submission.
type SubmitApplicationRequest struct {
	JobID       string  `json:"job_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	ResumeURL   *string `json:"resume_url"`
	CoverLetter *string `json:"cover_letter"`
}

// MineItem pairs an application with its listing for the seeker's
// dashboard. Job is nil when the listing no longer exists.
type MineItem struct {
	Application Application    `json:"application"`
	Job         *jobdomain.Job `json:"job,omitempty"`
}

// UpdateStatusRequest moves an application through the review pipeline.
type UpdateStatusRequest struct {
	Status ApplicationStatus `json:"status" binding:"required"`
}

// ListForOrgRequest narrows the employer review list.
type ListForOrgRequest struct {
	JobID *snowflake.ID
}

// Service implements application operations. The acting identity is
// passed explicitly by the transport layer.
type Service interface {
	Submit(ctx context.Context, id identity.Identity, req SubmitApplicationRequest) (*Application, error)
	HasApplied(ctx context.Context, id identity.Identity, jobID snowflake.ID) (bool, error)
	ListMine(ctx context.Context, id identity.Identity) ([]MineItem, error)

	ListForOrg(ctx context.Context, id identity.Identity, req ListForOrgRequest) ([]OrgApplication, error)
	UpdateStatus(ctx context.Context, id identity.Identity, appID snowflake.ID, req UpdateStatusRequest) (*Application, error)
}
