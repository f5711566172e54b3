package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// OrgApplication is an application joined with its listing for the
// employer review screen.
type OrgApplication struct {
	ID          snowflake.ID      `json:"id"`
	JobID       snowflake.ID      `gorm:"column:job_id" json:"job_id"`
	JobTitle    string            `gorm:"column:job_title" json:"job_title"`
	ApplicantID string            `gorm:"column:applicant_id" json:"applicant_id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       *string           `json:"phone,omitempty"`
	ResumeURL   *string           `gorm:"column:resume_url" json:"resume_url,omitempty"`
	CoverLetter *string           `gorm:"column:cover_letter" json:"cover_letter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `gorm:"column:created_at" json:"created_at"`
}

// Repository persists applications.
type Repository interface {
	// WithTx returns a copy of the repository bound to the given
	// transaction.
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, app *Application) error
	Update(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id snowflake.ID) (*Application, error)

	// Exists reports whether the applicant already applied to the job.
	Exists(ctx context.Context, jobID snowflake.ID, applicantID string) (bool, error)

	// ListByApplicant returns the seeker's applications, newest first.
	ListByApplicant(ctx context.Context, applicantID string) ([]Application, error)

	// ListByOrg returns applications across the org's listings, newest
	// first, optionally narrowed to one job.
	ListByOrg(ctx context.Context, orgID string, jobID *snowflake.ID) ([]OrgApplication, error)

	// CountByJobs returns per-job application counts.
	CountByJobs(ctx context.Context, jobIDs []snowflake.ID) (map[snowflake.ID]int64, error)

	// CountByOrg returns the total applications across the org's
	// listings.
	CountByOrg(ctx context.Context, orgID string) (int64, error)
}
