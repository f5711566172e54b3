package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/hirewire/pkg/db/pagination"
)

// ListFilter narrows browse and employer listings.
type ListFilter struct {
	Type     JobType
	Location string
	Status   JobStatus
}

// Repository persists job listings.
type Repository interface {
	// WithTx returns a copy of the repository bound to the given
	// transaction.
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id snowflake.ID) (*Job, error)
	FindByIDs(ctx context.Context, ids []snowflake.ID) ([]Job, error)

	// CountActive returns the number of active listings for an org.
	// When forUpdate is true and the dialect supports it, the counted
	// rows are locked until the surrounding transaction ends.
	CountActive(ctx context.Context, orgID string, forUpdate bool) (int64, error)

	// ListFeatured returns up to limit featured active listings,
	// newest first.
	ListFeatured(ctx context.Context, limit int) ([]Job, error)

	// Search matches active listings against a free-text query plus
	// optional equality filters. An empty query degrades to a filtered
	// recency listing.
	Search(ctx context.Context, query string, filter ListFilter, limit int) ([]Job, error)

	// ListActive returns a cursor-paginated page of active listings,
	// newest first.
	ListActive(ctx context.Context, filter ListFilter, p pagination.Pagination) ([]Job, pagination.PageInfo, error)

	// ListByOrg returns every listing owned by the org, newest first.
	ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Job, error)
}

// ApplicationCounter exposes per-job application counts without
// coupling this package to the applications domain.
type ApplicationCounter interface {
	CountByJobs(ctx context.Context, jobIDs []snowflake.ID) (map[snowflake.ID]int64, error)
	CountByOrg(ctx context.Context, orgID string) (int64, error)
}
