// Package repository provides the gorm-backed job store.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smallbiznis/hirewire/internal/job/domain"
	"github.com/smallbiznis/hirewire/pkg/db"
	"github.com/smallbiznis/hirewire/pkg/db/pagination"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(gdb *gorm.DB) domain.Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *repository) Update(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []snowflake.ID) ([]domain.Job, error) {
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}
	var jobs []domain.Job
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) CountActive(ctx context.Context, orgID string, forUpdate bool) (int64, error) {
	q := `SELECT COUNT(*) FROM jobs WHERE org_id = ? AND status = ?`
	if forUpdate && db.SupportsRowLocking(r.db) {
		// Lock the org's active rows so concurrent activations
		// serialize against the plan limit check.
		q = `SELECT COUNT(*) FROM (SELECT id FROM jobs WHERE org_id = ? AND status = ? FOR UPDATE) locked`
	}

	var count int64
	err := r.db.WithContext(ctx).Raw(q, orgID, domain.StatusActive).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ListFeatured(ctx context.Context, limit int) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND featured = ?", domain.StatusActive, true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) Search(ctx context.Context, query string, filter domain.ListFilter, limit int) ([]domain.Job, error) {
	query = strings.TrimSpace(query)

	base := r.db.WithContext(ctx).Where("status = ?", domain.StatusActive)
	if filter.Type != "" {
		base = base.Where("type = ?", filter.Type)
	}
	if filter.Location != "" {
		base = base.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}

	var jobs []domain.Job
	var err error
	switch {
	case query == "":
		// No query degrades to a filtered recency listing.
		err = base.Order("created_at DESC, id DESC").Limit(limit).Find(&jobs).Error
	case r.db.Dialector.Name() == "postgres":
		err = base.
			Where("to_tsvector('english', title || ' ' || company || ' ' || description) @@ websearch_to_tsquery('english', ?)", query).
			Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:                "ts_rank(to_tsvector('english', title || ' ' || company || ' ' || description), websearch_to_tsquery('english', ?)) DESC, created_at DESC",
				Vars:               []interface{}{query},
				WithoutParentheses: true,
			}}).
			Limit(limit).
			Find(&jobs).Error
	default:
		pattern := "%" + strings.ToLower(query) + "%"
		err = base.
			Where("LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern).
			Order("created_at DESC, id DESC").
			Limit(limit).
			Find(&jobs).Error
	}
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) ListActive(ctx context.Context, filter domain.ListFilter, p pagination.Pagination) ([]domain.Job, pagination.PageInfo, error) {
	pageSize := p.Normalize()

	q := r.db.WithContext(ctx).Where("status = ?", domain.StatusActive)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}

	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, pagination.PageInfo{}, pagination.ErrInvalidToken
		}
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursorID)
	}

	var jobs []domain.Job
	err := q.Order("created_at DESC, id DESC").Limit(pageSize + 1).Find(&jobs).Error
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	info := pagination.PageInfo{}
	if len(jobs) > pageSize {
		jobs = jobs[:pageSize]
		last := jobs[len(jobs)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt,
		})
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		info.HasMore = true
		info.NextPageToken = token
	}
	return jobs, info, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID string, filter domain.ListFilter) ([]domain.Job, error) {
	q := r.db.WithContext(ctx).Where("org_id = ?", orgID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var jobs []domain.Job
	err := q.Order("created_at DESC, id DESC").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
