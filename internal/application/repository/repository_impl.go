// Package repository provides the gorm-backed application store.
package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/hirewire/internal/application/domain"
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

func (r *repository) Create(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *repository) Update(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Save(app).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) Exists(ctx context.Context, jobID snowflake.ID, applicantID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM applications WHERE job_id = ? AND applicant_id = ?`,
		jobID, applicantID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC, id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID string, jobID *snowflake.ID) ([]domain.OrgApplication, error) {
	q := `SELECT a.id, a.job_id, j.title AS job_title, a.applicant_id, a.name, a.email,
	             a.phone, a.resume_url, a.cover_letter, a.status, a.created_at
	      FROM applications a
	      JOIN jobs j ON j.id = a.job_id
	      WHERE j.org_id = ?`
	args := []interface{}{orgID}
	if jobID != nil {
		q += ` AND a.job_id = ?`
		args = append(args, *jobID)
	}
	q += ` ORDER BY a.created_at DESC, a.id DESC`

	var items []domain.OrgApplication
	err := r.db.WithContext(ctx).Raw(q, args...).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CountByJobs(ctx context.Context, jobIDs []snowflake.ID) (map[snowflake.ID]int64, error) {
	counts := make(map[snowflake.ID]int64, len(jobIDs))
	if len(jobIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		JobID snowflake.ID `gorm:"column:job_id"`
		Count int64        `gorm:"column:count"`
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT job_id, COUNT(*) AS count
		 FROM applications
		 WHERE job_id IN ?
		 GROUP BY job_id`,
		jobIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.JobID] = row.Count
	}
	return counts, nil
}

func (r *repository) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE j.org_id = ?`,
		orgID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
