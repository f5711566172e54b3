// Package service implements job listing operations with server-side
// plan enforcement.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/hirewire/internal/authorization"
	"github.com/smallbiznis/hirewire/internal/clock"
	"github.com/smallbiznis/hirewire/internal/identity"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	"github.com/smallbiznis/hirewire/internal/observability/logger"
	"github.com/smallbiznis/hirewire/internal/observability/metrics"
	"github.com/smallbiznis/hirewire/internal/plan"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    jobdomain.Repository
	apps    jobdomain.ApplicationCounter
	authz   authorization.Service
	policy  *plan.Policy
	plans   plan.Resolver
	metrics *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    jobdomain.Repository
	Apps    jobdomain.ApplicationCounter
	Authz   authorization.Service
	Policy  *plan.Policy
	Plans   plan.Resolver
	Metrics *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) jobdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("job.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		apps:    p.Apps,
		authz:   p.Authz,
		policy:  p.Policy,
		plans:   p.Plans,
		metrics: p.Metrics,
	}
}

// CreateJob implements domain.Service.
func (s *Service) CreateJob(ctx context.Context, id identity.Identity, req jobdomain.CreateJobRequest) (*jobdomain.Job, error) {
	if err := s.requireOrgAccess(ctx, id, authorization.ActionJobCreate, jobdomain.ErrNotOrgMember); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = jobdomain.StatusDraft
	}
	if !jobdomain.ValidStatus(status) || status == jobdomain.StatusClosed {
		return nil, jobdomain.ErrInvalidJobStatus
	}
	if !jobdomain.ValidType(req.Type) {
		return nil, jobdomain.ErrInvalidJobType
	}

	tier := s.resolveTier(ctx, id)
	if req.Featured && !s.policy.FeaturedAllowed(tier) {
		return nil, jobdomain.ErrFeaturedNotAllowed
	}

	now := s.clock.Now()
	jobID := s.genID.Generate()
	job := &jobdomain.Job{
		ID:             jobID,
		OrgID:          id.OrgID,
		Title:          strings.TrimSpace(req.Title),
		Slug:           makeSlug(req.Title, jobID),
		Company:        strings.TrimSpace(req.Company),
		Location:       strings.TrimSpace(req.Location),
		Type:           req.Type,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		SalaryCurrency: req.SalaryCurrency,
		Description:    req.Description,
		Requirements:   req.Requirements,
		Featured:       req.Featured,
		Status:         status,
		PostedBy:       id.Subject,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if job.Status == jobdomain.StatusActive {
			if err := s.checkActiveQuota(ctx, repo, id.OrgID, tier); err != nil {
				return err
			}
		}
		return repo.Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordJobCreated(ctx, string(tier), string(job.Status))
	logger.FromContext(ctx).Info("job created",
		zap.String("job_id", job.ID.String()),
		zap.String("org_id", job.OrgID),
		zap.String("status", string(job.Status)),
	)
	return job, nil
}

// UpdateJob implements domain.Service.
func (s *Service) UpdateJob(ctx context.Context, id identity.Identity, jobID snowflake.ID, req jobdomain.UpdateJobRequest) (*jobdomain.Job, error) {
	if err := s.requireOrgAccess(ctx, id, authorization.ActionJobUpdate, jobdomain.ErrNotOrgMember); err != nil {
		return nil, err
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OrgID != id.OrgID {
		return nil, jobdomain.ErrNotAuthorized
	}

	wasActive := job.Status == jobdomain.StatusActive
	wasFeatured := job.Featured

	applyUpdate(job, req)

	if !jobdomain.ValidType(job.Type) {
		return nil, jobdomain.ErrInvalidJobType
	}
	if !jobdomain.ValidStatus(job.Status) {
		return nil, jobdomain.ErrInvalidJobStatus
	}

	tier := s.resolveTier(ctx, id)
	if job.Featured && !wasFeatured && !s.policy.FeaturedAllowed(tier) {
		return nil, jobdomain.ErrFeaturedNotAllowed
	}

	job.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		// A draft or closed listing flipping to active counts against
		// the plan quota exactly like a fresh posting.
		if job.Status == jobdomain.StatusActive && !wasActive {
			if err := s.checkActiveQuota(ctx, repo, id.OrgID, tier); err != nil {
				return err
			}
		}
		return repo.Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// CloseJob implements domain.Service.
func (s *Service) CloseJob(ctx context.Context, id identity.Identity, jobID snowflake.ID) (*jobdomain.Job, error) {
	if err := s.requireOrgAccess(ctx, id, authorization.ActionJobClose, jobdomain.ErrAdminOnlyClose); err != nil {
		return nil, err
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OrgID != id.OrgID {
		return nil, jobdomain.ErrNotAuthorized
	}

	if job.Status == jobdomain.StatusClosed {
		return job, nil
	}

	job.Status = jobdomain.StatusClosed
	job.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	s.metrics.RecordJobClosed(ctx)
	logger.FromContext(ctx).Info("job closed",
		zap.String("job_id", job.ID.String()),
		zap.String("org_id", job.OrgID),
	)
	return job, nil
}

// GetJob implements domain.Service.
func (s *Service) GetJob(ctx context.Context, jobID snowflake.ID) (*jobdomain.Job, error) {
	return s.repo.FindByID(ctx, jobID)
}

// GetFeaturedJobs implements domain.Service.
func (s *Service) GetFeaturedJobs(ctx context.Context) ([]jobdomain.Job, error) {
	return s.repo.ListFeatured(ctx, 6)
}

// SearchJobs implements domain.Service.
func (s *Service) SearchJobs(ctx context.Context, req jobdomain.SearchJobsRequest) ([]jobdomain.Job, error) {
	if req.Type != "" && !jobdomain.ValidType(req.Type) {
		return nil, jobdomain.ErrInvalidJobType
	}
	return s.repo.Search(ctx, req.Query, jobdomain.ListFilter{
		Type:     req.Type,
		Location: req.Location,
	}, 50)
}

// ListJobs implements domain.Service.
func (s *Service) ListJobs(ctx context.Context, req jobdomain.ListJobsRequest) (*jobdomain.ListJobsResponse, error) {
	if req.Type != "" && !jobdomain.ValidType(req.Type) {
		return nil, jobdomain.ErrInvalidJobType
	}

	jobs, info, err := s.repo.ListActive(ctx, jobdomain.ListFilter{
		Type:     req.Type,
		Location: req.Location,
	}, req.Pagination)
	if err != nil {
		return nil, err
	}

	return &jobdomain.ListJobsResponse{Jobs: jobs, PageInfo: info}, nil
}

// ListOrgJobs implements domain.Service. Without an active
// organization there is nothing to list, so the dashboard gets an
// empty slice rather than an error.
func (s *Service) ListOrgJobs(ctx context.Context, id identity.Identity) ([]jobdomain.OrgJob, error) {
	if !id.Authenticated() || !id.HasOrg() {
		return []jobdomain.OrgJob{}, nil
	}

	jobs, err := s.repo.ListByOrg(ctx, id.OrgID, jobdomain.ListFilter{})
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	counts, err := s.apps.CountByJobs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]jobdomain.OrgJob, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, jobdomain.OrgJob{
			Job:              job,
			ApplicationCount: counts[job.ID],
		})
	}
	return items, nil
}

// GetOrgStats implements domain.Service. Anonymous and org-less
// callers get zeroed stats.
func (s *Service) GetOrgStats(ctx context.Context, id identity.Identity) (*jobdomain.OrgStats, error) {
	if !id.Authenticated() || !id.HasOrg() {
		return &jobdomain.OrgStats{}, nil
	}

	jobs, err := s.repo.ListByOrg(ctx, id.OrgID, jobdomain.ListFilter{})
	if err != nil {
		return nil, err
	}

	stats := &jobdomain.OrgStats{TotalJobs: int64(len(jobs))}
	for _, job := range jobs {
		switch job.Status {
		case jobdomain.StatusActive:
			stats.ActiveJobs++
		case jobdomain.StatusDraft:
			stats.DraftJobs++
		}
	}

	stats.ApplicationCount, err = s.apps.CountByOrg(ctx, id.OrgID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// requireOrgAccess runs the shared auth gate for employer mutations and
// maps a permission denial to the operation's own error.
func (s *Service) requireOrgAccess(ctx context.Context, id identity.Identity, action string, denied error) error {
	if !id.Authenticated() {
		return identity.ErrNotAuthenticated
	}
	if !id.HasOrg() {
		return jobdomain.ErrNoActiveOrg
	}
	if err := s.authz.Authorize(ctx, id, authorization.ObjectJob, action); err != nil {
		if errors.Is(err, authorization.ErrForbidden) {
			return denied
		}
		return err
	}
	return nil
}

func (s *Service) resolveTier(ctx context.Context, id identity.Identity) plan.Tier {
	tier, err := s.plans.Resolve(ctx, id.OrgID)
	if err != nil {
		// Fall back to the verified token claim rather than failing
		// the write when the billing provider is unreachable.
		s.log.Warn("plan lookup failed, using token claim",
			zap.String("org_id", id.OrgID),
			zap.Error(err),
		)
		return plan.ParseTier(id.Plan)
	}
	return tier
}

func (s *Service) checkActiveQuota(ctx context.Context, repo jobdomain.Repository, orgID string, tier plan.Tier) error {
	active, err := repo.CountActive(ctx, orgID, true)
	if err != nil {
		return err
	}
	if !s.policy.CanActivate(tier, active) {
		s.metrics.RecordPlanLimitRejection(ctx, string(tier))
		return &jobdomain.LimitError{Limit: s.policy.For(tier).MaxActiveJobs}
	}
	return nil
}

func applyUpdate(job *jobdomain.Job, req jobdomain.UpdateJobRequest) {
	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
		job.Slug = makeSlug(job.Title, job.ID)
	}
	if req.Company != nil {
		job.Company = strings.TrimSpace(*req.Company)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.Type != nil {
		job.Type = *req.Type
	}
	if req.SalaryMin != nil {
		job.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = req.SalaryMax
	}
	if req.SalaryCurrency != nil {
		job.SalaryCurrency = req.SalaryCurrency
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Requirements != nil {
		job.Requirements = *req.Requirements
	}
	if req.Featured != nil {
		job.Featured = *req.Featured
	}
	if req.Status != nil {
		job.Status = *req.Status
	}
}

func makeSlug(title string, id snowflake.ID) string {
	return fmt.Sprintf("%s-%s", slug.Make(title), strings.ToLower(id.Base36()))
}
