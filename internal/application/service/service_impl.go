// Package service implements job application operations with an
// enforced review state machine.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appdomain "github.com/smallbiznis/hirewire/internal/application/domain"
	"github.com/smallbiznis/hirewire/internal/authorization"
	"github.com/smallbiznis/hirewire/internal/clock"
	"github.com/smallbiznis/hirewire/internal/identity"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	"github.com/smallbiznis/hirewire/internal/observability/logger"
	"github.com/smallbiznis/hirewire/internal/observability/metrics"
	"github.com/smallbiznis/hirewire/pkg/db"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    appdomain.Repository
	jobs    jobdomain.Repository
	authz   authorization.Service
	metrics *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    appdomain.Repository
	Jobs    jobdomain.Repository
	Authz   authorization.Service
	Metrics *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) appdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("application.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		jobs:    p.Jobs,
		authz:   p.Authz,
		metrics: p.Metrics,
	}
}

// Submit implements domain.Service.
func (s *Service) Submit(ctx context.Context, id identity.Identity, req appdomain.SubmitApplicationRequest) (*appdomain.Application, error) {
	if !id.Authenticated() {
		return nil, identity.ErrNotAuthenticated
	}

	// A reference that resolves to no job reads the same as a closed
	// one: the listing is not accepting applications.
	jobID, err := snowflake.ParseString(strings.TrimSpace(req.JobID))
	if err != nil || jobID == 0 {
		return nil, appdomain.ErrJobNotOpen
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if errors.Is(err, jobdomain.ErrJobNotFound) {
		return nil, appdomain.ErrJobNotOpen
	}
	if err != nil {
		return nil, err
	}
	if job.Status != jobdomain.StatusActive {
		return nil, appdomain.ErrJobNotOpen
	}

	now := s.clock.Now()
	app := &appdomain.Application{
		ID:          s.genID.Generate(),
		JobID:       jobID,
		ApplicantID: id.Subject,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       req.Phone,
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
		Status:      appdomain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The unique (job_id, applicant_id) index is the source of truth
	// for duplicates, so concurrent submissions cannot slip through.
	if err := s.repo.Create(ctx, app); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, appdomain.ErrAlreadyApplied
		}
		return nil, err
	}

	s.metrics.RecordApplicationSubmitted(ctx)
	logger.FromContext(ctx).Info("application submitted",
		zap.String("application_id", app.ID.String()),
		zap.String("job_id", jobID.String()),
	)
	return app, nil
}

// HasApplied implements domain.Service. Anonymous callers have, by
// definition, not applied.
func (s *Service) HasApplied(ctx context.Context, id identity.Identity, jobID snowflake.ID) (bool, error) {
	if !id.Authenticated() {
		return false, nil
	}
	return s.repo.Exists(ctx, jobID, id.Subject)
}

// ListMine implements domain.Service. Anonymous callers own no
// applications, so they get an empty list rather than an error.
func (s *Service) ListMine(ctx context.Context, id identity.Identity) ([]appdomain.MineItem, error) {
	if !id.Authenticated() {
		return []appdomain.MineItem{}, nil
	}

	apps, err := s.repo.ListByApplicant(ctx, id.Subject)
	if err != nil {
		return nil, err
	}

	jobIDs := make([]snowflake.ID, 0, len(apps))
	for _, app := range apps {
		jobIDs = append(jobIDs, app.JobID)
	}
	jobs, err := s.jobs.FindByIDs(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]jobdomain.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	items := make([]appdomain.MineItem, 0, len(apps))
	for _, app := range apps {
		item := appdomain.MineItem{Application: app}
		if job, ok := byID[app.JobID]; ok {
			j := job
			item.Job = &j
		}
		items = append(items, item)
	}
	return items, nil
}

// ListForOrg implements domain.Service. Callers without an active
// organization see an empty review queue, not an error.
func (s *Service) ListForOrg(ctx context.Context, id identity.Identity, req appdomain.ListForOrgRequest) ([]appdomain.OrgApplication, error) {
	if !id.Authenticated() || !id.HasOrg() {
		return []appdomain.OrgApplication{}, nil
	}
	if err := s.authz.Authorize(ctx, id, authorization.ObjectApplication, authorization.ActionApplicationView); err != nil {
		if errors.Is(err, authorization.ErrForbidden) {
			return nil, appdomain.ErrNotAuthorized
		}
		return nil, err
	}
	return s.repo.ListByOrg(ctx, id.OrgID, req.JobID)
}

// UpdateStatus implements domain.Service.
func (s *Service) UpdateStatus(ctx context.Context, id identity.Identity, appID snowflake.ID, req appdomain.UpdateStatusRequest) (*appdomain.Application, error) {
	if err := s.requireOrgAccess(ctx, id, authorization.ActionApplicationUpdateStatus); err != nil {
		return nil, err
	}
	if !appdomain.ValidStatus(req.Status) {
		return nil, appdomain.ErrInvalidStatus
	}

	app, err := s.repo.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.OrgID != id.OrgID {
		return nil, appdomain.ErrNotAuthorized
	}

	if app.Status == req.Status {
		return app, nil
	}
	if !appdomain.CanTransition(app.Status, req.Status) {
		return nil, appdomain.ErrInvalidTransition
	}

	app.Status = req.Status
	app.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, err
	}

	s.metrics.RecordStatusChange(ctx, string(app.Status))
	logger.FromContext(ctx).Info("application status changed",
		zap.String("application_id", app.ID.String()),
		zap.String("status", string(app.Status)),
	)
	return app, nil
}

func (s *Service) requireOrgAccess(ctx context.Context, id identity.Identity, action string) error {
	if !id.Authenticated() {
		return identity.ErrNotAuthenticated
	}
	if !id.HasOrg() {
		return jobdomain.ErrNoActiveOrg
	}
	if err := s.authz.Authorize(ctx, id, authorization.ObjectApplication, action); err != nil {
		if errors.Is(err, authorization.ErrForbidden) {
			return appdomain.ErrNotAuthorized
		}
		return err
	}
	return nil
}
