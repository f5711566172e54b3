package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appdomain "github.com/smallbiznis/hirewire/internal/application/domain"
	apprepository "github.com/smallbiznis/hirewire/internal/application/repository"
	"github.com/smallbiznis/hirewire/internal/authorization"
	"github.com/smallbiznis/hirewire/internal/clock"
	"github.com/smallbiznis/hirewire/internal/identity"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	jobrepository "github.com/smallbiznis/hirewire/internal/job/repository"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  appdomain.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&jobdomain.Job{}, &appdomain.Application{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  apprepository.NewRepository(db),
		Jobs:  jobrepository.NewRepository(db),
		Authz: authz,
	})

	return &fixture{db: db, node: node, svc: svc}
}

func (f *fixture) insertJob(t *testing.T, orgID string, status jobdomain.JobStatus) *jobdomain.Job {
	t.Helper()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	job := &jobdomain.Job{
		ID:          f.node.Generate(),
		OrgID:       orgID,
		Title:       "Backend Engineer",
		Slug:        "backend-engineer",
		Company:     "Acme",
		Location:    "Remote",
		Type:        jobdomain.TypeFullTime,
		Description: "Build the backend.",
		Status:      status,
		PostedBy:    "user_employer",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.db.Create(job).Error)
	return job
}

func seeker(sub string) identity.Identity {
	return identity.Identity{Subject: sub}
}

func reviewer() identity.Identity {
	return identity.Identity{Subject: "user_reviewer", OrgID: "org_acme", OrgRole: identity.RoleMember}
}

func submitRequest(jobID snowflake.ID) appdomain.SubmitApplicationRequest {
	return appdomain.SubmitApplicationRequest{
		JobID: jobID.String(),
		Name:  "Jane Doe",
		Email: "jane@example.com",
	}
}

func TestSubmitApplication(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_acme", jobdomain.StatusActive)

	app, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.NoError(t, err)
	require.Equal(t, appdomain.StatusPending, app.Status)
	require.Equal(t, "user_jane", app.ApplicantID)
	require.Equal(t, job.ID, app.JobID)
}

func TestSubmitRequiresAuth(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_acme", jobdomain.StatusActive)

	_, err := f.svc.Submit(context.Background(), identity.Identity{}, submitRequest(job.ID))
	require.ErrorIs(t, err, identity.ErrNotAuthenticated)
}

func TestSubmitDuplicateRejected(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_acme", jobdomain.StatusActive)

	_, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.ErrorIs(t, err, appdomain.ErrAlreadyApplied)
	require.Equal(t, "Already applied to this job", err.Error())

	// A different seeker can still apply.
	_, err = f.svc.Submit(context.Background(), seeker("user_john"), submitRequest(job.ID))
	require.NoError(t, err)
}

func TestSubmitToInactiveJobRejected(t *testing.T) {
	f := setup(t)

	draft := f.insertJob(t, "org_acme", jobdomain.StatusDraft)
	_, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(draft.ID))
	require.ErrorIs(t, err, appdomain.ErrJobNotOpen)
	require.Equal(t, "Job is no longer accepting applications", err.Error())

	closed := f.insertJob(t, "org_acme", jobdomain.StatusClosed)
	_, err = f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(closed.ID))
	require.ErrorIs(t, err, appdomain.ErrJobNotOpen)
}

func TestSubmitToMissingJobRejected(t *testing.T) {
	f := setup(t)

	// A missing job reads the same as a closed one.
	_, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(f.node.Generate()))
	require.ErrorIs(t, err, appdomain.ErrJobNotOpen)
	require.Equal(t, "Job is no longer accepting applications", err.Error())

	_, err = f.svc.Submit(context.Background(), seeker("user_jane"), appdomain.SubmitApplicationRequest{
		JobID: "not-a-job",
		Name:  "Jane Doe",
		Email: "jane@example.com",
	})
	require.ErrorIs(t, err, appdomain.ErrJobNotOpen)
}

func TestHasApplied(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_acme", jobdomain.StatusActive)

	applied, err := f.svc.HasApplied(context.Background(), identity.Identity{}, job.ID)
	require.NoError(t, err)
	require.False(t, applied)

	applied, err = f.svc.HasApplied(context.Background(), seeker("user_jane"), job.ID)
	require.NoError(t, err)
	require.False(t, applied)

	_, err = f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.NoError(t, err)

	applied, err = f.svc.HasApplied(context.Background(), seeker("user_jane"), job.ID)
	require.NoError(t, err)
	require.True(t, applied)
}

func TestListMineIncludesJob(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_acme", jobdomain.StatusActive)

	_, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.NoError(t, err)

	items, err := f.svc.ListMine(context.Background(), seeker("user_jane"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Job)
	require.Equal(t, job.ID, items[0].Job.ID)

	items, err = f.svc.ListMine(context.Background(), seeker("user_john"))
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestListMineAnonymousIsEmpty(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_acme", jobdomain.StatusActive)

	_, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.NoError(t, err)

	items, err := f.svc.ListMine(context.Background(), identity.Identity{})
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestStatusTransitions(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_acme", jobdomain.StatusActive)

	app, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.NoError(t, err)

	// pending -> interview skips a step and must fail.
	_, err = f.svc.UpdateStatus(context.Background(), reviewer(), app.ID, appdomain.UpdateStatusRequest{Status: appdomain.StatusInterview})
	require.ErrorIs(t, err, appdomain.ErrInvalidTransition)

	step, err := f.svc.UpdateStatus(context.Background(), reviewer(), app.ID, appdomain.UpdateStatusRequest{Status: appdomain.StatusReviewed})
	require.NoError(t, err)
	require.Equal(t, appdomain.StatusReviewed, step.Status)

	step, err = f.svc.UpdateStatus(context.Background(), reviewer(), app.ID, appdomain.UpdateStatusRequest{Status: appdomain.StatusInterview})
	require.NoError(t, err)
	require.Equal(t, appdomain.StatusInterview, step.Status)

	step, err = f.svc.UpdateStatus(context.Background(), reviewer(), app.ID, appdomain.UpdateStatusRequest{Status: appdomain.StatusRejected})
	require.NoError(t, err)
	require.Equal(t, appdomain.StatusRejected, step.Status)

	// Rejected applications can be reopened.
	step, err = f.svc.UpdateStatus(context.Background(), reviewer(), app.ID, appdomain.UpdateStatusRequest{Status: appdomain.StatusPending})
	require.NoError(t, err)
	require.Equal(t, appdomain.StatusPending, step.Status)
}

func TestUpdateStatusForeignOrgRejected(t *testing.T) {
	f := setup(t)
	job := f.insertJob(t, "org_other", jobdomain.StatusActive)

	app, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(job.ID))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), reviewer(), app.ID, appdomain.UpdateStatusRequest{Status: appdomain.StatusReviewed})
	require.ErrorIs(t, err, appdomain.ErrNotAuthorized)
}

func TestListForOrg(t *testing.T) {
	f := setup(t)
	jobA := f.insertJob(t, "org_acme", jobdomain.StatusActive)
	jobB := f.insertJob(t, "org_acme", jobdomain.StatusActive)
	foreign := f.insertJob(t, "org_other", jobdomain.StatusActive)

	_, err := f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(jobA.ID))
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), seeker("user_john"), submitRequest(jobA.ID))
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(jobB.ID))
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), seeker("user_jane"), submitRequest(foreign.ID))
	require.NoError(t, err)

	items, err := f.svc.ListForOrg(context.Background(), reviewer(), appdomain.ListForOrgRequest{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		require.NotEmpty(t, item.JobTitle)
	}

	items, err = f.svc.ListForOrg(context.Background(), reviewer(), appdomain.ListForOrgRequest{JobID: &jobA.ID})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// No active org degrades to an empty queue rather than an error.
	items, err = f.svc.ListForOrg(context.Background(), identity.Identity{Subject: "user_x"}, appdomain.ListForOrgRequest{})
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = f.svc.ListForOrg(context.Background(), identity.Identity{}, appdomain.ListForOrgRequest{})
	require.NoError(t, err)
	require.Empty(t, items)
}
