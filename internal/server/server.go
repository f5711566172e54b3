// Package server wires the HTTP API: public job browsing, seeker
// applications, and the employer dashboard.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/hirewire/internal/application"
	appdomain "github.com/smallbiznis/hirewire/internal/application/domain"
	"github.com/smallbiznis/hirewire/internal/authorization"
	"github.com/smallbiznis/hirewire/internal/config"
	"github.com/smallbiznis/hirewire/internal/identity"
	"github.com/smallbiznis/hirewire/internal/job"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	"github.com/smallbiznis/hirewire/internal/observability"
	obsmiddleware "github.com/smallbiznis/hirewire/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/hirewire/internal/observability/metrics"
	obstracing "github.com/smallbiznis/hirewire/internal/observability/tracing"
	"github.com/smallbiznis/hirewire/internal/plan"
	"github.com/smallbiznis/hirewire/internal/ratelimit"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	identity.Module,
	authorization.Module,
	plan.Module,
	job.Module,
	application.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	ids           *identity.Resolver
	jobSvc        jobdomain.Service
	appSvc        appdomain.Service
	authzSvc      authorization.Service
	obsMetrics    *obsmetrics.Metrics
	submitLimiter *ratelimit.SubmitLimiter
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	IDs           *identity.Resolver
	JobSvc        jobdomain.Service
	AppSvc        appdomain.Service
	AuthzSvc      authorization.Service
	ObsMetrics    *obsmetrics.Metrics      `optional:"true"`
	SubmitLimiter *ratelimit.SubmitLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		genID:  p.GenID,

		ids:           p.IDs,
		jobSvc:        p.JobSvc,
		appSvc:        p.AppSvc,
		authzSvc:      p.AuthzSvc,
		obsMetrics:    p.ObsMetrics,
		submitLimiter: p.SubmitLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Jobs (public browse + employer mutations) --------
	jobs := api.Group("/jobs")
	jobs.GET("", s.ListJobs)
	jobs.GET("/featured", s.GetFeaturedJobs)
	jobs.GET("/search", s.SearchJobs)
	jobs.GET("/:id", s.GetJob)
	jobs.GET("/:id/applied", s.AuthOptional(), s.HasApplied)
	jobs.POST("", s.AuthRequired(), s.OrgRequired(), s.CreateJob)
	jobs.PUT("/:id", s.AuthRequired(), s.OrgRequired(), s.UpdateJob)
	jobs.POST("/:id/close", s.AuthRequired(), s.OrgRequired(), s.CloseJob)

	// -------- Applications (seeker side) --------
	apps := api.Group("/applications")
	apps.POST("", s.AuthRequired(), s.SubmitRateLimit(), s.SubmitApplication)
	apps.GET("/mine", s.AuthOptional(), s.ListMyApplications)
	apps.PATCH("/:id/status", s.AuthRequired(), s.OrgRequired(), s.UpdateApplicationStatus)

	// -------- Employer dashboard --------
	// Read endpoints degrade to empty results for callers without an
	// active organization; the services make that call.
	employer := api.Group("/employer", s.AuthOptional())
	employer.GET("/jobs", s.ListOrgJobs)
	employer.GET("/stats", s.GetOrgStats)
	employer.GET("/applications", s.ListOrgApplications)
}
