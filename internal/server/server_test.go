package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appdomain "github.com/smallbiznis/hirewire/internal/application/domain"
	apprepository "github.com/smallbiznis/hirewire/internal/application/repository"
	appservice "github.com/smallbiznis/hirewire/internal/application/service"
	"github.com/smallbiznis/hirewire/internal/authorization"
	"github.com/smallbiznis/hirewire/internal/clock"
	"github.com/smallbiznis/hirewire/internal/config"
	"github.com/smallbiznis/hirewire/internal/identity"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	jobrepository "github.com/smallbiznis/hirewire/internal/job/repository"
	jobservice "github.com/smallbiznis/hirewire/internal/job/service"
	"github.com/smallbiznis/hirewire/internal/plan"
)

type testHarness struct {
	engine *gin.Engine
	ids    *identity.Resolver
}

func newHarness(t *testing.T, tier plan.Tier) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&jobdomain.Job{}, &appdomain.Application{}))

	cfg := config.Config{AuthJWTSecret: "test-secret", HTTPAddr: ":0"}
	log := zap.NewNop()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	jobRepo := jobrepository.NewRepository(db)
	appRepo := apprepository.NewRepository(db)

	jobSvc := jobservice.NewService(jobservice.ServiceParam{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  clk,
		Repo:   jobRepo,
		Apps:   appRepo,
		Authz:  authz,
		Policy: plan.NewPolicy(cfg, log),
		Plans:  plan.Static{Tier: tier},
	})
	appSvc := appservice.NewService(appservice.ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  appRepo,
		Jobs:  jobRepo,
		Authz: authz,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	ids := identity.NewResolver(cfg)
	NewServer(ServerParams{
		Gin:      engine,
		Cfg:      cfg,
		DB:       db,
		GenID:    node,
		IDs:      ids,
		JobSvc:   jobSvc,
		AppSvc:   appSvc,
		AuthzSvc: authz,
	})

	return &testHarness{engine: engine, ids: ids}
}

func (h *testHarness) token(t *testing.T, id identity.Identity) string {
	t.Helper()
	token, err := h.ids.Mint(id, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (h *testHarness) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp struct {
		Data []interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func employerToken(t *testing.T, h *testHarness, role identity.Role) string {
	return h.token(t, identity.Identity{
		Subject: "user_employer",
		OrgID:   "org_acme",
		OrgRole: role,
	})
}

func TestCreateJobRequiresToken(t *testing.T) {
	h := newHarness(t, plan.TierStarter)

	w := h.do(t, http.MethodPost, "/api/v1/jobs", "", gin.H{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateJobRejectsInvalidToken(t *testing.T) {
	h := newHarness(t, plan.TierStarter)

	w := h.do(t, http.MethodPost, "/api/v1/jobs", "not-a-token", gin.H{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateJobRequiresOrg(t *testing.T) {
	h := newHarness(t, plan.TierStarter)
	token := h.token(t, identity.Identity{Subject: "user_solo"})

	w := h.do(t, http.MethodPost, "/api/v1/jobs", token, gin.H{"title": "x"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "No active organization")
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t, plan.TierStarter)
	member := employerToken(t, h, identity.RoleMember)
	admin := employerToken(t, h, identity.RoleAdmin)

	// Create an active listing.
	w := h.do(t, http.MethodPost, "/api/v1/jobs", member, gin.H{
		"title":       "Backend Engineer",
		"company":     "Acme",
		"location":    "Remote",
		"type":        "full-time",
		"description": "Build the backend.",
		"status":      "active",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	jobID := decodeData(t, w)["id"].(string)

	// Publicly visible.
	w = h.do(t, http.MethodGet, "/api/v1/jobs/"+jobID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Members cannot close.
	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/close", jobID), member, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Only org admins can close job listings")

	// Admins can.
	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/close", jobID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "closed", decodeData(t, w)["status"].(string))
}

func TestStarterLimitOverHTTP(t *testing.T) {
	h := newHarness(t, plan.TierStarter)
	member := employerToken(t, h, identity.RoleMember)

	body := gin.H{
		"title":       "Backend Engineer",
		"company":     "Acme",
		"location":    "Remote",
		"type":        "full-time",
		"description": "Build the backend.",
		"status":      "active",
	}
	for i := 0; i < 3; i++ {
		w := h.do(t, http.MethodPost, "/api/v1/jobs", member, body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := h.do(t, http.MethodPost, "/api/v1/jobs", member, body)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "STARTER_LIMIT")
}

func TestApplicationFlowOverHTTP(t *testing.T) {
	h := newHarness(t, plan.TierStarter)
	member := employerToken(t, h, identity.RoleMember)
	seeker := h.token(t, identity.Identity{Subject: "user_jane"})

	w := h.do(t, http.MethodPost, "/api/v1/jobs", member, gin.H{
		"title":       "Backend Engineer",
		"company":     "Acme",
		"location":    "Remote",
		"type":        "full-time",
		"description": "Build the backend.",
		"status":      "active",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	jobID := decodeData(t, w)["id"].(string)

	// Applied flag starts false.
	w = h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/applied", jobID), seeker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decodeData(t, w)["applied"])

	// Submit.
	w = h.do(t, http.MethodPost, "/api/v1/applications", seeker, gin.H{
		"job_id": jobID,
		"name":   "Jane Doe",
		"email":  "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	appID := decodeData(t, w)["id"].(string)

	// Duplicate submission conflicts.
	w = h.do(t, http.MethodPost, "/api/v1/applications", seeker, gin.H{
		"job_id": jobID,
		"name":   "Jane Doe",
		"email":  "jane@example.com",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "Already applied to this job")

	// Applied flag flips.
	w = h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/applied", jobID), seeker, nil)
	require.Equal(t, true, decodeData(t, w)["applied"])

	// Seeker dashboard.
	w = h.do(t, http.MethodGet, "/api/v1/applications/mine", seeker, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Employer reviews.
	w = h.do(t, http.MethodGet, "/api/v1/employer/applications", member, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/applications/%s/status", appID), member, gin.H{"status": "reviewed"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "reviewed", decodeData(t, w)["status"].(string))

	// Stats reflect the application.
	w = h.do(t, http.MethodGet, "/api/v1/employer/stats", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeData(t, w)
	require.EqualValues(t, 1, stats["application_count"])
	require.EqualValues(t, 1, stats["active_jobs"])
}

func TestPublicBrowseEndpoints(t *testing.T) {
	h := newHarness(t, plan.TierPro)
	member := employerToken(t, h, identity.RoleMember)

	for i := 0; i < 3; i++ {
		w := h.do(t, http.MethodPost, "/api/v1/jobs", member, gin.H{
			"title":       fmt.Sprintf("Role %d", i),
			"company":     "Acme",
			"location":    "Remote",
			"type":        "full-time",
			"description": "Interesting work.",
			"status":      "active",
			"featured":    i == 0,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := h.do(t, http.MethodGet, "/api/v1/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/jobs/featured", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/jobs/search?q=role", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/jobs/does-not-exist", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/jobs?page_token=not-a-cursor", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnonymousReadsDegradeToEmpty(t *testing.T) {
	h := newHarness(t, plan.TierStarter)
	member := employerToken(t, h, identity.RoleMember)
	seeker := h.token(t, identity.Identity{Subject: "user_jane"})

	w := h.do(t, http.MethodPost, "/api/v1/jobs", member, gin.H{
		"title":       "Backend Engineer",
		"company":     "Acme",
		"location":    "Remote",
		"type":        "full-time",
		"description": "Build the backend.",
		"status":      "active",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	jobID := decodeData(t, w)["id"].(string)

	w = h.do(t, http.MethodPost, "/api/v1/applications", seeker, gin.H{
		"job_id": jobID,
		"name":   "Jane Doe",
		"email":  "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Without a token the seeker dashboard is empty, not an error.
	w = h.do(t, http.MethodGet, "/api/v1/applications/mine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decodeList(t, w))

	// Same for the employer views.
	w = h.do(t, http.MethodGet, "/api/v1/employer/applications", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decodeList(t, w))

	w = h.do(t, http.MethodGet, "/api/v1/employer/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decodeList(t, w))

	w = h.do(t, http.MethodGet, "/api/v1/employer/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 0, decodeData(t, w)["total_jobs"])

	// An org member still sees the real numbers.
	w = h.do(t, http.MethodGet, "/api/v1/employer/stats", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decodeData(t, w)["active_jobs"])
}

func TestSubmitToMissingJobConflictsOverHTTP(t *testing.T) {
	h := newHarness(t, plan.TierStarter)
	seeker := h.token(t, identity.Identity{Subject: "user_jane"})

	w := h.do(t, http.MethodPost, "/api/v1/applications", seeker, gin.H{
		"job_id": "99999999999999",
		"name":   "Jane Doe",
		"email":  "jane@example.com",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "Job is no longer accepting applications")
}
