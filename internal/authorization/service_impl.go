package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/hirewire/internal/identity"
)

//go:embed model.conf
var modelText string

const (
	ObjectJob         = "job"
	ObjectApplication = "application"
)

const (
	ActionJobCreate = "job.create"
	ActionJobUpdate = "job.update"
	ActionJobClose  = "job.close"

	ActionApplicationView         = "application.view"
	ActionApplicationUpdateStatus = "application.update_status"
)

const (
	roleMember = "role:member"
	roleAdmin  = "role:admin"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, id identity.Identity, object string, action string) error {
	if !id.Authenticated() {
		return ErrInvalidActor
	}
	if !id.HasOrg() {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := fmt.Sprintf("user:%s", id.Subject)
	roleName := fmt.Sprintf("role:%s", string(id.OrgRole))
	dom := fmt.Sprintf("org:%s", id.OrgID)

	if err := s.ensureGrouping(subject, roleName, dom); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, dom, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("org_id", id.OrgID),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping binds the subject to its claimed role within the org
// domain, replacing any stale binding from an earlier token. Admins
// also inherit the member role for that domain.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, dom string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", dom)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, dom)
	if err != nil {
		return err
	}
	if !has {
		if _, err := s.enforcer.AddGroupingPolicy(subject, roleName, dom); err != nil {
			return err
		}
	}

	if roleName == roleAdmin {
		has, err := s.enforcer.HasGroupingPolicy(roleAdmin, roleMember, dom)
		if err != nil {
			return err
		}
		if !has {
			if _, err := s.enforcer.AddGroupingPolicy(roleAdmin, roleMember, dom); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Member permissions: any org member can manage listings and
		// review applicants.
		{roleMember, ObjectJob, ActionJobCreate},
		{roleMember, ObjectJob, ActionJobUpdate},
		{roleMember, ObjectApplication, ActionApplicationView},
		{roleMember, ObjectApplication, ActionApplicationUpdateStatus},

		// Admin-only permissions.
		{roleAdmin, ObjectJob, ActionJobClose},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
