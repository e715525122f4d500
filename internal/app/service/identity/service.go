package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/internal/platform/cache"
	"github.com/kisancoop/dairyops/pkg/config"
	"github.com/kisancoop/dairyops/pkg/types"
)

const grantsTTL = 2 * time.Minute

// Grants are the role codes and permission codenames a user holds,
// direct grants merged with role-inherited ones.
type Grants struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type Service struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	db    *gorm.DB
	cache *cache.Cache
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB, c *cache.Cache) *Service {
	return &Service{cfg: cfg, log: log, db: db, cache: c}
}

func (s *Service) loadGrants(ctx context.Context, userID string) (*Grants, error) {
	var roleIDs []string
	if err := s.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Pluck("role_id", &roleIDs).Error; err != nil {
		return nil, err
	}

	grants := &Grants{Roles: []string{}, Permissions: []string{}}
	if len(roleIDs) > 0 {
		var roles []*models.Role
		if err := s.db.WithContext(ctx).Preload("Permissions").
			Where("id IN ?", roleIDs).
			Find(&roles).Error; err != nil {
			return nil, err
		}
		for _, role := range roles {
			grants.Roles = append(grants.Roles, role.Code)
			for _, perm := range role.Permissions {
				grants.Permissions = append(grants.Permissions, perm.Codename)
			}
		}
	}

	var direct []string
	err := s.db.WithContext(ctx).Model(&models.Permission{}).
		Joins("JOIN user_permission ON user_permission.permission_id = permission.id").
		Where("user_permission.user_id = ?", userID).
		Pluck("permission.codename", &direct).Error
	if err != nil {
		return nil, err
	}
	grants.Permissions = lo.Uniq(append(grants.Permissions, direct...))
	return grants, nil
}

// ResolveGrants returns the user's grants, served from cache within a short
// TTL so role edits show up quickly without hitting the store per request.
func (s *Service) ResolveGrants(ctx context.Context, userID string) (*Grants, error) {
	key := fmt.Sprintf("identity_grants_%s", userID)
	return cache.GetOrSet(s.cache, ctx, key, grantsTTL, func() (*Grants, error) {
		return s.loadGrants(ctx, userID)
	})
}

// Principal builds the request principal from token claims plus stored grants.
func (s *Service) Principal(ctx context.Context, userID string, tenantID *string, superuser bool) (*types.Principal, error) {
	grants, err := s.ResolveGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &types.Principal{
		ID:          userID,
		TenantID:    tenantID,
		Roles:       grants.Roles,
		Permissions: grants.Permissions,
		IsSuperuser: superuser,
	}, nil
}

// Invalidate drops the cached grants after a role or permission change.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, fmt.Sprintf("identity_grants_%s", userID)); err != nil {
		s.log.Warnw("grant cache invalidation failed", "user_id", userID, "err", err)
	}
}
