package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/internal/platform/cache"
	"github.com/kisancoop/dairyops/pkg/config"
	"github.com/kisancoop/dairyops/pkg/logctx"
	"github.com/kisancoop/dairyops/pkg/tool"
	"github.com/kisancoop/dairyops/pkg/types"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

type PreferenceRequest struct {
	MenuCode    string `json:"menu_code"`
	IsPinned    bool   `json:"is_pinned"`
	IsCollapsed bool   `json:"is_collapsed"`
	IsHidden    bool   `json:"is_hidden"`
	CustomOrder *int   `json:"custom_order"`
}

// PreferenceView is one stored overlay, keyed by menu code.
type PreferenceView struct {
	MenuCode    string `json:"menu_code"`
	IsPinned    bool   `json:"is_pinned"`
	IsCollapsed bool   `json:"is_collapsed"`
	IsHidden    bool   `json:"is_hidden"`
	CustomOrder *int   `json:"custom_order"`
}

// Manager resolves per-principal navigation trees and preferences.
type Manager interface {
	GetUserMenu(ctx context.Context, p *types.Principal, refresh bool) ([]*TreeNode, error)
	GetPaths(ctx context.Context, p *types.Principal) ([]string, error)
	ListPreferences(ctx context.Context, p *types.Principal) ([]*PreferenceView, error)
	UpsertPreference(ctx context.Context, p *types.Principal, req *PreferenceRequest) error
	BulkUpsertPreferences(ctx context.Context, p *types.Principal, reqs []*PreferenceRequest) error
	InvalidateUser(ctx context.Context, userID string)
	InvalidateAll(ctx context.Context)
}

type Service struct {
	cfg    *config.Config
	log    *zap.SugaredLogger
	db     *gorm.DB
	cache  *cache.Cache
	badges *BadgeRegistry
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB, c *cache.Cache, badges *BadgeRegistry) Manager {
	return &Service{cfg: cfg, log: log, db: db, cache: c, badges: badges}
}

func menuCacheKey(userID string, tenantID *string) string {
	if tenantID != nil {
		return fmt.Sprintf("menu_filtered_%s_tenant_%s", userID, *tenantID)
	}
	return fmt.Sprintf("menu_filtered_%s", userID)
}

func badgeCacheKey(code, userID string) string {
	return fmt.Sprintf("menu_badge_%s_%s", code, userID)
}

func (s *Service) GetUserMenu(ctx context.Context, p *types.Principal, refresh bool) ([]*TreeNode, error) {
	key := menuCacheKey(p.ID, p.TenantID)
	if !refresh {
		var cached []*TreeNode
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	tree, err := s.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, tree, s.cfg.Cache.MenuTTL); err != nil {
		logctx.FromCtx(ctx, s.log).Debugw("menu cache set failed", "key", key, "err", err)
	}
	return tree, nil
}

func (s *Service) resolve(ctx context.Context, p *types.Principal) ([]*TreeNode, error) {
	items, err := s.loadItems(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.loadPreferences(ctx, p.ID, items)
	if err != nil {
		return nil, err
	}

	accessible := AccessibleSet(items, p, prefs, s.cfg.FeatureEnabled)
	tree := BuildTree(items, accessible, prefs, func(item *models.MenuItem) *Badge {
		return s.resolveBadge(ctx, item, p.ID)
	})
	if tree == nil {
		tree = []*TreeNode{}
	}
	return tree, nil
}

func (s *Service) loadItems(ctx context.Context, tenantID *string) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	q := s.db.WithContext(ctx).
		Preload("Roles").
		Preload("Permissions").
		Where("is_active = true AND is_visible = true")
	if tenantID != nil {
		q = q.Where("tenant_id = ? OR tenant_id IS NULL", *tenantID)
	} else {
		q = q.Where("tenant_id IS NULL")
	}
	if err := q.Order("menu_order, label").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	return items, nil
}

func (s *Service) loadPreferences(ctx context.Context, userID string, items []*models.MenuItem) (map[string]Preference, error) {
	if len(items) == 0 {
		return map[string]Preference{}, nil
	}
	itemIDs := make([]string, 0, len(items))
	codeByID := make(map[string]string, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
		codeByID[item.ID] = item.Code
	}

	var rows []*models.UserMenuPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND menu_item_id IN ?", userID, itemIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu preferences: %w", err)
	}

	prefs := make(map[string]Preference, len(rows))
	for _, row := range rows {
		prefs[codeByID[row.MenuItemID]] = Preference{
			IsPinned:    row.IsPinned,
			IsCollapsed: row.IsCollapsed,
			IsHidden:    row.IsHidden,
			CustomOrder: row.CustomOrder,
		}
	}
	return prefs, nil
}

// resolveBadge runs the registered resolver under its own cache window.
// Resolver failures drop the badge, never the node.
func (s *Service) resolveBadge(ctx context.Context, item *models.MenuItem, userID string) *Badge {
	if item.BadgeKey == nil || *item.BadgeKey == "" {
		return nil
	}
	resolver, ok := s.badges.Lookup(*item.BadgeKey)
	if !ok {
		return nil
	}

	key := badgeCacheKey(item.Code, userID)
	count, err := cache.GetOrSet(s.cache, ctx, key, s.cfg.Cache.BadgeTTL, func() (int64, error) {
		return resolver(ctx, userID)
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("badge resolver failed", "code", item.Code, "err", err)
		return nil
	}
	if count <= 0 {
		return nil
	}
	badge := &Badge{Count: count}
	if item.BadgeColor != nil {
		badge.Color = *item.BadgeColor
	}
	return badge
}

func (s *Service) GetPaths(ctx context.Context, p *types.Principal) ([]string, error) {
	items, err := s.loadItems(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.loadPreferences(ctx, p.ID, items)
	if err != nil {
		return nil, err
	}
	paths := Paths(items, AccessibleSet(items, p, prefs, s.cfg.FeatureEnabled))
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}

func (s *Service) ListPreferences(ctx context.Context, p *types.Principal) ([]*PreferenceView, error) {
	var rows []*models.UserMenuPreference
	err := s.db.WithContext(ctx).
		Preload("MenuItem").
		Where("user_id = ?", p.ID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu preferences: %w", err)
	}

	views := make([]*PreferenceView, 0, len(rows))
	for _, row := range rows {
		if row.MenuItem == nil {
			continue
		}
		views = append(views, &PreferenceView{
			MenuCode:    row.MenuItem.Code,
			IsPinned:    row.IsPinned,
			IsCollapsed: row.IsCollapsed,
			IsHidden:    row.IsHidden,
			CustomOrder: row.CustomOrder,
		})
	}
	return views, nil
}

func (s *Service) UpsertPreference(ctx context.Context, p *types.Principal, req *PreferenceRequest) error {
	return s.BulkUpsertPreferences(ctx, p, []*PreferenceRequest{req})
}

func (s *Service) BulkUpsertPreferences(ctx context.Context, p *types.Principal, reqs []*PreferenceRequest) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, req := range reqs {
			var item models.MenuItem
			if err := tx.Where("code = ?", req.MenuCode).First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrMenuItemNotFound, req.MenuCode)
				}
				return err
			}

			var pref models.UserMenuPreference
			err := tx.Where("user_id = ? AND menu_item_id = ?", p.ID, item.ID).First(&pref).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				pref = models.UserMenuPreference{
					ID:         tool.GenerateUUIDV7(),
					UserID:     p.ID,
					MenuItemID: item.ID,
				}
			} else if err != nil {
				return err
			}

			pref.IsPinned = req.IsPinned
			pref.IsCollapsed = req.IsCollapsed
			pref.IsHidden = req.IsHidden
			pref.CustomOrder = req.CustomOrder
			pref.UpdatedAt = time.Now()
			if err := tx.Save(&pref).Error; err != nil {
				return fmt.Errorf("failed to save preference: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.InvalidateUser(ctx, p.ID)
	return nil
}

func (s *Service) InvalidateUser(ctx context.Context, userID string) {
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("menu_filtered_%s*", userID)); err != nil {
		s.log.Debugw("menu cache invalidation failed", "user_id", userID, "err", err)
	}
}

func (s *Service) InvalidateAll(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, "menu_filtered_*"); err != nil {
		s.log.Debugw("menu cache invalidation failed", "err", err)
	}
}
