package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/config"
	"github.com/kisancoop/dairyops/pkg/types"
)

// HierarchyChecker answers "does this principal supervise that user".
// A principal supervises a user when the user's reports-to chain reaches
// the principal within a bounded number of hops, or when the principal's
// department transitively manages the user's department.
type HierarchyChecker struct {
	cfg *config.Config
	log *zap.SugaredLogger
	db  *gorm.DB
}

func NewHierarchyChecker(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB) *HierarchyChecker {
	return &HierarchyChecker{cfg: cfg, log: log, db: db}
}

type profileIndex map[string]*models.UserProfile

func (h *HierarchyChecker) loadProfiles(ctx context.Context) (profileIndex, error) {
	var profiles []*models.UserProfile
	if err := h.db.WithContext(ctx).Where("is_active = ?", true).Find(&profiles).Error; err != nil {
		return nil, err
	}
	idx := make(profileIndex, len(profiles))
	for _, p := range profiles {
		idx[p.UserID] = p
	}
	return idx, nil
}

// reportsToChain walks up from userID looking for supervisorID.
func reportsToChain(idx profileIndex, supervisorID, userID string, maxDepth int) bool {
	current := userID
	for depth := 0; depth < maxDepth; depth++ {
		p, ok := idx[current]
		if !ok || p.ReportsTo == nil {
			return false
		}
		if *p.ReportsTo == supervisorID {
			return true
		}
		current = *p.ReportsTo
	}
	return false
}

// departmentManages walks the management graph from one department looking
// for the other. The graph is small and configured, so a plain BFS does.
func departmentManages(graph map[string][]string, from, target string) bool {
	if from == target {
		return false
	}
	visited := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		dept := queue[0]
		queue = queue[1:]
		for _, managed := range graph[dept] {
			if managed == target {
				return true
			}
			if !visited[managed] {
				visited[managed] = true
				queue = append(queue, managed)
			}
		}
	}
	return false
}

func supervises(idx profileIndex, graph map[string][]string, supervisorID, userID string, maxDepth int) bool {
	if supervisorID == userID {
		return false
	}
	if reportsToChain(idx, supervisorID, userID, maxDepth) {
		return true
	}
	sup, okSup := idx[supervisorID]
	target, okTarget := idx[userID]
	if !okSup || !okTarget || sup.Department == nil || target.Department == nil {
		return false
	}
	return departmentManages(graph, *sup.Department, *target.Department)
}

func (h *HierarchyChecker) IsSupervisorOf(ctx context.Context, supervisorID, userID string) (bool, error) {
	idx, err := h.loadProfiles(ctx)
	if err != nil {
		return false, err
	}
	return supervises(idx, h.cfg.Hierarchy.DepartmentGraph, supervisorID, userID, h.cfg.Hierarchy.MaxDepth), nil
}

// RequireSupervisor rejects the call unless the principal is a superuser or
// supervises the target user.
func (h *HierarchyChecker) RequireSupervisor(ctx context.Context, principal *types.Principal, userID string) error {
	if principal.IsSuperuser {
		return nil
	}
	ok, err := h.IsSupervisorOf(ctx, principal.ID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s does not supervise %s", ErrForbidden, principal.ID, userID)
	}
	return nil
}

// VisibleUserIDs is the principal themselves plus everyone they supervise.
func (h *HierarchyChecker) VisibleUserIDs(ctx context.Context, principal *types.Principal) ([]string, error) {
	idx, err := h.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	visible := []string{principal.ID}
	for userID := range idx {
		if supervises(idx, h.cfg.Hierarchy.DepartmentGraph, principal.ID, userID, h.cfg.Hierarchy.MaxDepth) {
			visible = append(visible, userID)
		}
	}
	return visible, nil
}
