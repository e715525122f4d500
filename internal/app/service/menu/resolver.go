package menu

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

type Preference struct {
	IsPinned    bool `json:"is_pinned"`
	IsCollapsed bool `json:"is_collapsed"`
	IsHidden    bool `json:"is_hidden"`
	CustomOrder *int `json:"custom_order"`
}

type Badge struct {
	Count int64  `json:"count"`
	Color string `json:"color,omitempty"`
}

// TreeNode is one resolved node of the per-user navigation tree.
type TreeNode struct {
	ID           string      `json:"id"`
	Code         string      `json:"code"`
	Label        string      `json:"label"`
	Icon         string      `json:"icon,omitempty"`
	Path         string      `json:"path,omitempty"`
	IsExternal   bool        `json:"is_external"`
	OpenInNewTab bool        `json:"open_in_new_tab"`
	CSSClass     string      `json:"css_class,omitempty"`
	Badge        *Badge      `json:"badge,omitempty"`
	Preferences  *Preference `json:"preferences,omitempty"`
	Children     []*TreeNode `json:"children,omitempty"`
}

// HasItemAccess decides whether the principal may see the item.
// Roles use OR semantics, permissions AND semantics; superusers bypass
// everything except feature flags.
func HasItemAccess(item *models.MenuItem, p *types.Principal, featureEnabled func(string) bool) (bool, string) {
	if item.FeatureFlag != nil && *item.FeatureFlag != "" && !featureEnabled(*item.FeatureFlag) {
		return false, "feature not enabled"
	}
	if p.IsSuperuser {
		return true, "superuser access"
	}
	if item.TenantID != nil && p.TenantID != nil && *item.TenantID != *p.TenantID {
		return false, "tenant mismatch"
	}
	if len(item.Roles) > 0 {
		codes := lo.Map(item.Roles, func(r *models.Role, _ int) string { return r.Code })
		if !p.HasAnyRole(codes) {
			return false, "missing required role"
		}
	}
	if len(item.Permissions) > 0 {
		perms := lo.Map(item.Permissions, func(pm *models.Permission, _ int) string { return pm.Codename })
		if !p.HasAllPermissions(perms) {
			return false, "missing required permission"
		}
	}
	return true, "access granted"
}

// AccessibleSet runs the first pass: per-item access decision, with the
// preference is_hidden overlay removing items the user opted out of.
func AccessibleSet(items []*models.MenuItem, p *types.Principal, prefs map[string]Preference, featureEnabled func(string) bool) map[string]bool {
	accessible := make(map[string]bool, len(items))
	for _, item := range items {
		if !item.IsActive || !item.IsVisible {
			continue
		}
		if ok, _ := HasItemAccess(item, p, featureEnabled); !ok {
			continue
		}
		if pref, found := prefs[item.Code]; found && pref.IsHidden {
			continue
		}
		accessible[item.ID] = true
	}
	return accessible
}

// BuildTree runs the second pass: assemble the forest from accessible
// items. A root without children and without a path is dropped.
// resolveBadge may be nil; a nil badge leaves the node badge-less.
func BuildTree(items []*models.MenuItem, accessible map[string]bool, prefs map[string]Preference, resolveBadge func(*models.MenuItem) *Badge) []*TreeNode {
	children := map[string][]*models.MenuItem{}
	var roots []*models.MenuItem
	for _, item := range items {
		if !accessible[item.ID] {
			continue
		}
		// Only top-level items become roots. A child of a denied or hidden
		// parent stays in the children map and is never reached, so denying
		// an ancestor excludes the whole subtree.
		if item.ParentID == nil {
			roots = append(roots, item)
		} else {
			children[*item.ParentID] = append(children[*item.ParentID], item)
		}
	}

	var build func(item *models.MenuItem) *TreeNode
	build = func(item *models.MenuItem) *TreeNode {
		node := &TreeNode{
			ID:           item.ID,
			Code:         item.Code,
			Label:        item.Label,
			Icon:         item.Icon,
			Path:         item.Path,
			IsExternal:   item.IsExternal,
			OpenInNewTab: item.OpenInNewTab,
			CSSClass:     item.CSSClass,
		}
		if pref, found := prefs[item.Code]; found {
			p := pref
			node.Preferences = &p
		}
		if resolveBadge != nil {
			node.Badge = resolveBadge(item)
		}
		for _, child := range children[item.ID] {
			node.Children = append(node.Children, build(child))
		}
		sortNodes(node.Children, prefs)
		return node
	}

	var forest []*TreeNode
	for _, root := range roots {
		node := build(root)
		if len(node.Children) == 0 && node.Path == "" {
			continue
		}
		forest = append(forest, node)
	}
	sortNodes(forest, prefs)
	return forest
}

// sortNodes orders by (not pinned, custom_order or +inf, label).
func sortNodes(nodes []*TreeNode, prefs map[string]Preference) {
	sort.SliceStable(nodes, func(i, j int) bool {
		pi, pj := prefs[nodes[i].Code], prefs[nodes[j].Code]
		if pi.IsPinned != pj.IsPinned {
			return pi.IsPinned
		}
		oi, oj := math.Inf(1), math.Inf(1)
		if pi.CustomOrder != nil {
			oi = float64(*pi.CustomOrder)
		}
		if pj.CustomOrder != nil {
			oj = float64(*pj.CustomOrder)
		}
		if oi != oj {
			return oi < oj
		}
		return nodes[i].Label < nodes[j].Label
	})
}

// Paths flattens the accessible items into their non-empty route paths.
// An item only contributes a path when its whole ancestor chain is
// accessible, mirroring the tree.
func Paths(items []*models.MenuItem, accessible map[string]bool) []string {
	byID := make(map[string]*models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	var paths []string
	for _, item := range items {
		if accessible[item.ID] && item.Path != "" && ancestorsAccessible(byID, accessible, item) {
			paths = append(paths, item.Path)
		}
	}
	sort.Strings(paths)
	return lo.Uniq(paths)
}

func ancestorsAccessible(byID map[string]*models.MenuItem, accessible map[string]bool, item *models.MenuItem) bool {
	for parentID := item.ParentID; parentID != nil; {
		parent, ok := byID[*parentID]
		if !ok || !accessible[parent.ID] {
			return false
		}
		parentID = parent.ParentID
	}
	return true
}
